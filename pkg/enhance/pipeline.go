package enhance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/rawstory/enhance/pkg/enhance/drawer"
	"github.com/rawstory/enhance/pkg/enhance/progress"
)

// Request is one enhancement job. Preset and Format are free-form names;
// unknown values fall back to the standard preset and JPEG.
type Request struct {
	Data   []byte
	Preset string
	Format string
	Report progress.Reporter
}

// Result is the encoded output of a run.
type Result struct {
	Data    []byte
	MIME    string
	Preset  Preset
	Quality int
	Width   int
	Height  int
}

// Runner orchestrates decode, analysis, enhancement and encoding. A Runner
// is immutable after construction and safe for concurrent use, except that a
// drawer records one run at a time.
type Runner struct {
	decoder Decoder
	drawer  drawer.Drawer
	log     zerolog.Logger
}

type RunnerOption func(r *Runner)

// RunnerDecoder substitutes the image decoder.
func RunnerDecoder(dec Decoder) RunnerOption {
	return func(r *Runner) {
		r.decoder = dec
	}
}

// RunnerLogger sets the logger; the default discards everything.
func RunnerLogger(log zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log
	}
}

// RunnerDrawer records stage timings of each run into drw.
func RunnerDrawer(drw drawer.Drawer) RunnerOption {
	return func(r *Runner) {
		r.drawer = drw
	}
}

// NewRunner creates a runner with the OpenCV decoder and no logging.
func NewRunner(opts ...RunnerOption) *Runner {
	runner := &Runner{
		decoder: OpenCVDecoder{},
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

// Stage percents reported at each transition.
const (
	percentLoading   = 10
	percentAnalyzing = 30
	percentEnhancing = 40
	percentEncoding  = 85
	percentComplete  = 100
)

// Run executes the full job. On failure the reporter receives the error
// stage and the returned error wraps the failing stage's cause; the percent
// already reported is kept.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	report := req.Report
	if report == nil {
		report = func(progress.Stage, int, string) {}
	}

	timings := newStageTimings()

	fail := func(stage progress.Stage, err error) (*Result, error) {
		report(progress.StageError, 0, err.Error())
		r.log.Error().Err(err).Str("stage", string(stage)).Msg("run failed")

		return nil, errors.Wrapf(err, "%s stage", stage)
	}

	report(progress.StageLoadingRaw, percentLoading, "Reading image data")

	img, err := r.decodeStage(req.Data, timings)
	if err != nil {
		return fail(progress.StageLoadingRaw, err)
	}
	defer img.Close()

	if err := ctx.Err(); err != nil {
		return fail(progress.StageLoadingRaw, err)
	}

	report(progress.StageAnalyzing, percentAnalyzing, "Analyzing image")

	analysis, err := r.analyzeStage(img, timings)
	if err != nil {
		return fail(progress.StageAnalyzing, err)
	}
	defer analysis.Close()

	if err := ctx.Err(); err != nil {
		return fail(progress.StageAnalyzing, err)
	}

	preset := ResolvePreset(req.Preset)
	report(progress.StageEnhancing, percentEnhancing, "Applying "+string(preset)+" preset")

	enhanced, err := r.enhanceStage(img, preset, analysis, timings)
	if err != nil {
		return fail(progress.StageEnhancing, err)
	}
	defer enhanced.Close()

	if err := ctx.Err(); err != nil {
		return fail(progress.StageEnhancing, err)
	}

	report(progress.StageEncoding, percentEncoding, "Encoding result")

	format := ResolveFormat(req.Format)
	result, err := r.encodeStage(enhanced, preset, format, timings)
	if err != nil {
		return fail(progress.StageEncoding, err)
	}

	report(progress.StageComplete, percentComplete, "Done")
	r.logTimings(preset, result, timings)

	if r.drawer != nil {
		if err := r.drawStages(timings); err != nil {
			// Drawing is advisory; the result is already produced.
			r.log.Warn().Err(err).Msg("unable to draw stage graph")
		}
	}

	return result, nil
}

// Preview decodes and re-encodes the input as a small JPEG without any
// enhancement, for display while the full run is in flight.
func (r *Runner) Preview(ctx context.Context, data []byte) ([]byte, error) {
	img, err := r.decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	small := fitLongestSide(img, previewLongestSide)
	defer small.Close()

	return encodeImage(small, FormatJPEG, previewJPEGQuality)
}

func (r *Runner) decodeStage(data []byte, timings *stageTimings) (gocv.Mat, error) {
	defer timings.track(progress.StageLoadingRaw)()

	return r.decoder.Decode(data)
}

func (r *Runner) analyzeStage(img gocv.Mat, timings *stageTimings) (*Analysis, error) {
	defer timings.track(progress.StageAnalyzing)()

	return Analyze(img)
}

func (r *Runner) enhanceStage(img gocv.Mat, preset Preset, analysis *Analysis, timings *stageTimings) (gocv.Mat, error) {
	defer timings.track(progress.StageEnhancing)()

	return Enhance(img, preset, analysis)
}

func (r *Runner) encodeStage(enhanced gocv.Mat, preset Preset, format Format, timings *stageTimings) (*Result, error) {
	defer timings.track(progress.StageEncoding)()

	resized := fitWithin(enhanced, maxDeliveryWidth, maxDeliveryHeight)
	defer resized.Close()

	quality := optimalQuality(measureForQuality(resized))

	data, err := encodeImage(resized, format, quality)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:    data,
		MIME:    format.MIME(),
		Preset:  preset,
		Quality: quality,
		Width:   resized.Cols(),
		Height:  resized.Rows(),
	}, nil
}

func (r *Runner) logTimings(preset Preset, result *Result, timings *stageTimings) {
	event := r.log.Info().
		Str("preset", string(preset)).
		Int("quality", result.Quality).
		Int("width", result.Width).
		Int("height", result.Height)

	for _, stage := range timings.order {
		event = event.Dur(string(stage), timings.elapsed[stage])
	}

	event.Msg("run complete")
}

func (r *Runner) drawStages(timings *stageTimings) error {
	previous := ""
	for _, stage := range timings.order {
		if err := r.drawer.AddStage(string(stage)); err != nil {
			return err
		}
		if previous != "" {
			if err := r.drawer.AddLink(previous, string(stage)); err != nil {
				return err
			}
		}
		previous = string(stage)
	}

	for _, stage := range timings.order {
		if err := r.drawer.SetDuration(string(stage), timings.elapsed[stage]); err != nil {
			return err
		}
	}

	return r.drawer.Draw()
}

// stageTimings accumulates wall-clock durations per stage, in run order.
type stageTimings struct {
	order   []progress.Stage
	elapsed map[progress.Stage]time.Duration
	now     func() time.Time
}

func newStageTimings() *stageTimings {
	return &stageTimings{
		elapsed: make(map[progress.Stage]time.Duration),
		now:     time.Now,
	}
}

func (t *stageTimings) track(stage progress.Stage) func() {
	start := t.now()

	return func() {
		t.order = append(t.order, stage)
		t.elapsed[stage] = t.now().Sub(start)
	}
}
