package enhance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/rawstory/enhance/pkg/enhance/progress"
)

type stubDecoder struct {
	img gocv.Mat
	err error
}

func (d stubDecoder) Decode([]byte) (gocv.Mat, error) {
	if d.err != nil {
		return gocv.Mat{}, d.err
	}

	return d.img.Clone(), nil
}

type reportRecorder struct {
	stages   []progress.Stage
	percents []int
}

func (r *reportRecorder) report(stage progress.Stage, percent int, _ string) {
	r.stages = append(r.stages, stage)
	r.percents = append(r.percents, percent)
}

func TestRunReportsStagesInOrder(t *testing.T) {
	img := gradientMat(t, 64, 48)
	defer img.Close()

	runner := NewRunner(RunnerDecoder(stubDecoder{img: img}))
	recorder := &reportRecorder{}

	result, err := runner.Run(context.Background(), Request{
		Data:   []byte("raw"),
		Preset: "landscape",
		Format: "jpg",
		Report: recorder.report,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []progress.Stage{
		progress.StageLoadingRaw,
		progress.StageAnalyzing,
		progress.StageEnhancing,
		progress.StageEncoding,
		progress.StageComplete,
	}, recorder.stages)
	assert.Equal(t, []int{10, 30, 40, 85, 100}, recorder.percents)

	assert.Equal(t, "image/jpeg", result.MIME)
	assert.Equal(t, PresetLandscape, result.Preset)
	assert.NotEmpty(t, result.Data)
	assert.GreaterOrEqual(t, result.Quality, 85)
	assert.LessOrEqual(t, result.Quality, 95)
	assert.LessOrEqual(t, result.Width, maxDeliveryWidth)
	assert.LessOrEqual(t, result.Height, maxDeliveryHeight)
}

func TestRunLargeInputIsBounded(t *testing.T) {
	img := solidMat(t, 2400, 1200, 90, 120, 150)
	defer img.Close()

	runner := NewRunner(RunnerDecoder(stubDecoder{img: img}))

	result, err := runner.Run(context.Background(), Request{Data: []byte("raw")})
	require.NoError(t, err)

	assert.Equal(t, 1080, result.Width)
	assert.Equal(t, 540, result.Height)

	// Quality follows the delivered pixels; a flat frame earns the floor.
	assert.Equal(t, 85, result.Quality)
}

func TestRunDecodeFailure(t *testing.T) {
	runner := NewRunner(RunnerDecoder(stubDecoder{err: ErrDecode}))
	recorder := &reportRecorder{}

	result, err := runner.Run(context.Background(), Request{
		Data:   []byte("bogus"),
		Report: recorder.report,
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrDecode)

	require.NotEmpty(t, recorder.stages)
	assert.Equal(t, progress.StageError, recorder.stages[len(recorder.stages)-1])
}

func TestRunCanceledContext(t *testing.T) {
	img := gradientMat(t, 32, 32)
	defer img.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(RunnerDecoder(stubDecoder{img: img}))
	recorder := &reportRecorder{}

	result, err := runner.Run(ctx, Request{Data: []byte("raw"), Report: recorder.report})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, recorder.stages, progress.StageError)
}

func TestRunUnknownPresetAndFormatFallBack(t *testing.T) {
	img := gradientMat(t, 32, 32)
	defer img.Close()

	runner := NewRunner(RunnerDecoder(stubDecoder{img: img}))

	result, err := runner.Run(context.Background(), Request{
		Data:   []byte("raw"),
		Preset: "vaporwave",
		Format: "tiff",
	})
	require.NoError(t, err)

	assert.Equal(t, PresetStandard, result.Preset)
	assert.Equal(t, "image/jpeg", result.MIME)
}

func TestRunPNGOutput(t *testing.T) {
	img := gradientMat(t, 32, 32)
	defer img.Close()

	runner := NewRunner(RunnerDecoder(stubDecoder{img: img}))

	result, err := runner.Run(context.Background(), Request{
		Data:   []byte("raw"),
		Format: "png",
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", result.MIME)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, result.Data[:4])
}

func TestRunWithoutReporter(t *testing.T) {
	img := gradientMat(t, 32, 32)
	defer img.Close()

	runner := NewRunner(RunnerDecoder(stubDecoder{img: img}))

	result, err := runner.Run(context.Background(), Request{Data: []byte("raw")})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Data)
}

func TestPreviewDownscalesWithoutEnhancing(t *testing.T) {
	img := solidMat(t, 3000, 1000, 100, 100, 100)
	defer img.Close()

	runner := NewRunner(RunnerDecoder(stubDecoder{img: img}))

	data, err := runner.Preview(context.Background(), []byte("raw"))
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	decoded, err := OpenCVDecoder{}.Decode(data)
	require.NoError(t, err)
	defer decoded.Close()

	assert.Equal(t, 1080, decoded.Cols())
	assert.Equal(t, 360, decoded.Rows())
}
