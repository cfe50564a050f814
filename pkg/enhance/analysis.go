package enhance

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Hue bands (OpenCV hue is 0..179), gated on saturation > 40.
const (
	greenHueLow   = 35
	greenHueHigh  = 85
	blueHueLow    = 90
	blueHueHigh   = 130
	warmHueLow    = 30  // warm is <= warmHueLow ...
	warmHueHigh   = 160 // ... or >= warmHueHigh
	hueBandMinSat = 40
)

// Analysis is the immutable measurement record computed once per run.
// Strategies read it but never mutate it. Masks are always allocated buffers
// of the source dimensions; an undetected region is an all-zero mask, not a
// missing one.
type Analysis struct {
	// Brightness.
	MeanBrightness float64
	BrightnessStd  float64
	DarkRatio      float64
	BrightRatio    float64
	IsLowLight     bool
	IsHighKey      bool

	// Colour.
	MeanSaturation   float64
	IsSaturated      bool
	IsDesaturated    bool
	GreenRatio       float64
	BlueRatio        float64
	WarmRatio        float64
	DominantHue      string // green, blue, warm or neutral
	ColorTemperature string // warm, cool or neutral

	// Detail.
	Sharpness     float64
	EdgeDensity   float64
	IsSharp       bool
	IsBlurry      bool
	HasFineDetail bool
	NoiseLevel    float64

	// Regions.
	HasSky          bool
	SkyRatio        float64
	HasFaces        bool
	SkinRatio       float64
	HasVegetation   bool
	VegetationRatio float64
	HasWater        bool
	WaterRatio      float64

	// Recommended parameters derived from the measurements above. Strategies
	// are free to consult them or apply their own constants.
	RecommendedCLAHEClip  float64
	RecommendedSaturation float64
	RecommendedSharpening float64
	RecommendedDenoise    float64

	SkyMask        gocv.Mat
	SkinMask       gocv.Mat
	VegetationMask gocv.Mat
	WaterMask      gocv.Mat
	ForegroundMask gocv.Mat
}

// Close releases the region masks.
func (a *Analysis) Close() {
	for _, m := range []*gocv.Mat{&a.SkyMask, &a.SkinMask, &a.VegetationMask, &a.WaterMask, &a.ForegroundMask} {
		if !m.Empty() {
			m.Close()
		}
	}
}

// Analyze measures img and derives the full analysis record. img must be a
// non-empty 8-bit 3-channel buffer; it is only read.
func Analyze(img gocv.Mat) (*Analysis, error) {
	if img.Empty() || img.Channels() != 3 {
		return nil, errors.New("analysis requires a non-empty 3-channel image")
	}

	analysis := &Analysis{DominantHue: "neutral", ColorTemperature: "neutral"}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	analyzeBrightness(gray, analysis)
	analyzeColor(hsv, analysis)
	analyzeDetail(gray, analysis)
	analysis.NoiseLevel = estimateNoise(gray)

	analysis.SkyMask, analysis.SkyRatio = detectSky(hsv)
	analysis.HasSky = analysis.SkyRatio > 0.05

	analysis.SkinMask, analysis.SkinRatio = detectSkin(img, hsv)
	analysis.HasFaces = analysis.SkinRatio > 0.05

	analysis.VegetationMask, analysis.VegetationRatio = detectVegetation(hsv)
	analysis.HasVegetation = analysis.VegetationRatio > 0.1

	analysis.WaterMask, analysis.WaterRatio = detectWater(hsv)
	analysis.HasWater = analysis.WaterRatio > 0.1

	analysis.ForegroundMask = detectForeground(gray)

	computeRecommended(analysis)

	return analysis, nil
}

func analyzeBrightness(gray gocv.Mat, analysis *Analysis) {
	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(gray, &mean, &stddev)

	analysis.MeanBrightness = mean.GetDoubleAt(0, 0)
	analysis.BrightnessStd = stddev.GetDoubleAt(0, 0)

	total := float64(gray.Rows() * gray.Cols())

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 49, 255, gocv.ThresholdBinaryInv)
	analysis.DarkRatio = float64(gocv.CountNonZero(dark)) / total

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 200, 255, gocv.ThresholdBinary)
	analysis.BrightRatio = float64(gocv.CountNonZero(bright)) / total

	analysis.IsLowLight = analysis.MeanBrightness < 80
	analysis.IsHighKey = analysis.MeanBrightness > 180
}

func analyzeColor(hsv gocv.Mat, analysis *Analysis) {
	channels := gocv.Split(hsv)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	analysis.MeanSaturation = gocv.Mean(channels[1]).Val1
	analysis.IsSaturated = analysis.MeanSaturation > 100
	analysis.IsDesaturated = analysis.MeanSaturation < 50

	total := float64(hsv.Rows() * hsv.Cols())
	analysis.GreenRatio = float64(countHueBand(hsv, greenHueLow, greenHueHigh)) / total
	analysis.BlueRatio = float64(countHueBand(hsv, blueHueLow, blueHueHigh)) / total
	warm := countHueBand(hsv, 0, warmHueLow) + countHueBand(hsv, warmHueHigh, 179)
	analysis.WarmRatio = float64(warm) / total

	switch {
	case analysis.GreenRatio > 0.15:
		analysis.DominantHue = "green"
	case analysis.BlueRatio > 0.15:
		analysis.DominantHue = "blue"
	case analysis.WarmRatio > 0.15:
		analysis.DominantHue = "warm"
	}

	if analysis.WarmRatio > analysis.BlueRatio*1.5 {
		analysis.ColorTemperature = "warm"
	} else if analysis.BlueRatio > analysis.WarmRatio*1.5 {
		analysis.ColorTemperature = "cool"
	}
}

// countHueBand counts pixels with hue in [low, high] and saturation above the
// band gate.
func countHueBand(hsv gocv.Mat, low, high float64) int {
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(low, hueBandMinSat+1, 0, 0),
		gocv.NewScalar(high, 255, 255, 0),
		&mask)

	return gocv.CountNonZero(mask)
}

func analyzeDetail(gray gocv.Mat, analysis *Analysis) {
	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)
	sigma := stddev.GetDoubleAt(0, 0)
	analysis.Sharpness = sigma * sigma

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)
	analysis.EdgeDensity = float64(gocv.CountNonZero(edges)) / float64(gray.Rows()*gray.Cols())

	analysis.IsSharp = analysis.Sharpness > 500
	analysis.IsBlurry = analysis.Sharpness < 100
	analysis.HasFineDetail = analysis.EdgeDensity > 0.1
}

// estimateNoise measures the standard deviation of the high-frequency
// residual in the central half of the frame, away from strong edges.
func estimateNoise(gray gocv.Mat) float64 {
	h, w := gray.Rows(), gray.Cols()
	center := gray.Region(image.Rect(w/4, h/4, 3*w/4, 3*h/4))
	defer center.Close()

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(center, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	residual := gocv.NewMat()
	defer residual.Close()
	gocv.AbsDiff(center, blur, &residual)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(residual, &mean, &stddev)

	return stddev.GetDoubleAt(0, 0)
}

func computeRecommended(analysis *Analysis) {
	// Local contrast: gentle, stronger only where the histogram is flat.
	switch {
	case analysis.BrightnessStd < 40:
		analysis.RecommendedCLAHEClip = 1.5
	case analysis.BrightnessStd > 70:
		analysis.RecommendedCLAHEClip = 0.8
	default:
		analysis.RecommendedCLAHEClip = 1.0
	}
	if analysis.IsLowLight {
		analysis.RecommendedCLAHEClip = minFloat(analysis.RecommendedCLAHEClip+0.5, 2.0)
	}

	switch {
	case analysis.IsDesaturated:
		analysis.RecommendedSaturation = 1.10
	case analysis.IsSaturated:
		analysis.RecommendedSaturation = 0.95
	default:
		analysis.RecommendedSaturation = 1.05
	}

	switch {
	case analysis.IsBlurry:
		analysis.RecommendedSharpening = 0.6
	case analysis.IsSharp || analysis.NoiseLevel > 10:
		analysis.RecommendedSharpening = 0.0
	default:
		analysis.RecommendedSharpening = 0.3
	}

	switch {
	case analysis.NoiseLevel > 15:
		analysis.RecommendedDenoise = 8.0
	case analysis.NoiseLevel > 8:
		analysis.RecommendedDenoise = 6.0
	case analysis.NoiseLevel > 4:
		analysis.RecommendedDenoise = 4.0
	case analysis.NoiseLevel > 2:
		analysis.RecommendedDenoise = 2.0
	default:
		analysis.RecommendedDenoise = 0.0
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}
