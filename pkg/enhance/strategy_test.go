package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestEveryStrategyPreservesGeometry(t *testing.T) {
	img := gradientMat(t, 64, 48)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	for preset := range strategies {
		t.Run(string(preset), func(t *testing.T) {
			out, err := Enhance(img, preset, analysis)
			require.NoError(t, err)
			defer out.Close()

			assert.Equal(t, img.Rows(), out.Rows())
			assert.Equal(t, img.Cols(), out.Cols())
			assert.Equal(t, 3, out.Channels())
			assert.Equal(t, gocv.MatTypeCV8UC3, out.Type())
		})
	}
}

func TestEnhanceUnknownPresetFallsBack(t *testing.T) {
	img := gradientMat(t, 32, 32)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	out, err := Enhance(img, Preset("vaporwave"), analysis)
	require.NoError(t, err)
	defer out.Close()

	assert.False(t, out.Empty())
}

func TestEnhanceRejectsBadInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	analysis := &Analysis{}

	_, err := Enhance(empty, PresetStandard, analysis)
	assert.Error(t, err)
}

func TestStandardKeepsMidGrayNeutral(t *testing.T) {
	img := solidMat(t, 8, 8, 128, 128, 128)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	out, err := Enhance(img, PresetStandard, analysis)
	require.NoError(t, err)
	defer out.Close()

	// No exposure fix applies at mean 128 and local contrast is a no-op on a
	// flat frame.
	assert.InDelta(t, 128, meanGray(t, out), 8)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(out, &hsv, gocv.ColorBGRToHSV)
	channels := gocv.Split(hsv)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	// Gray stays gray.
	assert.Less(t, gocv.Mean(channels[1]).Val1, 5.0)
}

func TestDaylightExposureUntouched(t *testing.T) {
	// Presets whose exposure fix only applies in low light must leave a
	// well-exposed frame's brightness alone.
	for _, preset := range []Preset{PresetArchitecture, PresetCity, PresetRetro} {
		t.Run(string(preset), func(t *testing.T) {
			img := solidMat(t, 64, 64, 150, 150, 150)
			defer img.Close()

			analysis, err := Analyze(img)
			require.NoError(t, err)
			defer analysis.Close()
			require.False(t, analysis.IsLowLight)

			out, err := Enhance(img, preset, analysis)
			require.NoError(t, err)
			defer out.Close()

			assert.Greater(t, meanGray(t, out), 125.0)
		})
	}
}

func TestRestoreUnderwaterRed(t *testing.T) {
	img := solidMat(t, 8, 8, 100, 100, 100)
	defer img.Close()

	out := restoreUnderwaterRed(img)
	defer out.Close()

	data := out.ToBytes()
	assert.Equal(t, uint8(90), data[0])
	assert.Equal(t, uint8(100), data[1])
	// Offset first, then the multiplicative boost: (100+40)*1.25.
	assert.Equal(t, uint8(175), data[2])
}

func TestNightDenoiseStrengths(t *testing.T) {
	tcs := map[string]struct {
		mean      float64
		sharpness float64
		wantLum   float64
		wantColor float64
	}{
		"dark soft":    {mean: 40, sharpness: 100, wantLum: 11.875, wantColor: 10.5},
		"dark sharp":   {mean: 40, sharpness: 400, wantLum: 8.875, wantColor: 8.5},
		"bright sharp": {mean: 120, sharpness: 400, wantLum: 3, wantColor: 3.5},
		"floor both":   {mean: 200, sharpness: 400, wantLum: 3, wantColor: 3},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			hLum, hColor := nightDenoiseStrengths(tc.mean, tc.sharpness)
			assert.InDelta(t, tc.wantLum, hLum, 0.001)
			assert.InDelta(t, tc.wantColor, hColor, 0.001)
		})
	}
}

func TestPortraitProcessesSkinAtLowCoverage(t *testing.T) {
	// A 13x13 skin patch on a 64x64 frame is just over 4% coverage, below
	// the HasFaces flag but above the portrait gate.
	w, h := 64, 64
	data := make([]byte, w*h*3)
	for i := 0; i < len(data); i += 3 {
		data[i], data[i+1], data[i+2] = 120, 120, 120
	}
	for y := 20; y < 33; y++ {
		for x := 20; x < 33; x++ {
			idx := (y*w + x) * 3
			data[idx], data[idx+1], data[idx+2] = 150, 170, 210
		}
	}
	img, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	require.Greater(t, analysis.SkinRatio, 0.03)
	require.False(t, analysis.HasFaces)

	out, err := Enhance(img, PresetPortrait, analysis)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, img.Rows(), out.Rows())
	assert.Equal(t, img.Cols(), out.Cols())
	assert.Equal(t, 3, out.Channels())
}

func TestNightReducesNoise(t *testing.T) {
	base := solidMat(t, 64, 64, 40, 40, 40)
	defer base.Close()

	noisy := addGrain(base, 8)
	defer noisy.Close()

	before, err := Analyze(noisy)
	require.NoError(t, err)
	defer before.Close()

	out, err := Enhance(noisy, PresetNight, before)
	require.NoError(t, err)
	defer out.Close()

	after, err := Analyze(out)
	require.NoError(t, err)
	defer after.Close()

	assert.Less(t, after.NoiseLevel, before.NoiseLevel)
}

func TestNightBrightensDarkFrame(t *testing.T) {
	img := solidMat(t, 64, 64, 40, 40, 40)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	out, err := Enhance(img, PresetNight, analysis)
	require.NoError(t, err)
	defer out.Close()

	got := meanGray(t, out)
	assert.Greater(t, got, 45.0)
	assert.Less(t, got, 115.0)
}

func TestBrightLiftsExposure(t *testing.T) {
	img := solidMat(t, 32, 32, 100, 100, 100)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	out, err := Enhance(img, PresetBright, analysis)
	require.NoError(t, err)
	defer out.Close()

	assert.Greater(t, meanGray(t, out), meanGray(t, img))
}

func TestMonoOutputIsNeutral(t *testing.T) {
	img := gradientMat(t, 32, 32)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	out, err := Enhance(img, PresetMono, analysis)
	require.NoError(t, err)
	defer out.Close()

	require.Equal(t, 3, out.Channels())

	data := out.ToBytes()
	for i := 0; i+2 < len(data); i += 3 {
		assert.Equal(t, data[i], data[i+1])
		assert.Equal(t, data[i], data[i+2])
	}
}

func TestRetroAddsGrain(t *testing.T) {
	img := solidMat(t, 64, 64, 128, 128, 128)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	out, err := Enhance(img, PresetRetro, analysis)
	require.NoError(t, err)
	defer out.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(out, &gray, gocv.ColorBGRToGray)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(gray, &mean, &stddev)

	assert.Greater(t, stddev.GetDoubleAt(0, 0), 1.0)
}

func TestCinematicDarkensCorners(t *testing.T) {
	img := solidMat(t, 64, 64, 128, 128, 128)
	defer img.Close()

	analysis, err := Analyze(img)
	require.NoError(t, err)
	defer analysis.Close()

	out, err := Enhance(img, PresetCinematic, analysis)
	require.NoError(t, err)
	defer out.Close()

	data := out.ToBytes()
	cornerIdx := 0
	centerIdx := (32*64 + 32) * 3

	assert.Less(t, data[cornerIdx], data[centerIdx])
}
