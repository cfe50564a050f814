package enhance

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Scene looks: tuned to the environment the frame was shot in.

// enhanceLandscape widens the usable tonal range and pushes colour harder
// than any other natural-light look.
func enhanceLandscape(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	if analysis.IsLowLight {
		out = replace(out, adaptiveGamma(out, 115))
	}

	out = replace(out, liftShadows(out, 25))
	out = replace(out, compressHighlights(out, 20))
	out = replace(out, applyCLAHE(out, 1.2, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.12))

	if analysis.NoiseLevel < 8 {
		out = replace(out, unsharpMask(out, 1.0, 0.4, 4))
	}

	return out, nil
}

// enhanceArchitecture keeps lines crisp and colour honest: neutral white
// balance, strong local contrast and a wide-radius clarity pass.
func enhanceArchitecture(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	if analysis.IsLowLight {
		out = replace(out, adaptiveGamma(out, 115))
	}

	out = replace(out, neutralizeWhiteBalance(out, 0.25))
	out = replace(out, applyCLAHE(out, 1.5, image.Pt(8, 8)))
	out = replace(out, clarity(out, 8, 0.35))

	if analysis.NoiseLevel < 10 {
		out = replace(out, unsharpMask(out, 1.0, 0.5, 3))
	}

	return out, nil
}

// enhanceCity is a grittier cousin of architecture: desaturated, contrasty,
// with structure emphasised at a tighter radius.
func enhanceCity(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	if analysis.IsLowLight {
		out = replace(out, adaptiveGamma(out, 105))
	}

	out = replace(out, applyCLAHE(out, 1.5, image.Pt(8, 8)))
	out = replace(out, contrastSCurve(out, 1.2))
	out = replace(out, clarity(out, 4, 0.3))
	out = replace(out, adjustSaturation(out, 0.88))

	if analysis.NoiseLevel < 10 {
		out = replace(out, unsharpMask(out, 1.0, 0.45, 3))
	}

	return out, nil
}

// enhanceOcean cools the chroma, deepens the blue band and opens up the
// bright water surface.
func enhanceOcean(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	if analysis.IsLowLight {
		out = replace(out, adaptiveGamma(out, 120))
	}

	out = replace(out, labShift(out, -4, -3))
	out = replace(out, boostHueBandSaturation(out, 80, 130, 20))
	out = replace(out, brightenHighlights(out, 10))
	out = replace(out, applyCLAHE(out, 1.0, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.08))

	return out, nil
}

// enhanceUnderwater compensates for the red light absorbed by the water
// column, then fights the resulting flatness with aggressive local contrast.
func enhanceUnderwater(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := denoiseColor(src, analysis.RecommendedDenoise*1.2)

	out = replace(out, restoreUnderwaterRed(out))
	out = replace(out, labShift(out, 8, 0))
	out = replace(out, applyCLAHE(out, 2.0, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.2))

	if analysis.NoiseLevel < 12 {
		out = replace(out, unsharpMask(out, 1.0, 0.5, 3))
	}

	return out, nil
}

// restoreUnderwaterRed compensates the red the water column absorbed, an
// offset for what is lost outright then a multiplicative boost, and trims the
// blue cast.
func restoreUnderwaterRed(src gocv.Mat) gocv.Mat {
	return mapBGR(src, func(_, _ int, b, g, r float64) (float64, float64, float64) {
		return b * 0.90, g, (r + 40.0) * 1.25
	})
}

// enhanceJungle rebalances the greens: yellow-greens are rotated towards pure
// green and the whole band gains saturation.
func enhanceJungle(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	switch {
	case analysis.MeanBrightness > 130:
		out = replace(out, adaptiveGamma(out, 120))
	case analysis.IsLowLight:
		out = replace(out, adaptiveGamma(out, 110))
	}

	out = replace(out, hueShiftBand(out, 35, 55, 8))
	out = replace(out, boostHueBandSaturation(out, greenHueLow, greenHueHigh, 12))
	out = replace(out, applyCLAHE(out, 1.2, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.10))

	return out, nil
}

// enhanceSnow exposes for the snow rather than the meter, then warms the
// shadows so they do not read as blue concrete.
func enhanceSnow(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := adaptiveGamma(src, math.Min(analysis.MeanBrightness+40, 175))

	out = replace(out, warmShadows(out, 8))
	out = replace(out, applyCLAHE(out, 0.8, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.02))

	return out, nil
}

// enhanceIndoor corrects artificial light casts with a gray-world balance and
// opens up the shadows typical of window-lit rooms.
func enhanceIndoor(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := denoiseColor(src, analysis.RecommendedDenoise*1.2)

	out = replace(out, grayWorldWhiteBalance(out))

	target := 115.0
	if analysis.MeanBrightness < 110 {
		target = 118.0
	}
	out = replace(out, adaptiveGamma(out, target))

	out = replace(out, liftShadows(out, 30))
	out = replace(out, applyCLAHE(out, 1.0, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.03))

	return out, nil
}
