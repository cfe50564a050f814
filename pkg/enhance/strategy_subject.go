package enhance

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Subject looks: the processing is anchored on what is in front of the lens
// rather than the scene around it.

// enhancePortrait brightens towards a flattering key, smooths skin inside the
// skin mask while sharpening everything outside it, and keeps warm tones from
// oversaturating.
func enhancePortrait(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := adaptiveGamma(src, math.Max(analysis.MeanBrightness+8, 130))

	// Lower bar than the HasFaces flag; even borderline skin coverage is
	// worth the soften/sharpen split.
	if analysis.SkinRatio > 0.03 {
		out = replace(out, applyToRegion(out, analysis.SkinMask, 31, func(img gocv.Mat) gocv.Mat {
			smoothed := gocv.NewMat()
			gocv.BilateralFilter(img, &smoothed, 9, 55, 55)

			return smoothed
		}))

		out = replace(out, applyExcludingRegion(out, analysis.SkinMask, 21, func(img gocv.Mat) gocv.Mat {
			return unsharpMask(img, 0.8, 0.5, 4)
		}))
	}

	out = replace(out, capWarmSaturation(out, 160))
	out = replace(out, applyCLAHE(out, 0.8, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.03))

	return out, nil
}

// enhancePets favours fur texture: a mild white balance correction, fine
// structure boost and a restrained sharpen.
func enhancePets(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	if analysis.IsLowLight {
		out = replace(out, adaptiveGamma(out, 120))
	}

	out = replace(out, neutralizeWhiteBalance(out, 0.2))
	out = replace(out, clarity(out, 2, 0.4))
	out = replace(out, applyCLAHE(out, 1.2, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.02))

	if analysis.NoiseLevel < 10 {
		out = replace(out, unsharpMask(out, 1.2, 0.5, 3))
	}

	return out, nil
}

// enhanceFood goes bright and warm with a strong vibrance push; dishes read
// as appetising when muted colours are lifted more than saturated ones.
func enhanceFood(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := adaptiveGamma(src, math.Max(analysis.MeanBrightness+10, 135))

	out = replace(out, labShift(out, 2, 6))
	out = replace(out, applyCLAHE(out, 1.0, image.Pt(8, 8)))
	out = replace(out, boostVibrance(out, 0.25))
	out = replace(out, adjustSaturation(out, 1.15))

	if analysis.NoiseLevel < 8 {
		out = replace(out, unsharpMask(out, 0.8, 0.35, 4))
	}

	return out, nil
}
