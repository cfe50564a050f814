package enhance

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Vibe looks: mood-first grades that apply regardless of subject or scene.

// enhanceStandard is the conservative default: fix exposure only when it is
// actually off, add a touch of local contrast and leave colour nearly alone.
func enhanceStandard(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	switch {
	case analysis.IsLowLight:
		out = replace(out, adaptiveGamma(out, 112))
	case analysis.MeanBrightness < 95:
		out = replace(out, adaptiveGamma(out, 110))
	}

	out = replace(out, applyCLAHE(out, 0.8, image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 1.02))

	return out, nil
}

// enhanceSunset amplifies the golden-hour chroma and keeps the sun disc and
// lit clouds from clipping.
func enhanceSunset(src gocv.Mat, _ *Analysis) (gocv.Mat, error) {
	out := labShift(src, 4, 8)

	out = replace(out, compressHighlights(out, 25))
	out = replace(out, applyCLAHE(out, 1.0, image.Pt(8, 8)))
	out = replace(out, boostVibrance(out, 0.2))
	out = replace(out, adjustSaturation(out, 1.10))

	return out, nil
}

// enhanceNight scales denoising with how dark the frame is, lifts the
// midtones without flattening the blacks, and finishes with a light edge-aware
// smooth to mop up chroma noise the first pass left behind.
func enhanceNight(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	hLum, hColor := nightDenoiseStrengths(analysis.MeanBrightness, analysis.Sharpness)

	out := denoiseColorSplit(src, hLum, hColor)

	out = replace(out, adaptiveGamma(out, math.Min(analysis.MeanBrightness+20, 115)))
	out = replace(out, crushBlacks(out))
	out = replace(out, applyCLAHE(out, math.Min(analysis.RecommendedCLAHEClip, 1.2), image.Pt(8, 8)))
	out = replace(out, adjustSaturation(out, 0.92))

	smoothed := gocv.NewMat()
	gocv.BilateralFilter(out, &smoothed, 5, 25, 25)
	out = replace(out, smoothed)

	return out, nil
}

// nightDenoiseStrengths scales noise reduction with how dark the frame is.
// Sharp frames back off to protect detail, but never below the minimum
// useful strength.
func nightDenoiseStrengths(meanBrightness, sharpness float64) (float64, float64) {
	darkness := clampUnit(1.0 - meanBrightness/128.0)

	hLum := 5.0 + darkness*10.0
	hColor := 5.0 + darkness*8.0
	if sharpness > 300 {
		hLum = math.Max(3, hLum-3.0)
		hColor = math.Max(3, hColor-2.0)
	}

	return hLum, hColor
}

// enhanceBright is the airy high-key look: lifted exposure, softened contrast
// and clean desaturated shadows.
func enhanceBright(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := adaptiveGamma(src, math.Min(analysis.MeanBrightness+30, 165))

	out = replace(out, reduceContrast(out, 0.12))
	out = replace(out, applyCLAHE(out, 0.6, image.Pt(8, 8)))
	out = replace(out, desaturateShadows(out))
	out = replace(out, adjustSaturation(out, 0.96))

	return out, nil
}

// enhanceCinematic applies a teal and orange split grade under a steep
// S-curve, finished with a vignette.
func enhanceCinematic(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	if analysis.IsLowLight {
		out = replace(out, adaptiveGamma(out, 105))
	}

	out = replace(out, tealOrangeGrade(out))
	out = replace(out, applyCLAHE(out, 1.3, image.Pt(8, 8)))
	out = replace(out, contrastSCurve(out, 1.25))
	out = replace(out, adjustSaturation(out, 0.95))
	out = replace(out, applyVignette(out, 0.18, 1.1))

	return out, nil
}

// enhanceRetro fades the blacks, drifts the chroma towards warm film stock
// and adds visible grain.
func enhanceRetro(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	if analysis.RecommendedDenoise > 2 {
		out = replace(out, denoiseColor(out, analysis.RecommendedDenoise*0.5))
	}

	if analysis.IsLowLight {
		out = replace(out, adaptiveGamma(out, 110))
	}

	out = replace(out, fadeBlacks(out))
	out = replace(out, labShift(out, -3, 5))
	out = replace(out, adjustSaturation(out, 0.82))
	out = replace(out, addGrain(out, 6))
	out = replace(out, applyVignette(out, 0.20, 1.2))

	return out, nil
}

// enhanceMono converts through a red-filter channel mix, pushes contrast with
// a tanh curve and equalises locally, then widens back to three channels so
// the encoder path stays uniform.
func enhanceMono(src gocv.Mat, analysis *Analysis) (gocv.Mat, error) {
	out := src.Clone()

	if analysis.IsLowLight {
		out = replace(out, adaptiveGamma(out, 115))
	}

	mono := redFilterMono(out)
	out.Close()

	mono = replace(mono, applyLUT(mono, tanhCurveLUT(3.5)))

	clahe := gocv.NewCLAHEWithParams(1.5, image.Pt(8, 8))
	defer clahe.Close()
	equalised := gocv.NewMat()
	clahe.Apply(mono, &equalised)
	mono.Close()

	widened := gocv.NewMat()
	gocv.CvtColor(equalised, &widened, gocv.ColorGrayToBGR)
	equalised.Close()

	return widened, nil
}
