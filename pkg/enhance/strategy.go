package enhance

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Strategy turns a decoded image into its enhanced version for one preset.
// It reads the analysis but never mutates it, and returns a new Mat of the
// same dimensions and type as src.
type Strategy func(src gocv.Mat, analysis *Analysis) (gocv.Mat, error)

// strategies is the static dispatch table. ResolvePreset guarantees every
// resolved preset has an entry here.
var strategies = map[Preset]Strategy{
	PresetPortrait:     enhancePortrait,
	PresetPets:         enhancePets,
	PresetFood:         enhanceFood,
	PresetLandscape:    enhanceLandscape,
	PresetArchitecture: enhanceArchitecture,
	PresetCity:         enhanceCity,
	PresetOcean:        enhanceOcean,
	PresetUnderwater:   enhanceUnderwater,
	PresetJungle:       enhanceJungle,
	PresetSnow:         enhanceSnow,
	PresetIndoor:       enhanceIndoor,
	PresetStandard:     enhanceStandard,
	PresetSunset:       enhanceSunset,
	PresetNight:        enhanceNight,
	PresetBright:       enhanceBright,
	PresetCinematic:    enhanceCinematic,
	PresetRetro:        enhanceRetro,
	PresetMono:         enhanceMono,
}

// customDenoise marks strategies that scale noise reduction themselves and
// must not get the shared pass on top.
var customDenoise = map[Preset]struct{}{
	PresetNight:      {},
	PresetIndoor:     {},
	PresetUnderwater: {},
	PresetRetro:      {},
}

// Enhance applies the strategy for preset to src. Unknown presets fall back
// to the standard look. Noise reduction at the recommended strength runs
// first unless the strategy owns its own denoising.
func Enhance(src gocv.Mat, preset Preset, analysis *Analysis) (gocv.Mat, error) {
	if src.Empty() || src.Channels() != 3 {
		return gocv.Mat{}, errors.New("enhancement requires a non-empty 3-channel image")
	}

	strategy, ok := strategies[preset]
	if !ok {
		preset = PresetStandard
		strategy = strategies[PresetStandard]
	}

	input := src
	if _, own := customDenoise[preset]; !own && analysis.RecommendedDenoise > 0 {
		denoised := denoiseColor(src, analysis.RecommendedDenoise)
		defer denoised.Close()
		input = denoised
	}

	return strategy(input, analysis)
}

// replace closes the previous stage output and threads the next one through,
// so a strategy body reads as a linear chain.
func replace(old, next gocv.Mat) gocv.Mat {
	old.Close()

	return next
}

// liftShadows raises lightness below 90, proportionally to how deep the
// shadow is, up to amount.
func liftShadows(src gocv.Mat, amount float64) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return l + clampUnit((90.0-l)/90.0)*amount, a, b
	})
}

// compressHighlights pulls lightness above 180 down, up to amount.
func compressHighlights(src gocv.Mat, amount float64) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return l - clampUnit((l-180.0)/75.0)*amount, a, b
	})
}

// brightenHighlights lifts the already-bright range further, up to amount.
func brightenHighlights(src gocv.Mat, amount float64) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return l + clampUnit((l-170.0)/85.0)*amount, a, b
	})
}

// crushBlacks darkens the deepest shadows by up to half, anchoring the blacks.
func crushBlacks(src gocv.Mat) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return l * (1.0 - clampUnit((30.0-l)/30.0)*0.5), a, b
	})
}

// fadeBlacks compresses the tonal range from below, the washed-out film look.
func fadeBlacks(src gocv.Mat) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return l*0.88 + 20.0, a, b
	})
}

// warmShadows pushes shadow chroma towards yellow without touching midtones.
func warmShadows(src gocv.Mat, amount float64) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return l, a, b + clampUnit((100.0-l)/100.0)*amount
	})
}

// tealOrangeGrade shifts shadows towards teal and highlights towards orange,
// each weighted by distance from mid-grey.
func tealOrangeGrade(src gocv.Mat) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		shadow := clampUnit((128.0 - l) / 128.0)
		highlight := clampUnit((l - 128.0) / 128.0)

		return l,
			a - 6.0*shadow + 4.0*highlight,
			b - 8.0*shadow + 7.0*highlight
	})
}

// capWarmSaturation limits saturation of warm hues, keeping skin from going
// orange under global saturation boosts.
func capWarmSaturation(src gocv.Mat, limit float64) gocv.Mat {
	return mapHSV(src, func(h, s, v float64) (float64, float64, float64) {
		if (h <= 25 || h >= 160) && s > limit {
			s = limit
		}

		return h, s, v
	})
}
