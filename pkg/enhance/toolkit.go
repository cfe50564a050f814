package enhance

import (
	"image"
	"math"
	"math/rand"

	"gocv.io/x/gocv"
)

// The toolkit is a set of stateless operations over 8UC3 BGR Mats. Every
// function returns a newly allocated Mat and leaves its input untouched;
// results saturate to [0, 255] through OpenCV arithmetic or explicit clamps.

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}

	return uint8(v)
}

// mapLab converts to Lab, applies fn per pixel and converts back. fn receives
// and returns channel values in 0..255 (a and b are centred on 128).
func mapLab(src gocv.Mat, fn func(l, a, b float64) (float64, float64, float64)) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

	data := lab.ToBytes()
	for i := 0; i+2 < len(data); i += 3 {
		l, a, b := fn(float64(data[i]), float64(data[i+1]), float64(data[i+2]))
		data[i], data[i+1], data[i+2] = clampByte(l), clampByte(a), clampByte(b)
	}

	mapped, err := gocv.NewMatFromBytes(lab.Rows(), lab.Cols(), gocv.MatTypeCV8UC3, data)
	if err != nil {
		return src.Clone()
	}
	defer mapped.Close()

	out := gocv.NewMat()
	gocv.CvtColor(mapped, &out, gocv.ColorLabToBGR)

	return out
}

// mapHSV converts to HSV, applies fn per pixel and converts back. Hue is
// clamped to OpenCV's 0..179 range.
func mapHSV(src gocv.Mat, fn func(h, s, v float64) (float64, float64, float64)) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	data := hsv.ToBytes()
	for i := 0; i+2 < len(data); i += 3 {
		h, s, v := fn(float64(data[i]), float64(data[i+1]), float64(data[i+2]))
		if h > 179 {
			h = 179
		}
		data[i], data[i+1], data[i+2] = clampByte(h), clampByte(s), clampByte(v)
	}

	mapped, err := gocv.NewMatFromBytes(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8UC3, data)
	if err != nil {
		return src.Clone()
	}
	defer mapped.Close()

	out := gocv.NewMat()
	gocv.CvtColor(mapped, &out, gocv.ColorHSVToBGR)

	return out
}

// mapBGR applies fn per pixel directly in BGR space.
func mapBGR(src gocv.Mat, fn func(x, y int, b, g, r float64) (float64, float64, float64)) gocv.Mat {
	data := src.ToBytes()
	cols := src.Cols()

	for i := 0; i+2 < len(data); i += 3 {
		pixel := i / 3
		b, g, r := fn(pixel%cols, pixel/cols, float64(data[i]), float64(data[i+1]), float64(data[i+2]))
		data[i], data[i+1], data[i+2] = clampByte(b), clampByte(g), clampByte(r)
	}

	out, err := gocv.NewMatFromBytes(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3, data)
	if err != nil {
		return src.Clone()
	}

	return out
}

// applyCLAHE runs contrast-limited adaptive histogram equalisation on the
// lightness channel only, leaving chroma untouched.
func applyCLAHE(src gocv.Mat, clipLimit float64, grid image.Point) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer closeAll(channels)

	clahe := gocv.NewCLAHEWithParams(clipLimit, grid)
	defer clahe.Close()

	equalised := gocv.NewMat()
	defer equalised.Close()
	clahe.Apply(channels[0], &equalised)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{equalised, channels[1], channels[2]}, &merged)

	out := gocv.NewMat()
	gocv.CvtColor(merged, &out, gocv.ColorLabToBGR)

	return out
}

// adjustSaturation scales saturation multiplicatively. Scale 1 is a no-op.
func adjustSaturation(src gocv.Mat, scale float64) gocv.Mat {
	if scale == 1.0 {
		return src.Clone()
	}

	return mapHSV(src, func(h, s, v float64) (float64, float64, float64) {
		return h, s * scale, v
	})
}

// adaptiveGamma pulls the mean luminance towards target through a gamma
// curve, clipped to [0.5, 2.5] so a badly metered frame cannot explode.
func adaptiveGamma(src gocv.Mat, target float64) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	current := gocv.Mean(gray).Val1
	if current < 1 {
		current = 1
	}

	gamma := math.Log(target/255.0) / math.Log(current/255.0)
	if gamma < 0.5 {
		gamma = 0.5
	}
	if gamma > 2.5 {
		gamma = 2.5
	}

	// (current/255)^gamma == target/255, so gamma is the LUT exponent.
	table := make([]uint8, 256)
	for i := range table {
		table[i] = clampByte(math.Pow(float64(i)/255.0, gamma) * 255.0)
	}

	return applyLUT(src, table)
}

func applyLUT(src gocv.Mat, table []uint8) gocv.Mat {
	lut, err := gocv.NewMatFromBytes(1, 256, gocv.MatTypeCV8U, table)
	if err != nil {
		return src.Clone()
	}
	defer lut.Close()

	out := gocv.NewMat()
	gocv.LUT(src, lut, &out)

	return out
}

// unsharpMask sharpens by amplifying the difference against a Gaussian blur.
// With a positive threshold, pixels whose local contrast is below it keep
// their original value, which stops flat areas from gaining grain.
func unsharpMask(src gocv.Mat, sigma, strength float64, threshold int) gocv.Mat {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(0, 0), sigma, sigma, gocv.BorderDefault)

	sharpened := gocv.NewMat()
	gocv.AddWeighted(src, 1.0+strength, blurred, -strength, 0, &sharpened)

	if threshold <= 0 {
		return sharpened
	}

	srcData := src.ToBytes()
	blurData := blurred.ToBytes()
	outData := sharpened.ToBytes()
	for i := range outData {
		diff := int(srcData[i]) - int(blurData[i])
		if diff < 0 {
			diff = -diff
		}
		if diff < threshold {
			outData[i] = srcData[i]
		}
	}

	masked, err := gocv.NewMatFromBytes(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3, outData)
	if err != nil {
		return sharpened
	}
	sharpened.Close()

	return masked
}

// clarity adds back a fraction of the high-pass of lightness. A wide sigma
// emphasises structure, a narrow one fine texture.
func clarity(src gocv.Mat, sigma, amount float64) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer closeAll(channels)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(channels[0], &blurred, image.Pt(0, 0), sigma, sigma, gocv.BorderDefault)

	highPass := gocv.NewMat()
	defer highPass.Close()
	gocv.Subtract(channels[0], blurred, &highPass)

	boosted := gocv.NewMat()
	defer boosted.Close()
	gocv.AddWeighted(channels[0], 1.0, highPass, amount, 0, &boosted)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{boosted, channels[1], channels[2]}, &merged)

	out := gocv.NewMat()
	gocv.CvtColor(merged, &out, gocv.ColorLabToBGR)

	return out
}

// applyToRegion runs fn over the whole image, then blends the result against
// the original using a Gaussian-softened mask as per-pixel alpha.
func applyToRegion(src, mask gocv.Mat, softenKsize int, fn func(gocv.Mat) gocv.Mat) gocv.Mat {
	processed := fn(src)
	defer processed.Close()

	soft := gocv.NewMat()
	defer soft.Close()
	gocv.GaussianBlur(mask, &soft, image.Pt(softenKsize, softenKsize), 0, 0, gocv.BorderDefault)

	return blendWithMask(processed, src, soft)
}

// applyExcludingRegion runs fn everywhere except the masked region.
func applyExcludingRegion(src, mask gocv.Mat, softenKsize int, fn func(gocv.Mat) gocv.Mat) gocv.Mat {
	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(mask, &inverted)

	return applyToRegion(src, inverted, softenKsize, fn)
}

// blendWithMask mixes fore over back with a single-channel weight mask
// (255 = fully fore).
func blendWithMask(fore, back, mask gocv.Mat) gocv.Mat {
	foreData := fore.ToBytes()
	backData := back.ToBytes()
	maskData := mask.ToBytes()

	out := make([]byte, len(foreData))
	for i := range out {
		alpha := float64(maskData[i/3]) / 255.0
		out[i] = clampByte(float64(foreData[i])*alpha + float64(backData[i])*(1.0-alpha))
	}

	blended, err := gocv.NewMatFromBytes(back.Rows(), back.Cols(), gocv.MatTypeCV8UC3, out)
	if err != nil {
		return back.Clone()
	}

	return blended
}

// denoiseColor runs colour-aware non-local-means denoising. Non-positive
// strength is a no-op.
func denoiseColor(src gocv.Mat, strength float64) gocv.Mat {
	if strength <= 0 {
		return src.Clone()
	}

	out := gocv.NewMat()
	gocv.FastNlMeansDenoisingColoredWithParams(src, &out, float32(strength), float32(strength), 7, 21)

	return out
}

// denoiseColorSplit is denoiseColor with independent luminance and chroma
// strengths.
func denoiseColorSplit(src gocv.Mat, hLum, hColor float64) gocv.Mat {
	if hLum <= 0 && hColor <= 0 {
		return src.Clone()
	}
	if hLum < 0 {
		hLum = 0
	}
	if hColor < 0 {
		hColor = 0
	}

	out := gocv.NewMat()
	gocv.FastNlMeansDenoisingColoredWithParams(src, &out, float32(hLum), float32(hColor), 7, 21)

	return out
}

// boostVibrance boosts saturation inversely to how saturated a pixel already
// is, so muted colours move more than vivid ones.
func boostVibrance(src gocv.Mat, strength float64) gocv.Mat {
	return mapHSV(src, func(h, s, v float64) (float64, float64, float64) {
		boost := strength * (1.0 - s/255.0)

		return h, s * (1.0 + boost), v
	})
}

// contrastSCurve steepens lightness around the midpoint.
func contrastSCurve(src gocv.Mat, slope float64) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return (0.5 + (l/255.0-0.5)*slope) * 255.0, a, b
	})
}

// labShift offsets the two chroma axes uniformly (positive a = magenta,
// positive b = yellow).
func labShift(src gocv.Mat, aShift, bShift float64) gocv.Mat {
	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return l, a + aShift, b + bShift
	})
}

// neutralizeWhiteBalance pulls the chroma axes towards neutral grey by the
// given fraction.
func neutralizeWhiteBalance(src gocv.Mat, pull float64) gocv.Mat {
	keep := 1.0 - pull

	return mapLab(src, func(l, a, b float64) (float64, float64, float64) {
		return l, a*keep + 128.0*pull, b*keep + 128.0*pull
	})
}

// grayWorldWhiteBalance scales each channel so all three averages meet at a
// common grey, correcting tungsten and fluorescent casts.
func grayWorldWhiteBalance(src gocv.Mat) gocv.Mat {
	mean := gocv.Mean(src)
	avgB, avgG, avgR := mean.Val1, mean.Val2, mean.Val3
	avgGray := (avgB + avgG + avgR) / 3.0

	scale := func(avg float64) float64 {
		if avg <= 0 {
			return 1
		}

		return avgGray / avg
	}
	sb, sg, sr := scale(avgB), scale(avgG), scale(avgR)

	return mapBGR(src, func(_, _ int, b, g, r float64) (float64, float64, float64) {
		return b * sb, g * sg, r * sr
	})
}

// reduceContrast flattens the image by blending towards mid-grey.
func reduceContrast(src gocv.Mat, strength float64) gocv.Mat {
	keep := 1.0 - strength

	return mapBGR(src, func(_, _ int, b, g, r float64) (float64, float64, float64) {
		return b*keep + 128.0*strength, g*keep + 128.0*strength, r*keep + 128.0*strength
	})
}

// desaturateShadows reduces saturation in dark pixels only.
func desaturateShadows(src gocv.Mat) gocv.Mat {
	return mapHSV(src, func(h, s, v float64) (float64, float64, float64) {
		shadow := clampUnit((80.0 - v) / 80.0)

		return h, s * (1.0 - shadow*0.3), v
	})
}

// applyVignette darkens pixels radially from the centre. radiusScale widens
// the falloff beyond the half-diagonal.
func applyVignette(src gocv.Mat, strength, radiusScale float64) gocv.Mat {
	cx := float64(src.Cols()) / 2
	cy := float64(src.Rows()) / 2
	radius := math.Max(cx, cy) * radiusScale

	return mapBGR(src, func(x, y int, b, g, r float64) (float64, float64, float64) {
		dx, dy := float64(x)-cx, float64(y)-cy
		dist := math.Sqrt(dx*dx + dy*dy)
		factor := clampUnit(1.0 - strength*(dist/radius)*(dist/radius))

		return b * factor, g * factor, r * factor
	})
}

// addGrain adds monochromatic Gaussian noise, the same offset on all three
// channels of a pixel. The generator is seeded per call so a preset remains
// reproducible for identical input.
func addGrain(src gocv.Mat, sigma float64) gocv.Mat {
	rng := rand.New(rand.NewSource(int64(src.Rows())<<16 | int64(src.Cols())))

	data := src.ToBytes()
	for i := 0; i+2 < len(data); i += 3 {
		noise := rng.NormFloat64() * sigma
		data[i] = clampByte(float64(data[i]) + noise)
		data[i+1] = clampByte(float64(data[i+1]) + noise)
		data[i+2] = clampByte(float64(data[i+2]) + noise)
	}

	out, err := gocv.NewMatFromBytes(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3, data)
	if err != nil {
		return src.Clone()
	}

	return out
}

// boostHueBandSaturation adds a flat saturation offset inside a hue band.
func boostHueBandSaturation(src gocv.Mat, lowHue, highHue, amount float64) gocv.Mat {
	return mapHSV(src, func(h, s, v float64) (float64, float64, float64) {
		if h >= lowHue && h <= highHue {
			s += amount
		}

		return h, s, v
	})
}

// hueShiftBand rotates the hue of pixels inside a band by shift degrees
// (OpenCV half-degrees).
func hueShiftBand(src gocv.Mat, lowHue, highHue, shift float64) gocv.Mat {
	return mapHSV(src, func(h, s, v float64) (float64, float64, float64) {
		if h >= lowHue && h <= highHue {
			h += shift
		}

		return h, s, v
	})
}

// redFilterMono converts to monochrome with a red-heavy channel mix, the way
// a red lens filter darkens blue skies and lifts warm tones.
func redFilterMono(src gocv.Mat) gocv.Mat {
	data := src.ToBytes()
	mono := make([]byte, len(data)/3)
	for i := range mono {
		idx := i * 3
		b, g, r := float64(data[idx]), float64(data[idx+1]), float64(data[idx+2])
		mono[i] = clampByte(r*0.50 + g*0.35 + b*0.15)
	}

	out, err := gocv.NewMatFromBytes(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1, mono)
	if err != nil {
		return gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1)
	}

	return out
}

// tanhCurveLUT builds a steep S-curve lookup table.
func tanhCurveLUT(steepness float64) []uint8 {
	table := make([]uint8, 256)
	for i := range table {
		n := float64(i) / 255.0
		table[i] = clampByte(0.5 * (1.0 + math.Tanh(steepness*(n-0.5))) * 255.0)
	}

	return table
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}

	return v
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
