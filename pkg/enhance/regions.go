package enhance

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
)

// detectSky finds blue or bright overcast sky, weighted towards the top of
// the frame. The returned mask may hold intermediate values from the vertical
// weighting; coverage counts any non-zero pixel.
func detectSky(hsv gocv.Mat) (gocv.Mat, float64) {
	h, w := hsv.Rows(), hsv.Cols()
	data := hsv.ToBytes()
	raw := make([]byte, h*w)

	for y := 0; y < h; y++ {
		weight := 1.0 - 0.7*float64(y)/float64(h)
		for x := 0; x < w; x++ {
			idx := (y*w + x) * 3
			hue, sat, val := data[idx], data[idx+1], data[idx+2]

			blueSky := hue >= blueHueLow && hue <= blueHueHigh && sat > 30 && val > 100
			overcast := sat < 50 && val > 180 && y < h/2

			if blueSky || overcast {
				raw[y*w+x] = uint8(255.0 * weight)
			}
		}
	}

	mask := maskFromBytes(raw, h, w)
	cleaned := morphCleanup(mask, image.Pt(15, 15), gocv.MorphClose, gocv.MorphOpen)
	mask.Close()

	return cleaned, maskRatio(cleaned)
}

// detectVegetation finds green foliage.
func detectVegetation(hsv gocv.Mat) (gocv.Mat, float64) {
	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(greenHueLow, 41, 31, 0),
		gocv.NewScalar(greenHueHigh, 255, 255, 0),
		&mask)

	cleaned := morphCleanup(mask, image.Pt(5, 5), gocv.MorphOpen, gocv.MorphClose)
	mask.Close()

	return cleaned, maskRatio(cleaned)
}

// detectWater finds cyan-to-blue regions of moderate saturation, closed with
// a horizontally elongated kernel since water tends to form horizontal bands.
func detectWater(hsv gocv.Mat) (gocv.Mat, float64) {
	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(80, 21, 51, 0),
		gocv.NewScalar(130, 179, 255, 0),
		&mask)

	cleaned := morphCleanup(mask, image.Pt(15, 3), gocv.MorphClose)
	mask.Close()

	return cleaned, maskRatio(cleaned)
}

// detectSkin intersects an HSV range with a YCrCb range. The combination cuts
// most of the false positives either space produces alone.
func detectSkin(img, hsv gocv.Mat) (gocv.Mat, float64) {
	hsvMask := gocv.NewMat()
	defer hsvMask.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, 20, 70, 0),
		gocv.NewScalar(25, 180, 255, 0),
		&hsvMask)

	ycrcb := gocv.NewMat()
	defer ycrcb.Close()
	gocv.CvtColor(img, &ycrcb, gocv.ColorBGRToYCrCb)

	ycrcbMask := gocv.NewMat()
	defer ycrcbMask.Close()
	gocv.InRangeWithScalar(ycrcb,
		gocv.NewScalar(0, 133, 77, 0),
		gocv.NewScalar(255, 173, 127, 0),
		&ycrcbMask)

	mask := gocv.NewMat()
	gocv.BitwiseAnd(hsvMask, ycrcbMask, &mask)

	cleaned := morphCleanup(mask, image.Pt(3, 3), gocv.MorphOpen)
	mask.Close()

	return cleaned, maskRatio(cleaned)
}

// detectForeground scores pixels by blurred edge saliency weighted towards
// the frame centre, then keeps everything above the 60th percentile.
func detectForeground(gray gocv.Mat) gocv.Mat {
	h, w := gray.Rows(), gray.Cols()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	saliency := gocv.NewMat()
	defer saliency.Close()
	gocv.GaussianBlur(edges, &saliency, image.Pt(31, 31), 0, 0, gocv.BorderDefault)

	data := saliency.ToBytes()
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Sqrt(cx*cx + cy*cy)

	scores := make([]float64, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			weight := 1.0 - 0.5*math.Sqrt(dx*dx+dy*dy)/maxDist
			scores[y*w+x] = float64(data[y*w+x]) * weight
		}
	}

	threshold := percentile(scores, 0.6)
	raw := make([]byte, h*w)
	for i, score := range scores {
		if score > threshold {
			raw[i] = 255
		}
	}

	mask := maskFromBytes(raw, h, w)
	cleaned := morphCleanup(mask, image.Pt(15, 15), gocv.MorphClose)
	mask.Close()

	return cleaned
}

func maskFromBytes(raw []byte, rows, cols int) gocv.Mat {
	mask, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, raw)
	if err != nil {
		// Cannot happen for a correctly sized buffer; return a defined-empty
		// mask rather than propagating.
		return gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	}

	return mask
}

func morphCleanup(mask gocv.Mat, ksize image.Point, ops ...gocv.MorphType) gocv.Mat {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, ksize)
	defer kernel.Close()

	current := mask.Clone()
	for _, op := range ops {
		next := gocv.NewMat()
		gocv.MorphologyEx(current, &next, op, kernel)
		current.Close()
		current = next
	}

	return current
}

func maskRatio(mask gocv.Mat) float64 {
	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}

	return float64(gocv.CountNonZero(mask)) / float64(total)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}
