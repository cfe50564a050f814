package enhance

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// solidMat builds a w by h image filled with one BGR colour.
func solidMat(t *testing.T, w, h int, b, g, r uint8) gocv.Mat {
	t.Helper()

	data := make([]byte, w*h*3)
	for i := 0; i < len(data); i += 3 {
		data[i], data[i+1], data[i+2] = b, g, r
	}

	img, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)

	return img
}

// gradientMat builds a w by h image with horizontal brightness and vertical
// hue variation, enough texture for the analyzers to have something to see.
func gradientMat(t *testing.T, w, h int) gocv.Mat {
	t.Helper()

	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := (y*w + x) * 3
			data[idx] = uint8(255 * x / w)
			data[idx+1] = uint8(255 * y / h)
			data[idx+2] = uint8(255 * (x + y) / (w + h))
		}
	}

	img, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)

	return img
}

// checkerMat builds a high-contrast checkerboard, maximal detail for the
// sharpness and edge measurements.
func checkerMat(t *testing.T, w, h, block int) gocv.Mat {
	t.Helper()

	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/block+y/block)%2 == 0 {
				idx := (y*w + x) * 3
				data[idx], data[idx+1], data[idx+2] = 255, 255, 255
			}
		}
	}

	img, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)

	return img
}

// meanGray returns the mean luminance of a BGR image.
func meanGray(t *testing.T, img gocv.Mat) float64 {
	t.Helper()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	return gocv.Mean(gray).Val1
}
