package enhance

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Delivery bounds. Images are downscaled to fit within these, never upscaled.
const (
	maxDeliveryWidth  = 1080
	maxDeliveryHeight = 1920

	previewLongestSide = 1080
	previewJPEGQuality = 85

	pngCompressionLevel = 6
)

// fitWithin downscales img so it fits inside maxW by maxH, preserving aspect
// ratio. An image already inside the bounds is returned as a clone.
func fitWithin(img gocv.Mat, maxW, maxH int) gocv.Mat {
	w, h := img.Cols(), img.Rows()
	if w <= 0 || h <= 0 {
		return img.Clone()
	}

	scale := math.Min(1.0, math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h)))
	if scale >= 1.0 {
		return img.Clone()
	}

	out := gocv.NewMat()
	gocv.Resize(img, &out, image.Pt(int(float64(w)*scale), int(float64(h)*scale)), 0, 0, gocv.InterpolationLanczos4)

	return out
}

// fitLongestSide downscales img so its longest side is at most limit.
func fitLongestSide(img gocv.Mat, limit int) gocv.Mat {
	w, h := img.Cols(), img.Rows()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= limit || longest == 0 {
		return img.Clone()
	}

	scale := float64(limit) / float64(longest)

	out := gocv.NewMat()
	gocv.Resize(img, &out, image.Pt(int(float64(w)*scale), int(float64(h)*scale)), 0, 0, gocv.InterpolationLanczos4)

	return out
}

// optimalQuality picks a JPEG quality from the image measurements: detailed
// frames earn more bits, soft ones fewer, and saturated colour gets a small
// bump against blocking artefacts.
func optimalQuality(sharpness, edgeDensity, meanSaturation float64) int {
	quality := 88
	switch {
	case sharpness > 800 || edgeDensity > 0.15:
		quality = 92
	case sharpness > 400:
		quality = 90
	}

	if meanSaturation > 120 {
		quality += 2
		if quality > 95 {
			quality = 95
		}
	}

	if sharpness < 200 && edgeDensity < 0.05 {
		quality -= 3
		if quality < 85 {
			quality = 85
		}
	}

	return quality
}

// measureForQuality reads detail and colour off the final pixels, so the
// quality policy sees what will actually be encoded rather than the input.
func measureForQuality(img gocv.Mat) (sharpness, edgeDensity, meanSaturation float64) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	var detail Analysis
	analyzeDetail(gray, &detail)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	channels := gocv.Split(hsv)
	defer closeAll(channels)

	return detail.Sharpness, detail.EdgeDensity, gocv.Mean(channels[1]).Val1
}

// encodeImage serialises img in the requested format. JPEG output is
// optimised and progressive at the given quality; PNG ignores quality and
// compresses at a fixed level.
func encodeImage(img gocv.Mat, format Format, quality int) ([]byte, error) {
	var (
		ext    gocv.FileExt
		params []int
	)

	if format == FormatPNG {
		ext = gocv.PNGFileExt
		params = []int{int(gocv.IMWritePngCompression), pngCompressionLevel}
	} else {
		ext = gocv.JPEGFileExt
		params = []int{
			int(gocv.IMWriteJpegQuality), quality,
			int(gocv.IMWriteJpegOptimize), 1,
			int(gocv.IMWriteJpegProgressive), 1,
		}
	}

	buf, err := gocv.IMEncodeWithParams(ext, img, params)
	if err != nil {
		return nil, errors.Wrap(ErrEncode, err.Error())
	}
	defer buf.Close()

	if buf.Len() == 0 {
		return nil, errors.Wrap(ErrEncode, "encoder produced no bytes")
	}

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())

	return out, nil
}
