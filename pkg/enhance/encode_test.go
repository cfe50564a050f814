package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimalQuality(t *testing.T) {
	tcs := map[string]struct {
		sharpness   float64
		edgeDensity float64
		saturation  float64
		want        int
	}{
		"baseline":            {sharpness: 300, edgeDensity: 0.06, saturation: 80, want: 88},
		"very sharp":          {sharpness: 900, edgeDensity: 0.2, saturation: 80, want: 92},
		"dense edges":         {sharpness: 300, edgeDensity: 0.16, saturation: 80, want: 92},
		"moderately sharp":    {sharpness: 500, edgeDensity: 0.06, saturation: 80, want: 90},
		"soft and flat":       {sharpness: 150, edgeDensity: 0.02, saturation: 80, want: 85},
		"saturated baseline":  {sharpness: 300, edgeDensity: 0.06, saturation: 130, want: 90},
		"saturated and sharp": {sharpness: 900, edgeDensity: 0.2, saturation: 130, want: 94},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, optimalQuality(tc.sharpness, tc.edgeDensity, tc.saturation))
		})
	}
}

func TestMeasureForQualityFlatVsDetailed(t *testing.T) {
	flat := solidMat(t, 64, 64, 128, 128, 128)
	defer flat.Close()

	sharpness, edgeDensity, saturation := measureForQuality(flat)
	assert.Less(t, sharpness, 1.0)
	assert.Less(t, edgeDensity, 0.01)
	assert.Less(t, saturation, 1.0)
	assert.Equal(t, 85, optimalQuality(sharpness, edgeDensity, saturation))

	detailed := checkerMat(t, 64, 64, 4)
	defer detailed.Close()

	sharpness, edgeDensity, saturation = measureForQuality(detailed)
	assert.Greater(t, sharpness, 800.0)
	assert.Equal(t, 92, optimalQuality(sharpness, edgeDensity, saturation))
}

func TestFitWithinDownscales(t *testing.T) {
	img := solidMat(t, 4000, 2000, 128, 128, 128)
	defer img.Close()

	out := fitWithin(img, maxDeliveryWidth, maxDeliveryHeight)
	defer out.Close()

	assert.Equal(t, 1080, out.Cols())
	assert.Equal(t, 540, out.Rows())
}

func TestFitWithinNeverUpscales(t *testing.T) {
	img := solidMat(t, 100, 80, 128, 128, 128)
	defer img.Close()

	out := fitWithin(img, maxDeliveryWidth, maxDeliveryHeight)
	defer out.Close()

	assert.Equal(t, 100, out.Cols())
	assert.Equal(t, 80, out.Rows())
}

func TestFitWithinPortraitBound(t *testing.T) {
	img := solidMat(t, 1000, 4000, 128, 128, 128)
	defer img.Close()

	out := fitWithin(img, maxDeliveryWidth, maxDeliveryHeight)
	defer out.Close()

	assert.Equal(t, 1920, out.Rows())
	assert.Equal(t, 480, out.Cols())
}

func TestFitLongestSide(t *testing.T) {
	img := solidMat(t, 3000, 1500, 128, 128, 128)
	defer img.Close()

	out := fitLongestSide(img, previewLongestSide)
	defer out.Close()

	assert.Equal(t, 1080, out.Cols())
	assert.Equal(t, 540, out.Rows())
}

func TestEncodeImageJPEGMagic(t *testing.T) {
	img := gradientMat(t, 64, 64)
	defer img.Close()

	data, err := encodeImage(img, FormatJPEG, 90)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])
}

func TestEncodeImagePNGMagic(t *testing.T) {
	img := gradientMat(t, 64, 64)
	defer img.Close()

	data, err := encodeImage(img, FormatPNG, 0)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}
