package enhance

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Decoder turns uploaded bytes into a BGR image buffer. The default decoder
// goes through OpenCV; tests substitute their own.
type Decoder interface {
	Decode(data []byte) (gocv.Mat, error)
}

// OpenCVDecoder decodes any container OpenCV understands, including the
// full-size JPEG previews camera RAW files embed.
type OpenCVDecoder struct{}

// Decode returns a non-empty 8-bit 3-channel image or a wrapped ErrDecode.
func (OpenCVDecoder) Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.Mat{}, errors.Wrap(ErrDecode, "empty input")
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(ErrDecode, err.Error())
	}
	if img.Empty() {
		img.Close()

		return gocv.Mat{}, errors.Wrap(ErrDecode, "unsupported or corrupt image data")
	}

	return img, nil
}
