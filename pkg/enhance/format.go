package enhance

import "strings"

// Format is the target encoding of the final image.
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
)

// ResolveFormat maps a caller-supplied name onto a format, case-insensitively.
// Unknown names resolve to JPEG; this is never an error.
func ResolveFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "png":
		return FormatPNG
	case "jpg", "jpeg":
		return FormatJPEG
	default:
		return FormatJPEG
	}
}

// MIME returns the MIME type declared for the encoded bytes.
func (f Format) MIME() string {
	if f == FormatPNG {
		return "image/png"
	}

	return "image/jpeg"
}
