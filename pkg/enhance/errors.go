package enhance

import "github.com/pkg/errors"

var (
	// ErrDecode reports unreadable or corrupt RAW input. It is fatal for the run.
	ErrDecode = errors.New("unable to decode input")
	// ErrEncode reports a failed encode of the final image. It is fatal for the run.
	ErrEncode = errors.New("unable to encode output")
)
