package ico

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAContainer is returned when the input is not an ICO or CUR file.
	ErrNotAContainer = errors.New("not an icon or cursor file")

	ErrNotAPNG              = errors.New("not a png file")
	ErrTruncated            = errors.New("premature end")
	ErrUnsupportedColorType = errors.New("unsupported png color type")

	ErrHeaderTooShort         = errors.New("bitmap header is too short")
	ErrUnsupportedCompression = errors.New("compressed image data not supported")
	ErrInvalidPlanes          = errors.New("planes field in bitmap should be one")
	ErrInvalidField           = errors.New("colors important field in bitmap should be zero")
	ErrInvalidWidth           = errors.New("invalid bitmap width")
	ErrPaletteTooLarge        = errors.New("palette too large")

	ErrPaletteIndexOutOfRange = errors.New("png palette index out of range")
	ErrPaletteMissing         = errors.New("png palette missing")

	// ErrEncodeFailed is returned when the payload encoder rejects an image.
	ErrEncodeFailed = errors.New("failed to encode image")
)

// EntryError records a failure to read the headers of one container entry.
type EntryError struct {
	Index int // 1-based position in the container
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("image %d: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
