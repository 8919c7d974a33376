package imaging

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is. The concrete error types below
// carry the details and match these sentinels.
var (
	ErrInvalidGrid = errors.New("invalid grid")
	ErrDecode      = errors.New("cannot decode image")
	ErrEncode      = errors.New("cannot encode tile")
)

// InvalidGridError reports a GridSpec that cannot be applied to an image:
// a non-positive row or column count, a negative margin, or a margin large
// enough to collapse a cell to zero or negative size.
type InvalidGridError struct {
	Spec   GridSpec
	Width  int // source image width in pixels
	Height int // source image height in pixels
	Reason string
}

func (e *InvalidGridError) Error() string {
	return fmt.Sprintf("invalid grid (%d columns x %d rows, margin %d) for %dx%d image: %s",
		e.Spec.Columns, e.Spec.Rows, e.Spec.Margin, e.Width, e.Height, e.Reason)
}

// Is reports whether target is ErrInvalidGrid.
func (e *InvalidGridError) Is(target error) bool {
	return target == ErrInvalidGrid
}

// DecodeError reports source data that is not a supported raster image.
type DecodeError struct {
	Source string // file path or other description of the input
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("failed to decode image: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// EncodeError reports a tile that could not be written as PNG.
// Index is the zero-based tile index, or -1 for images that are not tiles.
type EncodeError struct {
	Index int
	Err   error
}

func (e *EncodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("failed to encode image: %v", e.Err)
	}
	return fmt.Sprintf("failed to encode tile %d: %v", e.Index, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEncode.
func (e *EncodeError) Is(target error) bool {
	return target == ErrEncode
}
