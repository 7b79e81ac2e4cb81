package imagepkg

import (
	"errors"
	"fmt"
)

// ErrNoImage is returned when a render is requested without a source image.
var ErrNoImage = errors.New("no image to render")

// EncodingError means the composed raster could not be turned into bytes.
type EncodingError struct {
	Format Format
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Format, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
