package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"

	DefaultQuality = 90
)

// ParseFormat maps a query value to a Format. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// encode writes img in the given format. quality is a 1-100 hint honoured
// by lossy formats only.
func encode(w io.Writer, img image.Image, f Format, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	var err error
	switch f {
	case FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		err = fmt.Errorf("unsupported format %q", string(f))
	}
	if err != nil {
		return &EncodingError{Format: f, Err: err}
	}
	return nil
}

// EncodeBytes is encode into a fresh buffer.
func EncodeBytes(img image.Image, f Format, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := encode(buf, img, f, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
