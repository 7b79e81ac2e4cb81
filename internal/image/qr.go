package imagepkg

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	MinQRSize     = 64
	MaxQRSize     = 1024
	DefaultQRSize = 256
)

// GenerateQRPNG returns PNG bytes of a QR code for text, size pixels square.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if text == "" {
		return nil, errors.New("qr: empty text")
	}
	size = min(max(size, MinQRSize), MaxQRSize)
	b, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, &EncodingError{Format: FormatPNG, Err: err}
	}
	return b, nil
}
