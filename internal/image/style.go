package imagepkg

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	MinFontSize     = 16
	MaxFontSize     = 72
	DefaultFontSize = 36
)

// Color is an opaque RGB color that travels as "#RRGGBB" in JSON.
type Color struct {
	color.NRGBA
}

// ErrInvalidColor wraps every colour parse failure.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor accepts "#RRGGBB" or "#RGB"; the leading '#' is optional.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return Color{}, fmt.Errorf("%w %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return Color{color.NRGBA{R: r, G: g, B: b, A: 0xff}}, nil
}

func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Palette holds the swatches offered by the editor.
var Palette = []Color{
	MustParseColor("#FFFFFF"),
	MustParseColor("#FFD93D"),
	MustParseColor("#FF6B35"),
	MustParseColor("#9B5DE5"),
	MustParseColor("#00D4FF"),
	MustParseColor("#F15BB5"),
	MustParseColor("#00BB2D"),
	MustParseColor("#FF0000"),
	MustParseColor("#000000"),
}

// CaptionStyle is how the caption is painted.
type CaptionStyle struct {
	FontSizePx int   `json:"font_size_px"`
	Fill       Color `json:"fill_color"`
	Stroke     Color `json:"stroke_color"`
}

func DefaultStyle() CaptionStyle {
	return CaptionStyle{
		FontSizePx: DefaultFontSize,
		Fill:       MustParseColor("#FFFFFF"),
		Stroke:     MustParseColor("#000000"),
	}
}

// Validate reports the first field outside its declared range.
func (s CaptionStyle) Validate() error {
	if s.FontSizePx < MinFontSize || s.FontSizePx > MaxFontSize {
		return fmt.Errorf("font size %d outside [%d, %d]", s.FontSizePx, MinFontSize, MaxFontSize)
	}
	return nil
}
