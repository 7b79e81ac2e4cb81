package placement

import "math"

// Inset limits keep the caption off the literal edge of the frame.
const (
	MinPercent = 5.0
	MaxPercent = 95.0
)

// Position is a caption anchor in percent of the container's width and height.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Default is where a fresh caption sits: centered, near the bottom.
var Default = Position{X: 50, Y: 85}

// Bounds is a box in the same coordinate space as the pointer events.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp pins v into [MinPercent, MaxPercent]. NaN pins to MinPercent.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < MinPercent {
		return MinPercent
	}
	if v > MaxPercent {
		return MaxPercent
	}
	return v
}

// Clamped returns p with both axes pinned to the inset region.
func (p Position) Clamped() Position {
	return Position{X: Clamp(p.X), Y: Clamp(p.Y)}
}

// Compute converts a pointer location into a clamped normalized position.
func Compute(pointerX, pointerY float64, b Bounds) Position {
	return Position{
		X: Clamp(percentOf(pointerX-b.Left, b.Width)),
		Y: Clamp(percentOf(pointerY-b.Top, b.Height)),
	}
}

func percentOf(offset, extent float64) float64 {
	if extent <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		return 50
	}
	return offset / extent * 100
}

// Preview maps p onto the on-screen image box and returns the absolute point.
func Preview(p Position, box Bounds) (x, y float64) {
	p = p.Clamped()
	return box.Left + p.X/100*box.Width, box.Top + p.Y/100*box.Height
}
