package placement

// Controller tracks the caption position across a drag gesture.
// It is not safe for concurrent use; callers serialise access per session.
type Controller struct {
	pos      Position
	dragging bool
}

func NewController() *Controller {
	return &Controller{pos: Default}
}

func (c *Controller) Position() Position { return c.pos }

func (c *Controller) Dragging() bool { return c.dragging }

// Begin starts a drag on pointer-down over the caption or its container.
func (c *Controller) Begin() {
	c.dragging = true
}

// Move applies a pointer-move. Outside a drag it is a no-op and reports false.
func (c *Controller) Move(pointerX, pointerY float64, b Bounds) (Position, bool) {
	if !c.dragging {
		return c.pos, false
	}
	c.pos = Compute(pointerX, pointerY, b)
	return c.pos, true
}

// End stops the drag on pointer-up or pointer-leave. The last position stays.
func (c *Controller) End() {
	c.dragging = false
}

// Set places the caption directly.
func (c *Controller) Set(p Position) Position {
	c.pos = p.Clamped()
	return c.pos
}

// Reset returns to the default position and drops any active drag.
func (c *Controller) Reset() {
	c.pos = Default
	c.dragging = false
}
