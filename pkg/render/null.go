package render

// NullContext is a Context that draws nothing and records the last frame
// it was asked to render. Used by tests and headless hosting.
type NullContext struct {
	width, height int
	tracker       *Tracker
	released      bool

	LastFrame   *Frame
	FrameCount  int
	RenderCalls []int // vertex-ish summary per call: len(Points) of each frame
}

// NewNullContext creates a recording context with the given drawable size.
func NewNullContext(width, height int) *NullContext {
	return &NullContext{
		width:   width,
		height:  height,
		tracker: NewTracker(),
	}
}

func (c *NullContext) CreateGeometry(positions, colors []float32) *Geometry {
	c.tracker.trackGeometry()
	return &Geometry{Positions: positions, Colors: colors, tracker: c.tracker}
}

func (c *NullContext) CreateMaterial(color Color, opacity float64) *Material {
	c.tracker.trackMaterial()
	return &Material{Color: color, Opacity: opacity, tracker: c.tracker}
}

func (c *NullContext) CreateTexture(text string) *Texture {
	c.tracker.trackTexture()
	return &Texture{Text: text, Width: len([]rune(text)), Height: 1, tracker: c.tracker}
}

func (c *NullContext) Size() (int, int) {
	return c.width, c.height
}

func (c *NullContext) SetSize(width, height int) {
	c.width, c.height = width, height
}

func (c *NullContext) Render(frame *Frame) {
	c.LastFrame = frame
	c.FrameCount++
	c.RenderCalls = append(c.RenderCalls, len(frame.Points))
}

func (c *NullContext) Tracker() *Tracker {
	return c.tracker
}

func (c *NullContext) Release() error {
	c.released = true
	return nil
}

// Released reports whether Release has been called.
func (c *NullContext) Released() bool {
	return c.released
}
