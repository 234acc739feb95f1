package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TermContext rasterizes frames into a terminal cell buffer styled with
// lipgloss. It is the production driver behind the bubbletea dashboard:
// the host calls Render from its update loop and View from its view
// function.
type TermContext struct {
	width, height int
	tracker       *Tracker
	released      bool

	cells  []termCell
	styles map[string]lipgloss.Style
}

type termCell struct {
	ch    rune
	color string // hex, empty = default
	depth float64
}

// NewTermContext creates a terminal rasterizer with the given cell
// dimensions.
func NewTermContext(width, height int) *TermContext {
	c := &TermContext{
		width:   width,
		height:  height,
		tracker: NewTracker(),
		styles:  make(map[string]lipgloss.Style),
	}
	c.clear()
	return c
}

func (c *TermContext) CreateGeometry(positions, colors []float32) *Geometry {
	c.tracker.trackGeometry()
	return &Geometry{Positions: positions, Colors: colors, tracker: c.tracker}
}

func (c *TermContext) CreateMaterial(color Color, opacity float64) *Material {
	c.tracker.trackMaterial()
	return &Material{Color: color, Opacity: opacity, tracker: c.tracker}
}

func (c *TermContext) CreateTexture(text string) *Texture {
	c.tracker.trackTexture()
	return &Texture{Text: text, Width: len([]rune(text)), Height: 1, tracker: c.tracker}
}

func (c *TermContext) Size() (int, int) {
	return c.width, c.height
}

func (c *TermContext) SetSize(width, height int) {
	c.width, c.height = width, height
	c.clear()
}

func (c *TermContext) Tracker() *Tracker {
	return c.tracker
}

func (c *TermContext) Release() error {
	c.released = true
	c.cells = nil
	return nil
}

func (c *TermContext) clear() {
	n := c.width * c.height
	if n < 0 {
		n = 0
	}
	c.cells = make([]termCell, n)
	for i := range c.cells {
		c.cells[i] = termCell{ch: ' ', depth: math.Inf(1)}
	}
}

// Render rasterizes the frame: lines first, then bodies far-to-near, then
// labels on top.
func (c *TermContext) Render(frame *Frame) {
	if c.released || c.width <= 0 || c.height <= 0 {
		return
	}
	c.clear()

	for _, l := range frame.Lines {
		c.drawLine(l)
	}

	points := make([]Point, len(frame.Points))
	copy(points, frame.Points)
	sort.Slice(points, func(i, j int) bool { return points[i].Depth > points[j].Depth })
	for _, p := range points {
		c.drawPoint(p)
	}

	for _, l := range frame.Labels {
		c.drawLabel(l)
	}
}

// View returns the current cell buffer as a styled multi-line string.
func (c *TermContext) View() string {
	if c.released || c.width <= 0 || c.height <= 0 {
		return ""
	}
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			cell := c.cells[y*c.width+x]
			if cell.color == "" || cell.ch == ' ' {
				b.WriteRune(cell.ch)
				continue
			}
			b.WriteString(c.style(cell.color).Render(string(cell.ch)))
		}
		if y < c.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *TermContext) style(hex string) lipgloss.Style {
	s, ok := c.styles[hex]
	if !ok {
		s = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
		c.styles[hex] = s
	}
	return s
}

func (c *TermContext) put(x, y int, ch rune, color Color, opacity, depth float64) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	cell := &c.cells[y*c.width+x]
	if depth > cell.depth {
		return
	}
	cell.ch = ch
	cell.color = hexColor(color, opacity)
	cell.depth = depth
}

func (c *TermContext) drawPoint(p Point) {
	cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
	r := int(math.Round(p.Radius))
	if r < 0 {
		r = 0
	}
	// Terminal cells are roughly twice as tall as wide.
	for dy := -r / 2; dy <= r/2; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+4*dy*dy > r*r {
				continue
			}
			ch := '●'
			if dx*dx+4*dy*dy == r*r {
				ch = '○'
			}
			c.put(cx+dx, cy+dy, ch, p.Color, p.Opacity, p.Depth)
		}
	}
	if r == 0 {
		c.put(cx, cy, '●', p.Color, p.Opacity, p.Depth)
	}
}

func (c *TermContext) drawLine(l Line) {
	x1, y1 := int(math.Round(l.X1)), int(math.Round(l.Y1))
	x2, y2 := int(math.Round(l.X2)), int(math.Round(l.Y2))
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	steps := dx - dy
	if steps == 0 {
		steps = 1
	}
	x, y, i := x1, y1, 0
	for {
		t := float64(i) / float64(steps)
		c.put(x, y, '·', l.C1.Lerp(l.C2, t), 1, l.Depth)
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
		i++
	}
}

func (c *TermContext) drawLabel(l Label) {
	if l.Texture == nil || l.Texture.Disposed() {
		return
	}
	runes := []rune(l.Texture.Text)
	startX := int(math.Round(l.X)) - len(runes)/2
	y := int(math.Round(l.Y))
	for i, ch := range runes {
		c.put(startX+i, y, ch, l.Color, l.Opacity, l.Depth)
	}
}

// hexColor converts a Color with opacity pre-multiplied into a lipgloss
// hex string. Terminals have no alpha, so opacity dims toward black.
func hexColor(col Color, opacity float64) string {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	to255 := func(v float64) int {
		v *= opacity
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return int(math.Round(v * 255))
	}
	return fmt.Sprintf("#%02X%02X%02X", to255(col.R), to255(col.G), to255(col.B))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
