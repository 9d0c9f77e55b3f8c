// Package canvas is the terminal drawing surface. Strokes are drawn with the
// mouse into a small bitmap, rendered with braille cells (2x4 dots per
// cell), and scaled up on capture.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const (
	DefaultCols = 60
	DefaultRows = 18

	// Dots per terminal cell.
	CellW = 2
	CellH = 4

	// CaptureScale enlarges the bitmap for the classifier.
	CaptureScale = 4

	MinStrokeWidth = 1
	MaxStrokeWidth = 8
)

var (
	paper = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// Palette is cycled with the "c" key.
	Palette = []color.RGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 220, G: 38, B: 38, A: 255},
		{R: 37, G: 99, B: 235, A: 255},
		{R: 22, G: 163, B: 74, A: 255},
		{R: 234, G: 88, B: 12, A: 255},
		{R: 124, G: 58, B: 237, A: 255},
	}

	paperStyle = lipgloss.NewStyle().Background(lipgloss.Color("#F8FAFC"))
)

// Canvas is a mouse-driven bitmap. It is used from the bubbletea update
// loop only.
type Canvas struct {
	cols, rows int
	img        *image.RGBA

	stroke  color.RGBA
	width   int
	palette int
	eraser  bool

	// Screen position of the top-left cell, set by the owning view.
	originX, originY int

	drawing bool
	lastX   int
	lastY   int
	strokes int
}

// New creates a blank canvas of cols x rows terminal cells.
func New(cols, rows int) *Canvas {
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	c := &Canvas{
		cols:   cols,
		rows:   rows,
		img:    image.NewRGBA(image.Rect(0, 0, cols*CellW, rows*CellH)),
		stroke: Palette[0],
		width:  2,
	}
	c.Clear()
	return c
}

func (c *Canvas) Cols() int        { return c.cols }
func (c *Canvas) Rows() int        { return c.rows }
func (c *Canvas) StrokeWidth() int { return c.width }
func (c *Canvas) Eraser() bool     { return c.eraser }
func (c *Canvas) Empty() bool      { return c.strokes == 0 }

// StrokeColor returns the active drawing color.
func (c *Canvas) StrokeColor() color.RGBA { return c.stroke }

// Bounds is the bitmap size before scaling.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// SetOrigin records where the canvas is drawn on screen so mouse events can
// be translated into cell coordinates.
func (c *Canvas) SetOrigin(x, y int) {
	c.originX, c.originY = x, y
}

// Clear wipes the bitmap and ends any stroke in progress.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: paper}, image.Point{}, draw.Src)
	c.drawing = false
	c.strokes = 0
}

// SetStrokeColor changes the drawing color and leaves eraser mode.
func (c *Canvas) SetStrokeColor(col color.Color) {
	r, g, b, a := col.RGBA()
	c.stroke = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	c.eraser = false
}

// SetStrokeWidth sets the brush size in dots, clamped to the allowed range.
func (c *Canvas) SetStrokeWidth(w int) {
	c.width = max(MinStrokeWidth, min(MaxStrokeWidth, w))
}

// Capture returns a scaled copy of the bitmap. A blank canvas is captured
// as-is; the classifier decides what it looks like.
func (c *Canvas) Capture() (image.Image, error) {
	src := c.img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, src.Dx()*CaptureScale, src.Dy()*CaptureScale))
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			out.SetRGBA(x, y, c.img.RGBAAt(x/CaptureScale, y/CaptureScale))
		}
	}
	return out, nil
}

// Update handles mouse strokes and the brush keys.
func (c *Canvas) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		m := msg.Mouse()
		if m.Button != tea.MouseLeft {
			return nil
		}
		x, y, ok := c.toDots(m.X, m.Y)
		if !ok {
			return nil
		}
		c.drawing = true
		c.lastX, c.lastY = x, y
		c.line(x, y, x, y)

	case tea.MouseMotionMsg:
		if !c.drawing {
			return nil
		}
		m := msg.Mouse()
		x, y, ok := c.toDots(m.X, m.Y)
		if !ok {
			return nil
		}
		c.line(c.lastX, c.lastY, x, y)
		c.lastX, c.lastY = x, y

	case tea.MouseReleaseMsg:
		c.drawing = false

	case tea.KeyPressMsg:
		switch msg.String() {
		case "[":
			c.SetStrokeWidth(c.width - 1)
		case "]":
			c.SetStrokeWidth(c.width + 1)
		case "c":
			c.palette = (c.palette + 1) % len(Palette)
			c.SetStrokeColor(Palette[c.palette])
		case "e":
			c.eraser = !c.eraser
		case "x":
			c.Clear()
		}
	}
	return nil
}

// DrawLine strokes a segment between two dot coordinates.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.line(x0, y0, x1, y1)
}

// toDots maps a terminal cell to the dot at the centre of that cell.
func (c *Canvas) toDots(sx, sy int) (int, int, bool) {
	cx, cy := sx-c.originX, sy-c.originY
	if cx < 0 || cy < 0 || cx >= c.cols || cy >= c.rows {
		return 0, 0, false
	}
	return cx*CellW + CellW/2, cy*CellH + CellH/2, true
}

// line is Bresenham with a square brush stamped at each step.
func (c *Canvas) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.stamp(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
	if !c.eraser {
		c.strokes++
	}
}

func (c *Canvas) stamp(x, y int) {
	col := c.stroke
	if c.eraser {
		col = paper
	}
	half := (c.width - 1) / 2
	b := c.img.Bounds()
	for py := y - half; py < y-half+c.width; py++ {
		for px := x - half; px < x-half+c.width; px++ {
			if image.Pt(px, py).In(b) {
				c.img.SetRGBA(px, py, col)
			}
		}
	}
}

// braille dot bits indexed by [y][x] within a cell.
var brailleBits = [CellH][CellW]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// View renders the bitmap as rows of braille cells on a paper background.
// Runs of cells with the same ink colour share one style.
func (c *Canvas) View() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		var run strings.Builder
		var runInk color.RGBA
		flush := func() {
			if run.Len() == 0 {
				return
			}
			sb.WriteString(paperStyle.Foreground(runInk).Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			ch, ink := c.cell(col, row)
			if ink != runInk && ch != 0x2800 {
				flush()
				runInk = ink
			}
			run.WriteRune(ch)
		}
		flush()
		if row < c.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (c *Canvas) cell(col, row int) (rune, color.RGBA) {
	ch := rune(0x2800)
	var ink color.RGBA
	for dy := 0; dy < CellH; dy++ {
		for dx := 0; dx < CellW; dx++ {
			px := c.img.RGBAAt(col*CellW+dx, row*CellH+dy)
			if px == paper {
				continue
			}
			if ch == 0x2800 {
				ink = px
			}
			ch |= brailleBits[dy][dx]
		}
	}
	return ch, ink
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
