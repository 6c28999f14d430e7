// Package draw records the drawing commands a program issues through
// draw.h and renders them as SVG or PNG.
package draw

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/colornames"
)

// Default canvas size used until the program calls drawInit.
const (
	DefaultWidth  = 400
	DefaultHeight = 400
)

// Kind identifies a drawing command.
type Kind int

const (
	Line Kind = iota
	Rect
	FillRect
	Circle
	FillCircle
	Text
)

var kindNames = [...]string{
	Line:       "line",
	Rect:       "rect",
	FillRect:   "fillRect",
	Circle:     "circle",
	FillCircle: "fillCircle",
	Text:       "text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Shape is one recorded command. The meaning of the coordinates depends
// on Kind: a line runs from (X, Y) to (X2, Y2), rectangles span W by H
// from (X, Y), circles are centred at (X, Y) with radius R and text has
// its baseline origin at (X, Y).
type Shape struct {
	Kind   Kind
	X, Y   int
	X2, Y2 int
	W, H   int
	R      int
	Text   string
	Color  color.RGBA
}

// Canvas accumulates shapes in drawing order.
type Canvas struct {
	width, height int
	ink           color.RGBA
	shapes        []Shape
}

// New returns an empty canvas of the given size that draws in black.
func New(width, height int) *Canvas {
	c := &Canvas{}
	c.Init(width, height)
	return c
}

// Init resizes the canvas, discards every shape and resets the colour.
func (c *Canvas) Init(width, height int) {
	c.width, c.height = width, height
	c.ink = color.RGBA{A: 0xff}
	c.shapes = nil
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// Shapes returns the recorded shapes.
func (c *Canvas) Shapes() []Shape { return c.shapes }

// Len returns the number of recorded shapes.
func (c *Canvas) Len() int { return len(c.shapes) }

// Color returns the current drawing colour.
func (c *Canvas) Color() color.RGBA { return c.ink }

// SetColor selects a colour by its SVG name, such as "red" or
// "cornflowerblue".
func (c *Canvas) SetColor(name string) error {
	col, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown colour %q", name)
	}
	c.ink = col
	return nil
}

// SetRGB selects a colour by its components. Each is clamped to [0, 255].
func (c *Canvas) SetRGB(r, g, b int) {
	c.ink = color.RGBA{R: clamp(r), G: clamp(g), B: clamp(b), A: 0xff}
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 0xff:
		return 0xff
	}
	return uint8(v)
}

func (c *Canvas) add(s Shape) {
	s.Color = c.ink
	c.shapes = append(c.shapes, s)
}

// DrawLine records a line between two points.
func (c *Canvas) DrawLine(x1, y1, x2, y2 int) {
	c.add(Shape{Kind: Line, X: x1, Y: y1, X2: x2, Y2: y2})
}

// DrawRect records the outline of a rectangle.
func (c *Canvas) DrawRect(x, y, w, h int) {
	c.add(Shape{Kind: Rect, X: x, Y: y, W: w, H: h})
}

// FillRect records a filled rectangle.
func (c *Canvas) FillRect(x, y, w, h int) {
	c.add(Shape{Kind: FillRect, X: x, Y: y, W: w, H: h})
}

// DrawCircle records the outline of a circle.
func (c *Canvas) DrawCircle(x, y, r int) {
	c.add(Shape{Kind: Circle, X: x, Y: y, R: r})
}

// FillCircle records a filled circle.
func (c *Canvas) FillCircle(x, y, r int) {
	c.add(Shape{Kind: FillCircle, X: x, Y: y, R: r})
}

// DrawText records a string with its baseline at (x, y).
func (c *Canvas) DrawText(x, y int, s string) {
	c.add(Shape{Kind: Text, X: x, Y: y, Text: s})
}

// Clear discards the recorded shapes. Size and colour are kept.
func (c *Canvas) Clear() {
	c.shapes = nil
}

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

func hex(col color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", col.R, col.G, col.B)
}

// WriteSVG writes the canvas as an SVG document on a white background.
func (c *Canvas) WriteSVG(w io.Writer) error {
	ew := &errWriter{w: w}
	doc := svg.New(ew)
	doc.Start(c.width, c.height)
	doc.Title("learncs drawing")
	doc.Rect(0, 0, c.width, c.height, "fill:white")
	for _, s := range c.shapes {
		col := hex(s.Color)
		switch s.Kind {
		case Line:
			doc.Line(s.X, s.Y, s.X2, s.Y2, "stroke:"+col)
		case Rect:
			doc.Rect(s.X, s.Y, s.W, s.H, "fill:none;stroke:"+col)
		case FillRect:
			doc.Rect(s.X, s.Y, s.W, s.H, "fill:"+col)
		case Circle:
			doc.Circle(s.X, s.Y, s.R, "fill:none;stroke:"+col)
		case FillCircle:
			doc.Circle(s.X, s.Y, s.R, "fill:"+col)
		case Text:
			doc.Text(s.X, s.Y, s.Text, "fill:"+col+";font-family:monospace;font-size:13px")
		}
	}
	doc.End()
	return ew.err
}

// errWriter remembers the first write error so the SVG writer, which
// ignores errors, can be checked once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
