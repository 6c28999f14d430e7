package draw

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Image rasterizes the canvas on a white background.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(c.Bounds())
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, s := range c.shapes {
		switch s.Kind {
		case Line:
			line(img, s.X, s.Y, s.X2, s.Y2, s.Color)
		case Rect:
			x2, y2 := s.X+s.W-1, s.Y+s.H-1
			line(img, s.X, s.Y, x2, s.Y, s.Color)
			line(img, x2, s.Y, x2, y2, s.Color)
			line(img, x2, y2, s.X, y2, s.Color)
			line(img, s.X, y2, s.X, s.Y, s.Color)
		case FillRect:
			r := image.Rect(s.X, s.Y, s.X+s.W, s.Y+s.H)
			draw.Draw(img, r, image.NewUniform(s.Color), image.Point{}, draw.Src)
		case Circle:
			circle(img, s.X, s.Y, s.R, s.Color, false)
		case FillCircle:
			circle(img, s.X, s.Y, s.R, s.Color, true)
		case Text:
			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(s.Color),
				Face: basicfont.Face7x13,
				Dot:  fixed.P(s.X, s.Y),
			}
			d.DrawString(s.Text)
		}
	}
	return img
}

// WritePNG writes the rasterized canvas as a PNG image.
func (c *Canvas) WritePNG(w io.Writer) error {
	return png.Encode(w, c.Image())
}

// line draws with Bresenham's algorithm. Points outside img are dropped.
func line(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx, sx := abs(x1-x0), 1
	if x0 > x1 {
		sx = -1
	}
	dy, sy := -abs(y1-y0), 1
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
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
}

// circle uses the midpoint algorithm, filling with horizontal spans.
func circle(img *image.RGBA, cx, cy, r int, col color.RGBA, fill bool) {
	if r < 0 {
		return
	}
	x, y, e := r, 0, 1-r
	for x >= y {
		if fill {
			line(img, cx-x, cy+y, cx+x, cy+y, col)
			line(img, cx-x, cy-y, cx+x, cy-y, col)
			line(img, cx-y, cy+x, cx+y, cy+x, col)
			line(img, cx-y, cy-x, cx+y, cy-x, col)
		} else {
			for _, p := range [...][2]int{
				{x, y}, {y, x}, {-y, x}, {-x, y},
				{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
			} {
				img.SetRGBA(cx+p[0], cy+p[1], col)
			}
		}
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
