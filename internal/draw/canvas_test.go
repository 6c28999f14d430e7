package draw

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestSetColor(t *testing.T) {
	c := New(10, 10)
	if got := c.Color(); got != (color.RGBA{A: 0xff}) {
		t.Fatalf("initial colour = %v, want black", got)
	}
	if err := c.SetColor("Red"); err != nil {
		t.Fatalf("SetColor(Red): %v", err)
	}
	if got := c.Color(); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("colour = %v, want red", got)
	}
	if err := c.SetColor("no-such-colour"); err == nil {
		t.Error("SetColor accepted an unknown name")
	}
	c.SetRGB(-5, 300, 7)
	if got := c.Color(); got != (color.RGBA{R: 0, G: 0xff, B: 7, A: 0xff}) {
		t.Errorf("SetRGB clamped to %v", got)
	}
}

func TestRecord(t *testing.T) {
	c := New(50, 50)
	c.DrawLine(0, 0, 10, 10)
	c.SetColor("blue")
	c.FillRect(1, 2, 3, 4)
	c.DrawText(5, 20, "hi")
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	s := c.Shapes()
	if s[0].Kind != Line || s[0].X2 != 10 {
		t.Errorf("shape 0 = %+v", s[0])
	}
	if s[1].Kind != FillRect || s[1].Color != colorOf(t, "blue") {
		t.Errorf("shape 1 = %+v", s[1])
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	if c.Color() != colorOf(t, "blue") {
		t.Error("Clear reset the colour")
	}
	c.Init(20, 30)
	if w, h := c.Size(); w != 20 || h != 30 {
		t.Errorf("Size = %d x %d", w, h)
	}
}

func colorOf(t *testing.T, name string) color.RGBA {
	t.Helper()
	c := New(1, 1)
	if err := c.SetColor(name); err != nil {
		t.Fatal(err)
	}
	return c.Color()
}

func TestWriteSVG(t *testing.T) {
	c := New(100, 80)
	c.SetColor("red")
	c.DrawCircle(10, 10, 5)
	c.FillRect(0, 0, 4, 4)
	c.DrawText(3, 40, "score")
	var buf bytes.Buffer
	if err := c.WriteSVG(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`width="100"`,
		`height="80"`,
		`<circle cx="10" cy="10" r="5" style="fill:none;stroke:#ff0000"`,
		`<rect x="0" y="0" width="4" height="4" style="fill:#ff0000"`,
		">score</text>",
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG lacks %q:\n%s", want, out)
		}
	}
}

func TestImage(t *testing.T) {
	c := New(20, 20)
	c.SetRGB(0, 0, 255)
	c.FillRect(2, 2, 3, 3)
	c.SetRGB(255, 0, 0)
	c.DrawLine(0, 19, 19, 19)
	c.FillCircle(15, 5, 2)

	img := c.Image()
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{0xff, 0xff, 0xff, 0xff}},
		{3, 3, color.RGBA{0, 0, 0xff, 0xff}},
		{5, 5, color.RGBA{0xff, 0xff, 0xff, 0xff}},
		{10, 19, color.RGBA{0xff, 0, 0, 0xff}},
		{15, 5, color.RGBA{0xff, 0, 0, 0xff}},
		{15, 7, color.RGBA{0xff, 0, 0, 0xff}},
		{15, 9, color.RGBA{0xff, 0xff, 0xff, 0xff}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	c := New(30, 20)
	c.DrawText(1, 14, "A")
	var buf bytes.Buffer
	if err := c.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("bounds = %v", b)
	}
	dark := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("text left no pixels")
	}
}
