package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RasterSurface draws into an RGBA image, one layout unit per pixel.
type RasterSurface struct {
	img  *image.RGBA
	face font.Face
}

func NewRasterSurface(width, height int) *RasterSurface {
	s := &RasterSurface{
		img:  image.NewRGBA(image.Rect(0, 0, max(0, width), max(0, height))),
		face: basicfont.Face7x13,
	}
	s.Clear()
	return s
}

func (s *RasterSurface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(ColorCanvas), image.Point{}, draw.Src)
}

func (s *RasterSurface) FillCircle(x, y, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	bounds := s.img.Bounds()
	x0 := max(bounds.Min.X, int(math.Floor(x-r)))
	x1 := min(bounds.Max.X-1, int(math.Ceil(x+r)))
	y0 := max(bounds.Min.Y, int(math.Floor(y-r)))
	y1 := min(bounds.Max.Y-1, int(math.Ceil(y+r)))
	r2 := r * r
	for py := y0; py <= y1; py++ {
		dy := float64(py) + 0.5 - y
		for px := x0; px <= x1; px++ {
			dx := float64(px) + 0.5 - x
			if dx*dx+dy*dy <= r2 {
				s.img.Set(px, py, c)
			}
		}
	}
}

func (s *RasterSurface) DrawText(x, y float64, text string, c color.Color) {
	if text == "" {
		return
	}
	metrics := s.face.Metrics()
	width := font.MeasureString(s.face, text)
	baseline := fixed.Int26_6(math.Round(y*64)) + (metrics.Ascent-metrics.Descent)/2
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(math.Round(x*64)) - width/2, Y: baseline},
	}
	d.DrawString(text)
}

func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}

// Pixels exposes the raw RGBA bytes of the surface.
func (s *RasterSurface) Pixels() []byte {
	return s.img.Pix
}

func (s *RasterSurface) WritePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}
