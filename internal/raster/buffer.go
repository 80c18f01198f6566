package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Surface is a non-premultiplied RGBA raster. Every stage of a render takes
// the surfaces it needs and returns the one it produced; nothing is shared
// between renders.
type Surface struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = W*H*4
}

// NewSurface allocates a fully transparent w×h surface.
func NewSurface(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*4),
	}
}

// FromImage copies any image into a new surface whose origin is the
// image's Bounds().Min.
func FromImage(img image.Image) *Surface {
	b := img.Bounds()
	s := NewSurface(b.Dx(), b.Dy())
	if n, ok := img.(*image.NRGBA); ok {
		for y := 0; y < s.Height; y++ {
			src := n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(s.Pix[y*s.Width*4:(y+1)*s.Width*4], src[:s.Width*4])
		}
		return s
	}
	draw.Draw(s.Image(), s.Bounds(), img, b.Min, draw.Src)
	return s
}

// Image returns an *image.NRGBA view sharing the surface's pixels.
func (s *Surface) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    s.Pix,
		Stride: s.Width * 4,
		Rect:   image.Rect(0, 0, s.Width, s.Height),
	}
}

func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	c := &Surface{Width: s.Width, Height: s.Height, Pix: make([]uint8, len(s.Pix))}
	copy(c.Pix, s.Pix)
	return c
}

// Offset returns the index of pixel (x, y) in Pix.
func (s *Surface) Offset(x, y int) int {
	return (y*s.Width + x) * 4
}

// At returns the RGBA components of pixel (x, y).
func (s *Surface) At(x, y int) (r, g, b, a uint8) {
	i := s.Offset(x, y)
	return s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3]
}

// SameSize reports whether o has the same dimensions as s.
func (s *Surface) SameSize(o *Surface) bool {
	return s.Width == o.Width && s.Height == o.Height
}
