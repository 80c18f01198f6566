package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample resizes s to w×h with CatmullRom filtering on premultiplied
// alpha, which avoids dark halos along transparent edges. Used to resolve
// a supersampled warp layer.
func Downsample(s *Surface, w, h int) *Surface {
	if s.Width == w && s.Height == h {
		return s
	}

	// Scaling an NRGBA source into an RGBA destination premultiplies.
	premul := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(premul, premul.Bounds(), s.Image(), s.Bounds(), draw.Src, nil)

	return unpremultiply(premul)
}

// unpremultiply converts a premultiplied image with origin (0, 0) into a
// surface. Fully transparent pixels come out as transparent black.
func unpremultiply(premul *image.RGBA) *Surface {
	b := premul.Bounds()
	out := NewSurface(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		src := premul.Pix[premul.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Width*4 : (y+1)*out.Width*4]
		for i := 0; i < len(dst); i += 4 {
			a := src[i+3]
			if a > 0 {
				inv := 255.0 / float64(a)
				dst[i] = clamp255(float64(src[i]) * inv)
				dst[i+1] = clamp255(float64(src[i+1]) * inv)
				dst[i+2] = clamp255(float64(src[i+2]) * inv)
			}
			dst[i+3] = a
		}
	}
	return out
}
