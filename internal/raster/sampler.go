package raster

import "image"

// SampleBilinear filters tex at pixel-space coordinates (u, v), where pixel
// (i, j) covers [i, i+1)×[j, j+1). Coordinates outside the texture clamp to
// the edge. Interpolation runs on premultiplied values so transparent
// texels do not darken their neighbours.
func SampleBilinear(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	fx := clampF(u-0.5, 0, float64(w-1))
	fy := clampF(v-0.5, 0, float64(h-1))
	x0 := int(fx)
	y0 := int(fy)
	x1 := x0 + 1
	if x1 >= w {
		x1 = w - 1
	}
	y1 := y0 + 1
	if y1 >= h {
		y1 = h - 1
	}
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := tex.Stride
	pix := tex.Pix
	base := tex.PixOffset(tex.Rect.Min.X, tex.Rect.Min.Y)

	// Four texels
	i00 := base + y0*stride + x0*4
	i10 := base + y0*stride + x1*4
	i01 := base + y1*stride + x0*4
	i11 := base + y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy) * float64(pix[i00+3])
	w10 := dx * (1 - dy) * float64(pix[i10+3])
	w01 := (1 - dx) * dy * float64(pix[i01+3])
	w11 := dx * dy * float64(pix[i11+3])

	fa := w00 + w10 + w01 + w11
	if fa <= 0 {
		return 0, 0, 0, 0
	}
	inv := 1 / fa

	fr := (float64(pix[i00])*w00 + float64(pix[i10])*w10 + float64(pix[i01])*w01 + float64(pix[i11])*w11) * inv
	fg := (float64(pix[i00+1])*w00 + float64(pix[i10+1])*w10 + float64(pix[i01+1])*w01 + float64(pix[i11+1])*w11) * inv
	fb := (float64(pix[i00+2])*w00 + float64(pix[i10+2])*w10 + float64(pix[i01+2])*w01 + float64(pix[i11+2])*w11) * inv

	return clamp255(fr), clamp255(fg), clamp255(fb), clamp255(fa)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
