package raster

import "image"

// Compositing operators on non-premultiplied surfaces. Each returns dst
// after modifying it in place, except MaskTo which allocates its result.
// Surfaces passed together must have the same size; mismatched inputs
// leave dst untouched.

// Over draws src on top of dst with normal source-over blending.
func Over(dst, src *Surface) *Surface {
	if !dst.SameSize(src) {
		return dst
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		sa := src.Pix[i+3]
		if sa == 0 {
			continue
		}
		if sa == 255 {
			copy(dst.Pix[i:i+4], src.Pix[i:i+4])
			continue
		}
		overPixel(dst.Pix[i:i+4], float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2]), float64(sa)/255)
	}
	return dst
}

// OverAt draws a premultiplied patch (as produced by vector drawing
// libraries) on top of dst with its top-left corner at `at`. Parts of the
// patch outside dst are clipped.
func OverAt(dst *Surface, patch *image.RGBA, at image.Point) *Surface {
	pb := patch.Bounds()
	for py := pb.Min.Y; py < pb.Max.Y; py++ {
		y := at.Y + py - pb.Min.Y
		if y < 0 || y >= dst.Height {
			continue
		}
		for px := pb.Min.X; px < pb.Max.X; px++ {
			x := at.X + px - pb.Min.X
			if x < 0 || x >= dst.Width {
				continue
			}
			si := patch.PixOffset(px, py)
			pa := patch.Pix[si+3]
			if pa == 0 {
				continue
			}
			a := float64(pa) / 255
			// Unpremultiply
			r := float64(patch.Pix[si]) / a
			g := float64(patch.Pix[si+1]) / a
			b := float64(patch.Pix[si+2]) / a
			overPixel(dst.Pix[dst.Offset(x, y):], r, g, b, a)
		}
	}
	return dst
}

// overPixel blends colour (r, g, b) at coverage sa in [0,1] over d[0:4].
func overPixel(d []uint8, r, g, b, sa float64) {
	da := float64(d[3]) / 255
	outA := sa + da*(1-sa)
	if outA <= 0 {
		d[0], d[1], d[2], d[3] = 0, 0, 0, 0
		return
	}
	k := da * (1 - sa)
	d[0] = clamp255((r*sa + float64(d[0])*k) / outA)
	d[1] = clamp255((g*sa + float64(d[1])*k) / outA)
	d[2] = clamp255((b*sa + float64(d[2])*k) / outA)
	d[3] = clamp255(outA * 255)
}

// MaskTo returns a copy of src whose alpha is multiplied by mask's alpha
// (source-in). Colour is kept, so the result only covers pixels mask covers.
func MaskTo(src, mask *Surface) *Surface {
	out := NewSurface(src.Width, src.Height)
	if !src.SameSize(mask) {
		return out
	}
	for i := 0; i < len(src.Pix); i += 4 {
		ma := mask.Pix[i+3]
		if ma == 0 {
			continue
		}
		out.Pix[i] = src.Pix[i]
		out.Pix[i+1] = src.Pix[i+1]
		out.Pix[i+2] = src.Pix[i+2]
		out.Pix[i+3] = uint8((int(src.Pix[i+3])*int(ma) + 127) / 255)
	}
	return out
}

// Multiply blends src onto dst with the separable multiply mode:
//
//	B(Cb, Cs) = Cb × Cs
//	Co = (1-αb)·αs·Cs + αs·αb·B + (1-αs)·αb·Cb,  αo = αs + αb(1-αs)
//
// Multiply never brightens an opaque backdrop.
func Multiply(dst, src *Surface) *Surface {
	if !dst.SameSize(src) {
		return dst
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		sa8 := src.Pix[i+3]
		if sa8 == 0 {
			continue
		}
		sa := float64(sa8) / 255
		da := float64(dst.Pix[i+3]) / 255
		outA := sa + da*(1-sa)
		for c := 0; c < 3; c++ {
			cs := float64(src.Pix[i+c]) / 255
			cb := float64(dst.Pix[i+c]) / 255
			co := (1-da)*sa*cs + sa*da*cb*cs + (1-sa)*da*cb
			dst.Pix[i+c] = clamp255(co / outA * 255)
		}
		dst.Pix[i+3] = clamp255(outA * 255)
	}
	return dst
}
