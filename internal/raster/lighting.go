package raster

// ShadeConfig controls the luminance map lifted from the person image.
type ShadeConfig struct {
	Pivot    float64 // contrast pivot
	Contrast float64 // scale around Pivot
	Lift     float64 // ambient lift added after contrast
}

// DefaultShadeConfig boosts contrast around mid-grey so existing folds and
// contours read through the garment without inventing new structure.
func DefaultShadeConfig() ShadeConfig {
	return ShadeConfig{
		Pivot:    128,
		Contrast: 1.3,
		Lift:     20,
	}
}

// Luminance returns 0.3R + 0.59G + 0.11B.
func Luminance(r, g, b uint8) float64 {
	return float64(r)*0.3 + float64(g)*0.59 + float64(b)*0.11
}

// Shade maps one luminance value through the contrast curve.
func (sc ShadeConfig) Shade(l float64) uint8 {
	return clamp255((l-sc.Pivot)*sc.Contrast + sc.Pivot + sc.Lift)
}

// ShadingMap returns an opaque grey surface holding the contrast-boosted
// luminance of person.
func ShadingMap(person *Surface, sc ShadeConfig) *Surface {
	out := NewSurface(person.Width, person.Height)

	for i := 0; i < len(person.Pix); i += 4 {
		v := sc.Shade(Luminance(person.Pix[i], person.Pix[i+1], person.Pix[i+2]))
		out.Pix[i] = v
		out.Pix[i+1] = v
		out.Pix[i+2] = v
		out.Pix[i+3] = 255
	}
	return out
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
