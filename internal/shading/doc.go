// Package shading renders the detail effects that make a warped garment
// read as worn: collar and hem shadows, stress wrinkles at the joints, and
// tapered sleeves.
//
// Shadow effects draw translucent black into a transparent effects layer
// with github.com/fogleman/gg. The caller masks that layer to the garment
// and multiply-blends it, so effects never leak outside the silhouette.
// Every effect takes the layer it draws into and returns it; an effect with
// unusable input returns the layer untouched and an error wrapping
// ErrInvalidGeometry.
package shading
