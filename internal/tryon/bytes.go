package tryon

import (
	"context"
	"fmt"

	"garment-warp-renderer/internal/output"
	"garment-warp-renderer/internal/texture"
)

// RenderBytes decodes person and garment from encoded payloads, renders
// them and returns the result encoded as f.
func (r *Renderer) RenderBytes(ctx context.Context, person, garment []byte, f output.Format) ([]byte, *Result, error) {
	p, err := texture.DecodeBytes(person)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNoPersonDetected, err)
	}
	g, err := texture.DecodeBytes(garment)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidGarment, err)
	}

	res, err := r.Render(ctx, p, g)
	if err != nil {
		return nil, nil, err
	}
	data, err := output.EncodeBytes(res.Image, f)
	if err != nil {
		return nil, res, err
	}
	return data, res, nil
}
