package pose

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"garment-warp-renderer/internal/logger"
)

// Provider produces a landmark set for a person image. It returns
// ErrNoLandmarks (possibly wrapped) when it cannot find a person.
type Provider interface {
	Detect(ctx context.Context, img image.Image) (Set, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, img image.Image) (Set, error)

func (f ProviderFunc) Detect(ctx context.Context, img image.Image) (Set, error) {
	return f(ctx, img)
}

// Timeout bounds the wait on another provider. The wrapped call keeps
// running in its goroutine after a timeout; its result is discarded.
type Timeout struct {
	Provider Provider
	Wait     time.Duration
}

type detectResult struct {
	set Set
	err error
}

func (t Timeout) Detect(ctx context.Context, img image.Image) (Set, error) {
	if t.Wait <= 0 {
		return t.Provider.Detect(ctx, img)
	}
	ctx, cancel := context.WithTimeout(ctx, t.Wait)
	defer cancel()

	done := make(chan detectResult, 1)
	go func() {
		set, err := t.Provider.Detect(ctx, img)
		done <- detectResult{set, err}
	}()

	select {
	case r := <-done:
		return r.set, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("pose: provider gave no answer within %s: %w", t.Wait, ctx.Err())
	}
}

// Chain asks each provider in turn and returns the first valid set.
// Provider failures are logged and replaced by the next provider; only
// cancellation of the caller's context stops the chain early. Ending a
// chain with an Estimator makes it always succeed for non-empty images.
type Chain struct {
	Providers []Provider
	Log       *logger.Logger
}

// WithFallback chains p in front of the deterministic Estimator.
func WithFallback(p Provider, log *logger.Logger) Chain {
	return Chain{Providers: []Provider{p, Estimator{}}, Log: log}
}

func (c Chain) Detect(ctx context.Context, img image.Image) (Set, error) {
	log := logger.OrNop(c.Log)
	var lastErr error
	for i, p := range c.Providers {
		set, err := p.Detect(ctx, img)
		if err == nil {
			err = set.Validate()
		}
		if err == nil {
			return set, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("landmark provider unavailable", "provider", i, "error", err)
		lastErr = err
	}
	if lastErr == nil {
		return nil, ErrNoLandmarks
	}
	if errors.Is(lastErr, ErrNoLandmarks) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %v", ErrNoLandmarks, lastErr)
}
