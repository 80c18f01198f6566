package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"garment-warp-renderer/internal/logger"
	"garment-warp-renderer/internal/output"
	"garment-warp-renderer/internal/pose"
	"garment-warp-renderer/internal/texture"
	"garment-warp-renderer/internal/tryon"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir       string
	Format          output.Format
	Options         tryon.Options
	ProviderTimeout time.Duration
	MinVisibility   float64
	Workers         int
	Log             *logger.Logger
}

// Result holds the outcome of rendering one job.
type Result struct {
	ID         uuid.UUID `json:"id"`
	Person     string    `json:"person"`
	Garment    string    `json:"garment"`
	Output     string    `json:"output,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Skipped    []int     `json:"skipped_triangles,omitempty"`
	RenderedAt time.Time `json:"rendered_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Run renders every job with at most cfg.Workers in flight. Failed jobs are
// reported in their Result; they do not stop the others. Cancelling ctx
// stops jobs that have not started yet.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	log := logger.OrNop(cfg.Log)
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("batch progress", "done", p, "total", total, "per_sec", fmt.Sprintf("%.1f", rate))
				}
			}
		}
	}()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range jobs {
		g.Go(func() error {
			results[i] = processJob(gctx, cfg, log, jobs[i])
			processed.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	close(done)

	return results
}

func processJob(ctx context.Context, cfg Config, log *logger.Logger, job Job) Result {
	res := Result{
		ID:         uuid.New(),
		Person:     job.Person,
		Garment:    job.Garment,
		RenderedAt: time.Now().UTC(),
	}
	start := time.Now()
	fail := func(err error) Result {
		res.Error = err.Error()
		res.DurationMS = time.Since(start).Milliseconds()
		log.Warn("job failed", "id", res.ID, "person", job.Person, "error", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	person, err := texture.Load(job.Person)
	if err != nil {
		return fail(err)
	}
	garment, err := texture.Load(job.Garment)
	if err != nil {
		return fail(err)
	}

	var provider pose.Provider
	if job.Landmarks != "" {
		provider = pose.Timeout{
			Provider: pose.FileProvider{Path: job.Landmarks, MinVisibility: cfg.MinVisibility},
			Wait:     cfg.ProviderTimeout,
		}
	}
	r := tryon.NewRenderer(provider, cfg.Options, log.With("id", res.ID))

	out, err := r.Render(ctx, person, garment)
	if err != nil {
		return fail(err)
	}

	res.Output = job.Output
	if res.Output == "" {
		res.Output = DefaultOutput(cfg.OutputDir, job, cfg.Format)
	}
	if err := output.Save(res.Output, out.Image, cfg.Format); err != nil {
		return fail(err)
	}

	res.Success = true
	res.Skipped = out.Skipped
	res.DurationMS = time.Since(start).Milliseconds()
	return res
}

// DefaultOutput names the render of job inside dir as <person>_<garment>.<ext>.
func DefaultOutput(dir string, job Job, f output.Format) string {
	stem := func(p string) string {
		return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	}
	return filepath.Join(dir, stem(job.Person)+"_"+stem(job.Garment)+f.Ext())
}
