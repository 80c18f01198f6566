package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"garment-warp-renderer/internal/batch"
	"garment-warp-renderer/internal/config"
	"garment-warp-renderer/internal/logger"
	"garment-warp-renderer/internal/output"
	"garment-warp-renderer/internal/pose"
	"garment-warp-renderer/internal/texture"
	"garment-warp-renderer/internal/tryon"
)

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json or .yaml)")
	personPath := flag.String("person", "", "Person photo")
	garmentPath := flag.String("garment", "", "Flat garment image")
	outPath := flag.String("out", "", "Output file for a single render (default: <output>/<person>_<garment>.<format>)")
	jobsPath := flag.String("jobs", "", "JSON job list for batch rendering")
	landmarks := flag.String("landmarks", "", "MediaPipe landmark JSON for the person")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	format := flag.String("format", "", "Output format: webp or png (default: webp)")
	workers := flag.Int("workers", 0, "Number of concurrent renders (default: NumCPU)")
	seed := flag.Int64("seed", 0, "Wrinkle placement seed (default: 1)")
	supersample := flag.Int("supersample", 0, "Warp at N× resolution (default: 1)")
	noSmooth := flag.Bool("no-smooth", false, "Disable landmark smoothing")
	noMirror := flag.Bool("no-mirror", false, "Map garment left to the person's image-left side")
	logMode := flag.String("log", "", "Log mode: dev or prod")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return 1
		}
	}

	// CLI flags override config file
	if err := cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		Landmarks:   *landmarks,
		Format:      *format,
		Workers:     *workers,
		Seed:        *seed,
		Supersample: *supersample,
		NoSmooth:    *noSmooth,
		NoMirror:    *noMirror,
		LogMode:     *logMode,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout, _ := cfg.Timeout()
	batchCfg := batch.Config{
		OutputDir:       cfg.OutputDir,
		Format:          cfg.OutputFormat(),
		Options:         cfg.RenderOptions(),
		ProviderTimeout: timeout,
		MinVisibility:   cfg.MinVisibility,
		Workers:         cfg.Workers,
		Log:             log,
	}

	switch {
	case *jobsPath != "":
		return runBatch(ctx, log, batchCfg, *jobsPath)
	case *personPath != "" && *garmentPath != "":
		return runSingle(ctx, log, batchCfg, cfg.Landmarks, batch.Job{
			Person:  *personPath,
			Garment: *garmentPath,
			Output:  *outPath,
		})
	default:
		fmt.Fprintln(os.Stderr, "Usage: tryon -person photo.jpg -garment shirt.png [-out result.webp]")
		fmt.Fprintln(os.Stderr, "       tryon -jobs jobs.json [-output dir]")
		flag.PrintDefaults()
		return 2
	}
}

func runSingle(ctx context.Context, log *logger.Logger, cfg batch.Config, landmarks string, job batch.Job) int {
	person, err := texture.Load(job.Person)
	if err != nil {
		log.Error("load person", "error", err)
		return 1
	}
	garment, err := texture.Load(job.Garment)
	if err != nil {
		log.Error("load garment", "error", err)
		return 1
	}

	var provider pose.Provider
	if landmarks != "" {
		provider = pose.Timeout{
			Provider: pose.FileProvider{Path: landmarks, MinVisibility: cfg.MinVisibility},
			Wait:     cfg.ProviderTimeout,
		}
	}

	start := time.Now()
	res, err := tryon.NewRenderer(provider, cfg.Options, log).Render(ctx, person, garment)
	if err != nil {
		log.Error("render failed", "error", err)
		return 1
	}

	out := job.Output
	if out == "" {
		out = batch.DefaultOutput(cfg.OutputDir, job, cfg.Format)
	}
	if err := output.Save(out, res.Image, cfg.Format); err != nil {
		log.Error("save failed", "path", out, "error", err)
		return 1
	}
	log.Info("rendered", "output", out, "elapsed", time.Since(start), "skipped_triangles", len(res.Skipped))
	return 0
}

func runBatch(ctx context.Context, log *logger.Logger, cfg batch.Config, jobsPath string) int {
	jobs, err := batch.LoadJobs(jobsPath)
	if err != nil {
		log.Error("load jobs", "error", err)
		return 1
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs to render.")
		return 0
	}

	log.Info("batch start", "jobs", len(jobs), "workers", cfg.Workers, "output", cfg.OutputDir, "format", cfg.Format)
	start := time.Now()

	results := batch.Run(ctx, cfg, jobs)

	// Count results
	success, failed := 0, 0
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
		}
	}
	log.Info("batch done", "rendered", success, "failed", failed, "elapsed", time.Since(start))

	// Write results history
	resultsPath := filepath.Join(cfg.OutputDir, "results.json")
	if err := batch.WriteResults(resultsPath, results); err != nil {
		log.Warn("results write failed", "path", resultsPath, "error", err)
	} else {
		log.Info("results written", "path", resultsPath)
	}

	if failed > 0 {
		return 1
	}
	return 0
}
