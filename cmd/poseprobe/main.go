// Command poseprobe prints the landmarks, body geometry and destination
// mesh the renderer would use for a person photo, as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"os"

	"garment-warp-renderer/internal/logger"
	"garment-warp-renderer/internal/mesh"
	"garment-warp-renderer/internal/pose"
	"garment-warp-renderer/internal/texture"
)

type report struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Landmarks pose.Points      `json:"landmarks"`
	Geometry  pose.Geometry    `json:"geometry"`
	Mesh      mesh.ControlMesh `json:"mesh"`
}

type inspectOptions struct {
	Smooth bool
	Mirror bool
}

func main() {
	os.Exit(run())
}

func run() int {
	imagePath := flag.String("image", "", "Person photo")
	landmarks := flag.String("landmarks", "", "MediaPipe landmark JSON (default: estimate from image size)")
	minVis := flag.Float64("min-visibility", 0.5, "Drop MediaPipe landmarks below this visibility")
	noSmooth := flag.Bool("no-smooth", false, "Disable landmark smoothing")
	noMirror := flag.Bool("no-mirror", false, "Map garment left to the person's image-left side")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: poseprobe -image photo.jpg [-landmarks pose.json]")
		return 2
	}

	log, err := logger.New("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	img, err := texture.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var provider pose.Provider = pose.Estimator{}
	if *landmarks != "" {
		provider = pose.WithFallback(pose.FileProvider{Path: *landmarks, MinVisibility: *minVis}, log)
	}

	rep, err := inspect(context.Background(), provider, img, inspectOptions{Smooth: !*noSmooth, Mirror: !*noMirror})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := writeReport(os.Stdout, rep); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// inspect runs the landmark half of the render pipeline on img.
func inspect(ctx context.Context, provider pose.Provider, img image.Image, opts inspectOptions) (report, error) {
	set, err := provider.Detect(ctx, img)
	if err != nil {
		return report{}, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	pts := set.Pixels(w, h)
	if opts.Smooth {
		pts = pose.Smooth(pts)
	}
	geo, err := pose.Process(pts)
	if err != nil {
		return report{}, err
	}
	dst, err := mesh.Destination(pts, geo, mesh.Options{MirrorGarment: opts.Mirror})
	if err != nil {
		return report{}, err
	}
	return report{Width: w, Height: h, Landmarks: pts, Geometry: geo, Mesh: dst}, nil
}

func writeReport(w io.Writer, rep report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
