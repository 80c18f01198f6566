package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"garment-warp-renderer/internal/output"
	"garment-warp-renderer/internal/tryon"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	OutputDir string `json:"output_dir" yaml:"output_dir"`
	Landmarks string `json:"landmarks" yaml:"landmarks"` // MediaPipe JSON used instead of detection

	// Render settings
	Smooth        *bool   `json:"smooth" yaml:"smooth"`
	MirrorGarment *bool   `json:"mirror_garment" yaml:"mirror_garment"`
	Sleeves       *bool   `json:"sleeves" yaml:"sleeves"`
	Details       *bool   `json:"details" yaml:"details"`
	Stiffness     float64 `json:"stiffness" yaml:"stiffness"` // 0 selects the default
	TaperRatio    float64 `json:"taper_ratio" yaml:"taper_ratio"`
	Seed          int64   `json:"seed" yaml:"seed"`
	Supersample   int     `json:"supersample" yaml:"supersample"`
	Format        string  `json:"format" yaml:"format"`

	// Landmark provider
	ProviderTimeout string  `json:"provider_timeout" yaml:"provider_timeout"`
	MinVisibility   float64 `json:"min_visibility" yaml:"min_visibility"`

	// Process
	Workers int    `json:"workers" yaml:"workers"`
	LogMode string `json:"log_mode" yaml:"log_mode"`
}

// Load reads a JSON or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Landmarks != "" {
		c.Landmarks = flags.Landmarks
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.NoSmooth {
		c.Smooth = boolPtr(false)
	}
	if flags.NoMirror {
		c.MirrorGarment = boolPtr(false)
	}
	if flags.LogMode != "" {
		c.LogMode = flags.LogMode
	}

	// Defaults
	def := tryon.DefaultOptions()
	if c.Smooth == nil {
		c.Smooth = boolPtr(def.Smooth)
	}
	if c.MirrorGarment == nil {
		c.MirrorGarment = boolPtr(def.MirrorGarment)
	}
	if c.Sleeves == nil {
		c.Sleeves = boolPtr(def.Sleeves)
	}
	if c.Details == nil {
		c.Details = boolPtr(def.Details)
	}
	if c.Stiffness == 0 {
		c.Stiffness = def.Stiffness
	}
	if c.TaperRatio == 0 {
		c.TaperRatio = def.TaperRatio
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	if c.Supersample <= 0 {
		c.Supersample = def.Supersample
	}
	if c.ProviderTimeout == "" {
		c.ProviderTimeout = "2s"
	}
	if c.MinVisibility == 0 {
		c.MinVisibility = 0.5
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}

	return c.validate()
}

func (c *Config) validate() error {
	f, err := output.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Format = string(f)
	if c.Stiffness < 0 || c.Stiffness > 1 {
		return fmt.Errorf("config: stiffness %v outside [0,1]", c.Stiffness)
	}
	if c.TaperRatio <= 0 || c.TaperRatio > 1 {
		return fmt.Errorf("config: taper_ratio %v outside (0,1]", c.TaperRatio)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout is the bounded wait on an external landmark provider.
func (c Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.ProviderTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: provider_timeout: %w", err)
	}
	return d, nil
}

// OutputFormat is the parsed Format.
func (c Config) OutputFormat() output.Format {
	f, _ := output.ParseFormat(c.Format)
	return f
}

// RenderOptions converts the resolved config to renderer options.
func (c Config) RenderOptions() tryon.Options {
	opts := tryon.DefaultOptions()
	opts.Smooth = deref(c.Smooth, opts.Smooth)
	opts.MirrorGarment = deref(c.MirrorGarment, opts.MirrorGarment)
	opts.Sleeves = deref(c.Sleeves, opts.Sleeves)
	opts.Details = deref(c.Details, opts.Details)
	if c.Stiffness > 0 {
		opts.Stiffness = c.Stiffness
	}
	if c.TaperRatio > 0 {
		opts.TaperRatio = c.TaperRatio
	}
	if c.Seed != 0 {
		opts.Seed = c.Seed
	}
	if c.Supersample > 0 {
		opts.Supersample = c.Supersample
	}
	return opts
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir   string
	Landmarks   string
	Format      string
	Workers     int
	Seed        int64
	Supersample int
	NoSmooth    bool
	NoMirror    bool
	LogMode     string
}

func boolPtr(b bool) *bool {
	return &b
}

func deref(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
