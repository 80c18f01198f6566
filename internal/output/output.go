package output

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Format is an encoded image format for rendered results.
type Format string

const (
	WebP Format = "webp"
	PNG  Format = "png"
)

// ParseFormat accepts "webp" or "png" in any case. An empty string means WebP.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", WebP:
		return WebP, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("output: unknown format %q", s)
}

// FormatFromPath picks the format from a file extension, falling back to def.
func FormatFromPath(path string, def Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		return WebP
	case ".png":
		return PNG
	}
	return def
}

// Ext is the file extension, with dot, for f.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes img to w as f. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case WebP, "":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("output: webp encode: %w", err)
		}
	case PNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("output: png encode: %w", err)
		}
	default:
		return fmt.Errorf("output: unknown format %q", f)
	}
	return nil
}

// EncodeBytes returns img encoded as f.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes img to path, creating parent directories. The format is
// taken from the extension when it names one, otherwise def is used.
func Save(path string, img image.Image, def Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := Encode(f, img, FormatFromPath(path, def)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
