package output

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/webp"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", WebP, false},
		{"webp", WebP, false},
		{"PNG", PNG, false},
		{" png ", PNG, false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	if got := FormatFromPath("out/a.PNG", WebP); got != PNG {
		t.Errorf("got %q, want png", got)
	}
	if got := FormatFromPath("out/a.bin", PNG); got != PNG {
		t.Errorf("got %q, want default", got)
	}
}

func TestEncodeWebPRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 116, 23, 23, 255
	}
	data, err := EncodeBytes(img, WebP)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	got, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("webp.Decode: %v", err)
	}
	if c := color.NRGBAModel.Convert(got.At(3, 3)).(color.NRGBA); c != (color.NRGBA{116, 23, 23, 255}) {
		t.Errorf("pixel = %v, want lossless copy", c)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if err := Save(path, img, WebP); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("extension .png did not select PNG")
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, image.NewNRGBA(image.Rect(0, 0, 1, 1)), "gif"); err == nil {
		t.Error("unknown format encoded")
	}
}
