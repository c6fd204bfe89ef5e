package titlebar

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, width, height int, col color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, col)
		}
	}
	path := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()
	return path
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

func TestAnnotate_AddsBarHeight(t *testing.T) {
	red := color.RGBA{200, 30, 30, 255}
	path := writeTestPNG(t, 320, 120, red)

	r := NewRenderer()
	if err := r.Annotate(path, "Home", "http://127.0.0.1:8000/", "chrome"); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	out := decodePNG(t, path)
	b := out.Bounds()
	if b.Dx() != 320 {
		t.Errorf("width = %d, want 320", b.Dx())
	}
	if b.Dy() != 120+BarHeight("chrome") {
		t.Errorf("height = %d, want %d", b.Dy(), 120+BarHeight("chrome"))
	}

	// Top-left corner belongs to the bar background.
	bg := StyleFor("chrome").BG
	if got := color.RGBAModel.Convert(out.At(0, 0)); got != bg {
		t.Errorf("bar pixel = %v, want %v", got, bg)
	}
	// Below the bar the original screenshot survives.
	if got := color.RGBAModel.Convert(out.At(5, BarHeight("chrome")+5)); got != red {
		t.Errorf("screenshot pixel = %v, want %v", got, red)
	}
}

func TestAnnotate_UnknownStyleFallsBackToChrome(t *testing.T) {
	path := writeTestPNG(t, 200, 80, color.RGBA{0, 0, 255, 255})

	r := NewRenderer()
	if err := r.Annotate(path, "T", "u", "no-such-style"); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	out := decodePNG(t, path)
	if out.Bounds().Dy() != 80+BarHeight("chrome") {
		t.Errorf("height = %d, want chrome fallback %d", out.Bounds().Dy(), 80+BarHeight("chrome"))
	}
}

func TestAnnotate_StyleHeights(t *testing.T) {
	tests := []struct {
		style  string
		height int
	}{
		{"chrome", 72},
		{"safari", 52},
		{"minimal", 40},
	}
	for _, tc := range tests {
		if got := BarHeight(tc.style); got != tc.height {
			t.Errorf("BarHeight(%s) = %d, want %d", tc.style, got, tc.height)
		}
	}
}

func TestAnnotate_MissingFile(t *testing.T) {
	r := NewRenderer()
	if err := r.Annotate(filepath.Join(t.TempDir(), "missing.png"), "T", "u", "chrome"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
