package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func TestLoadImageRaster(t *testing.T) {
	dir := t.TempDir()
	src := imaging.New(12, 7, color.Black)
	for _, name := range []string{"a.png", "a.jpg", "a.gif", "a.bmp", "a.tif"} {
		path := filepath.Join(dir, name)
		if err := imaging.Save(src, path); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		img, err := LoadImage(path, 0)
		if err != nil {
			t.Errorf("LoadImage(%s): %v", name, err)
			continue
		}
		if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 7 {
			t.Errorf("LoadImage(%s) bounds = %v, want 12x7", name, img.Bounds())
		}
	}
}

func TestLoadImageSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "half.svg")
	doc := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 5">
  <rect x="0" y="0" width="5" height="5" fill="black"/>
</svg>`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	img, err := LoadImage(path, 40)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 40, 20) {
		t.Fatalf("bounds = %v, want 40x20", img.Bounds())
	}
	luma := func(x, y int) uint8 {
		return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
	}
	if v := luma(10, 10); v > 10 {
		t.Errorf("filled pixel luma = %d, want black", v)
	}
	if v := luma(30, 10); v < 245 {
		t.Errorf("background pixel luma = %d, want white", v)
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(txt, 10); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("LoadImage(.txt) error = %v, want unsupported format", err)
	}

	bad := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(bad, 10); err == nil {
		t.Error("LoadImage of a corrupt png succeeded")
	}

	if _, err := LoadImage(filepath.Join(dir, "missing.png"), 10); err == nil {
		t.Error("LoadImage of a missing file succeeded")
	}
}
