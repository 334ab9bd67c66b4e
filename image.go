package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes the image at filePath. Raster formats are decoded with
// their EXIF orientation applied; SVG documents are rasterized svgWidth
// pixels wide.
func LoadImage(filePath string, svgWidth int) (image.Image, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".svg":
		img, err := LoadSVG(bytes.NewReader(data), svgWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize %s: %w", filePath, err)
		}
		return img, nil
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filePath, err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported image format: %q", ext)
	}
}
