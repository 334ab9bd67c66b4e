package main

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// LoadSVG rasterizes an SVG document onto a white canvas width pixels wide,
// keeping the viewBox aspect ratio. A non-positive width renders at the
// viewBox size.
func LoadSVG(r io.Reader, width int) (image.Image, error) {
	svgIcon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, err
	}

	viewBoxW := svgIcon.ViewBox.W
	viewBoxH := svgIcon.ViewBox.H
	if viewBoxW <= 0 || viewBoxH <= 0 {
		return nil, errors.New("svg has an empty viewBox")
	}

	w := width
	if w <= 0 {
		w = int(math.Round(viewBoxW))
	}
	h := max(1, int(math.Round(viewBoxH*float64(w)/viewBoxW)))
	w = max(1, w)

	svgIcon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	scanner.SetClip(img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)

	svgIcon.Draw(raster, 1.0)
	return img, nil
}
