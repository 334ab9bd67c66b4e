// Package raster holds the grayscale pixel buffer and the binarizer that
// turns it into a draw mask.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Gray is a row-major 8-bit intensity buffer, 0 = black.
type Gray struct {
	W, H int
	Pix  []uint8
}

// NewGray returns a white buffer of the given size.
func NewGray(w, h int) *Gray {
	g := &Gray{W: w, H: h, Pix: make([]uint8, w*h)}
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	return g
}

// At returns the intensity at (x, y).
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.W+x]
}

// Effective returns a copy with the intensities inverted when invert is set.
func (g *Gray) Effective(invert bool) *Gray {
	out := &Gray{W: g.W, H: g.H, Pix: make([]uint8, len(g.Pix))}
	copy(out.Pix, g.Pix)
	if invert {
		for i, v := range out.Pix {
			out.Pix[i] = 255 - v
		}
	}
	return out
}

// Image returns the buffer as an *image.Gray.
func (g *Gray) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.W, g.H))
	copy(img.Pix, g.Pix)
	return img
}

// Size returns the pixel dimensions for an image of srcW×srcH scaled to
// widthMm at pxPerMm, keeping the aspect ratio. Both sides are at least 1.
func Size(srcW, srcH int, widthMm, pxPerMm float64) (int, int) {
	w := max(1, int(math.Round(widthMm*pxPerMm)))
	if srcW <= 0 {
		return w, 1
	}
	scale := float64(w) / float64(srcW)
	h := max(1, int(math.Round(float64(srcH)*scale)))
	return w, h
}

// FromImage resamples img to the target resolution, flattens it over a
// white background and converts it to luma.
func FromImage(img image.Image, widthMm, pxPerMm float64) *Gray {
	b := img.Bounds()
	w, h := Size(b.Dx(), b.Dy(), widthMm, pxPerMm)

	var src image.Image = img
	if b.Dx() != w || b.Dy() != h {
		src = imaging.Resize(img, w, h, imaging.Linear)
	}
	flat := imaging.Overlay(imaging.New(w, h, color.White), src, image.Pt(0, 0), 1.0)

	g := &Gray{W: w, H: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		row := flat.Pix[y*flat.Stride:]
		for x := 0; x < w; x++ {
			r, gr, bl := row[x*4], row[x*4+1], row[x*4+2]
			g.Pix[y*w+x] = luma(r, gr, bl)
		}
	}
	return g
}

// luma truncates the Rec. 601 weighted sum. The explicit conversions keep
// the compiler from fusing the multiply-adds.
func luma(r, g, b uint8) uint8 {
	return uint8(float64(0.299*float64(r)) + float64(0.587*float64(g)) + float64(0.114*float64(b)))
}
