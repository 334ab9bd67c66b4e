package raster

import (
	"image"
	"math"
)

const (
	threshold = 128

	// nearWhite is the exclusion level of the grayscale laser mode: anything
	// lighter is background and produces no run.
	nearWhite = 250
)

// Mask is a per-pixel draw decision with the dimensions of its Gray source.
type Mask struct {
	W, H int
	Bits []bool
}

// NewMask returns an empty mask.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Bits: make([]bool, w*h)}
}

// At reports whether the tool must pass over (x, y).
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.W+x]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Image renders the mask black on white.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for i, b := range m.Bits {
		if b {
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 255
		}
	}
	return img
}

// Options selects the binarization.
type Options struct {
	Dither bool
	Invert bool

	// NearWhite excludes only near-white background. It takes precedence
	// over Dither and is used when laser power follows intensity.
	NearWhite bool
}

// Binarize converts g into a draw mask.
func Binarize(g *Gray, opts Options) *Mask {
	switch {
	case opts.NearWhite:
		return NearWhite(g, opts.Invert)
	case opts.Dither:
		return Dither(g, opts.Invert)
	default:
		return Threshold(g, opts.Invert)
	}
}

// Threshold marks every pixel whose effective intensity is below 128.
func Threshold(g *Gray, invert bool) *Mask {
	return cutoff(g, invert, threshold)
}

// NearWhite marks every pixel whose effective intensity is below 250.
func NearWhite(g *Gray, invert bool) *Mask {
	return cutoff(g, invert, nearWhite)
}

func cutoff(g *Gray, invert bool, level int) *Mask {
	m := NewMask(g.W, g.H)
	for i, v := range g.Pix {
		m.Bits[i] = effective(int(v), invert) < level
	}
	return m
}

func effective(v int, invert bool) int {
	if invert {
		return 255 - v
	}
	return v
}

// Dither applies Floyd–Steinberg error diffusion over a working copy of g,
// row by row, left to right. The error of a pixel is measured on its
// effective (possibly inverted) value and added to the raw values of the
// unvisited neighbours: east 7/16, south-west 3/16, south 5/16,
// south-east 1/16.
func Dither(g *Gray, invert bool) *Mask {
	w, h := g.W, g.H
	px := make([]uint8, len(g.Pix))
	copy(px, g.Pix)
	m := NewMask(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			old := effective(int(px[idx]), invert)
			var quant int
			if old >= threshold {
				quant = 255
			}
			px[idx] = uint8(quant)
			m.Bits[idx] = quant == 0

			e := float64(old - quant)
			if e == 0 {
				continue
			}
			if x+1 < w {
				px[idx+1] = diffuse(px[idx+1], e*7/16)
			}
			if y+1 < h {
				if x-1 >= 0 {
					px[idx+w-1] = diffuse(px[idx+w-1], e*3/16)
				}
				px[idx+w] = diffuse(px[idx+w], e*5/16)
				if x+1 < w {
					px[idx+w+1] = diffuse(px[idx+w+1], e*1/16)
				}
			}
		}
	}
	return m
}

// diffuse adds err to v, clamps to [0,255] and stores the nearest byte,
// ties to even.
func diffuse(v uint8, err float64) uint8 {
	f := float64(v) + err
	f = math.Max(0, math.Min(255, f))
	return uint8(math.RoundToEven(f))
}
