// Package toolpath extracts horizontal runs from a draw mask and orders them
// into a traversal.
package toolpath

import "gcodeconv/internal/raster"

// Run is a maximal span of set pixels on one row. XStart and XEnd are
// inclusive pixel indices; the millimetre fields cover the pixel edges
// [XMmStart, XMmEnd).
type Run struct {
	Y      int
	XStart int
	XEnd   int

	XMmStart float64
	XMmEnd   float64
	YMm      float64
}

// Len returns the number of pixels covered by r.
func (r Run) Len() int {
	return r.XEnd - r.XStart + 1
}

// NewRun builds the run covering pixels xStart..xEnd of row y.
func NewRun(y, xStart, xEnd int, pixelSize float64) Run {
	return Run{
		Y:        y,
		XStart:   xStart,
		XEnd:     xEnd,
		XMmStart: float64(xStart) * pixelSize,
		XMmEnd:   float64(xEnd+1) * pixelSize,
		YMm:      float64(y) * pixelSize,
	}
}

// ExtractRuns scans every row of m once, left to right, and returns its
// runs ordered by row then by XStart.
func ExtractRuns(m *raster.Mask, pixelSize float64) []Run {
	var runs []Run
	for y := 0; y < m.H; y++ {
		row := m.Bits[y*m.W : (y+1)*m.W]
		x := 0
		for x < m.W {
			if !row[x] {
				x++
				continue
			}
			end := x
			for end+1 < m.W && row[end+1] {
				end++
			}
			runs = append(runs, NewRun(y, x, end, pixelSize))
			x = end + 1
		}
	}
	return runs
}
