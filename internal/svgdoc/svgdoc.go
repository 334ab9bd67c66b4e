// Package svgdoc exports ordered runs as an SVG drawing sized in
// millimetres, one line element per run.
package svgdoc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"gcodeconv/internal/raster"
	"gcodeconv/internal/toolpath"
)

// ErrNoRuns is returned when there is nothing to draw.
var ErrNoRuns = errors.New("svgdoc: no runs to export")

// Document describes the drawing canvas.
type Document struct {
	// Width and Height are the raster dimensions in pixels.
	Width, Height int
	PixelSize     float64
	Optimized     bool

	// Gray, when set, modulates stroke opacity by the mean darkness of
	// each run.
	Gray *raster.Gray
}

// Render returns the drawing for ordered.
func Render(ordered []toolpath.OrderedRun, doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, ordered, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the drawing for ordered to w. It returns ErrNoRuns without
// writing anything when ordered is empty.
func Write(w io.Writer, ordered []toolpath.OrderedRun, doc Document) error {
	if len(ordered) == 0 {
		return ErrNoRuns
	}
	ps := doc.PixelSize
	wmm := num(float64(doc.Width) * ps)
	hmm := num(float64(doc.Height) * ps)
	sw := num(ps)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(bw, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%smm\" height=\"%smm\" viewBox=\"0 0 %s %s\">\n",
		wmm, hmm, wmm, hmm)
	fmt.Fprintf(bw, "  <rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"white\"/>\n", wmm, hmm)
	fmt.Fprintf(bw, "  <desc>optimized=%t runs=%d</desc>\n", doc.Optimized, len(ordered))

	for _, o := range ordered {
		y := num((float64(o.Y) + 0.5) * ps)
		fmt.Fprintf(bw, "  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"black\" stroke-width=\"%s\" stroke-opacity=\"%s\"/>\n",
			num(float64(o.Entry())*ps), y, num(float64(o.Exit())*ps), y, sw, num(Opacity(o.Run, doc.Gray)))
	}
	fmt.Fprintf(bw, "</svg>\n")
	return bw.Flush()
}

// Opacity returns the stroke opacity of r: 1 without a grayscale buffer,
// otherwise (255 − mean intensity of the run's pixels) / 255.
func Opacity(r toolpath.Run, gray *raster.Gray) float64 {
	if gray == nil {
		return 1
	}
	lo, hi := min(r.XStart, r.XEnd), max(r.XStart, r.XEnd)
	vals := make([]float64, 0, hi-lo+1)
	for x := lo; x <= hi; x++ {
		vals = append(vals, float64(gray.At(x, r.Y)))
	}
	return (255 - stat.Mean(vals, nil)) / 255
}

// num formats a coordinate with three decimals.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
