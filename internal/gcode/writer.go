// Package gcode emits motion programs for pen plotters and laser heads
// from ordered scan-line runs.
package gcode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Writer writes G-code lines separated by newlines. The last line is not
// terminated. Write errors are sticky and reported by Flush.
type Writer struct {
	w     *bufio.Writer
	lines int
	err   error
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (g *Writer) linef(format string, args ...interface{}) {
	if g.err != nil {
		return
	}
	if g.lines > 0 {
		if g.err = g.w.WriteByte('\n'); g.err != nil {
			return
		}
	}
	_, g.err = fmt.Fprintf(g.w, format, args...)
	g.lines++
}

// Comment writes a comment line.
func (g *Writer) Comment(text string) {
	g.linef("; %s", text)
}

// Units declares millimetres and absolute positioning.
func (g *Writer) Units() {
	g.linef("G21 ; mm")
	g.linef("G90 ; absolute")
}

// RapidZ moves the head to height z at rapid speed.
func (g *Writer) RapidZ(z float64) {
	g.linef("G0 Z%s", fixed3(z))
}

// Rapid moves to (x, y) at rapid speed.
func (g *Writer) Rapid(x, y float64) {
	g.linef("G0 X%s Y%s", fixed3(x), fixed3(y))
}

// Home returns to the origin at rapid speed.
func (g *Writer) Home() {
	g.linef("G0 X0 Y0")
}

// LineZ moves the head to height z at the feed rate.
func (g *Writer) LineZ(z, feed float64) {
	g.linef("G1 Z%s F%s", fixed3(z), formatFeed(feed))
}

// Line moves to (x, y) at the feed rate.
func (g *Writer) Line(x, y, feed float64) {
	g.linef("G1 X%s Y%s F%s", fixed3(x), fixed3(y), formatFeed(feed))
}

// PowerOn switches the laser on at power s.
func (g *Writer) PowerOn(s int) {
	g.linef("M3 S%d", s)
}

// PowerOff switches the laser off.
func (g *Writer) PowerOff() {
	g.linef("M5")
}

// Flush writes any buffered data and returns the first error encountered.
func (g *Writer) Flush() error {
	if g.err != nil {
		return g.err
	}
	return g.w.Flush()
}

// formatFeed prints the shortest decimal representation: 1200, 1200.5.
func formatFeed(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var (
	thousand = big.NewRat(1000, 1)
	half     = big.NewRat(1, 2)
)

// fixed3 formats v with three decimals. The exact binary value is rounded,
// with exact ties going away from zero: 0.0625 is 0.063, 1.0005 is 1.000.
func fixed3(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
	r := new(big.Rat).SetFloat64(math.Abs(v))
	r.Mul(r, thousand)
	r.Add(r, half)
	n := new(big.Int).Quo(r.Num(), r.Denom()).String()
	if len(n) < 4 {
		n = strings.Repeat("0", 4-len(n)) + n
	}
	out := n[:len(n)-3] + "." + n[len(n)-3:]
	if v < 0 {
		out = "-" + out
	}
	return out
}
