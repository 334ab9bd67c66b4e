// Package preview renders the binarized raster with the toolpath drawn on
// top: marking moves in red with direction arrows, travel moves as blue
// dashes, and a small info box.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"gcodeconv/internal/raster"
	"gcodeconv/internal/toolpath"
)

var (
	runColor    = color.NRGBA{R: 255, A: 230}
	travelColor = color.NRGBA{G: 120, B: 255, A: 204}
	boxColor    = color.NRGBA{A: 153}
)

// Options controls the overlay.
type Options struct {
	ShowPath  bool
	Optimized bool
	PxPerMm   float64
}

// Render draws mask and, when ShowPath is set, the ordered toolpath.
func Render(mask *raster.Mask, ordered []toolpath.OrderedRun, o Options) *image.RGBA {
	w, h := mask.W, mask.H
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), mask.Image(), image.Point{}, draw.Src)
	if !o.ShowPath {
		return img
	}

	sw := StrokeWidth(w)
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	filler := rasterx.NewFiller(w, h, scanner)

	dasher.SetStroke(toFixed(sw), 4<<6, rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.Miter, nil, 0)
	for _, r := range ordered {
		s, e := segment(r)
		dasher.SetColor(runColor)
		dasher.Start(rasterx.ToFixedP(s.x, s.y))
		dasher.Line(rasterx.ToFixedP(e.x, e.y))
		dasher.Stop(false)
		dasher.Draw()
		dasher.Clear()

		angle := 0.0
		if r.Dir == toolpath.Reverse {
			angle = math.Pi
		}
		filler.SetColor(runColor)
		arrowHead(filler, e, angle, sw*2)
		rasterx.AddCircle(s.x, s.y, math.Max(1, sw/1.5), filler)
		filler.Draw()
		filler.Clear()
	}

	if o.Optimized && len(ordered) > 1 {
		dasher.SetStroke(toFixed(math.Max(0.7, sw/1.5)), 4<<6, rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.Miter, []float64{4, 4}, 0)
		dasher.SetColor(travelColor)
		for i := 1; i < len(ordered); i++ {
			_, prev := segment(ordered[i-1])
			next, _ := segment(ordered[i])
			dasher.Start(rasterx.ToFixedP(prev.x, prev.y))
			dasher.Line(rasterx.ToFixedP(next.x, next.y))
			dasher.Stop(false)
		}
		dasher.Draw()
		dasher.Clear()
	}

	infoBox(img, len(ordered), o.Optimized, EstimatedTravel(ordered, o.PxPerMm))
	return img
}

// StrokeWidth returns the overlay line width for a canvas w pixels wide.
func StrokeWidth(w int) float64 {
	return math.Max(1, math.Min(3, float64(w)/300))
}

type point struct{ x, y float64 }

// segment returns the drawn start and end of r in canvas coordinates,
// inset half a pixel from the traversed edges.
func segment(r toolpath.OrderedRun) (start, end point) {
	y := float64(r.Y) + 0.5
	return point{float64(r.Entry()) + 0.5, y}, point{float64(r.Exit()) - 0.5, y}
}

// EstimatedTravel returns the length in millimetres of the moves between
// consecutive drawn segments.
func EstimatedTravel(ordered []toolpath.OrderedRun, pxPerMm float64) float64 {
	total := 0.0
	for i := 1; i < len(ordered); i++ {
		_, prev := segment(ordered[i-1])
		next, _ := segment(ordered[i])
		total += math.Hypot(next.x-prev.x, next.y-prev.y)
	}
	if pxPerMm <= 0 {
		return total
	}
	return total / pxPerMm
}

// arrowHead fills a triangle pointing along angle with its tip at p.
func arrowHead(f *rasterx.Filler, p point, angle, size float64) {
	sin, cos := math.Sincos(angle)
	at := func(dx, dy float64) fixed.Point26_6 {
		return rasterx.ToFixedP(p.x+dx*cos-dy*sin, p.y+dx*sin+dy*cos)
	}
	f.Start(at(0, 0))
	f.Line(at(-size, -size/2))
	f.Line(at(-size, size/2))
	f.Stop(true)
}

func infoBox(img *image.RGBA, runs int, optimized bool, travelMm float64) {
	box := image.Rect(6, 6, 206, 50).Intersect(img.Bounds())
	draw.Draw(img, box, &image.Uniform{boxColor}, image.Point{}, draw.Over)

	yes := "no"
	if optimized {
		yes = "yes"
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
	}
	for _, l := range []struct {
		x, y int
		text string
	}{
		{12, 22, fmt.Sprintf("Runs: %d", runs)},
		{12, 38, "Optimized: " + yes},
		{120, 22, fmt.Sprintf("Est. travel: %.2f mm", travelMm)},
	} {
		d.Dot = fixed.P(l.x, l.y)
		d.DrawString(l.text)
	}
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
