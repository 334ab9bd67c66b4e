package toolpath

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stats summarizes an ordered traversal.
type Stats struct {
	Runs int
	// DrawMm is the total length of the marking moves.
	DrawMm float64
	// TravelMm is the length of the moves between consecutive runs, from
	// the exit of one run to the entry of the next.
	TravelMm float64
}

// Measure computes the statistics of ordered at the given pixel size.
func Measure(ordered []OrderedRun, pixelSize float64) Stats {
	if len(ordered) == 0 {
		return Stats{}
	}
	draw := make([]float64, len(ordered))
	travel := make([]float64, 0, len(ordered)-1)
	for i, o := range ordered {
		draw[i] = float64(o.Len())
		if i > 0 {
			prev := ordered[i-1]
			travel = append(travel, math.Hypot(
				float64(o.Entry()-prev.Exit()),
				float64(o.Y-prev.Y),
			))
		}
	}
	return Stats{
		Runs:     len(ordered),
		DrawMm:   floats.Sum(draw) * pixelSize,
		TravelMm: floats.Sum(travel) * pixelSize,
	}
}
