package toolpath

import (
	"math"
	"slices"
)

// Direction is the traversal direction of a run.
type Direction int

const (
	// Forward traverses XStart → XEnd+1.
	Forward Direction = iota
	// Reverse traverses XEnd+1 → XStart.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// OrderedRun is a run with the direction it is traversed in.
type OrderedRun struct {
	Run
	Dir Direction
}

// Entry returns the pixel-edge x coordinate where traversal begins.
func (o OrderedRun) Entry() int {
	if o.Dir == Reverse {
		return o.XEnd + 1
	}
	return o.XStart
}

// Exit returns the pixel-edge x coordinate where traversal ends.
func (o OrderedRun) Exit() int {
	if o.Dir == Reverse {
		return o.XStart
	}
	return o.XEnd + 1
}

// Order returns Optimize(runs) when optimize is set and InOrder(runs)
// otherwise.
func Order(runs []Run, optimize bool) []OrderedRun {
	if optimize {
		return Optimize(runs)
	}
	return InOrder(runs)
}

// InOrder keeps the input order and traverses every run forward.
func InOrder(runs []Run) []OrderedRun {
	out := make([]OrderedRun, len(runs))
	for i, r := range runs {
		out[i] = OrderedRun{Run: r, Dir: Forward}
	}
	return out
}

// Optimize orders runs greedily. Starting at pixel (0,0) it repeatedly
// picks the remaining run with the nearest entry point, either (XStart, Y)
// or (XEnd+1, Y), and moves to that run's far end.
//
// Candidates are evaluated in remaining order, start before end, and only a
// strictly smaller distance replaces the current best, so the first minimum
// wins ties. The cost is quadratic in the number of runs.
func Optimize(runs []Run) []OrderedRun {
	remaining := slices.Clone(runs)
	ordered := make([]OrderedRun, 0, len(runs))
	cx, cy := 0.0, 0.0

	for len(remaining) > 0 {
		best := -1
		bestDist := math.Inf(1)
		bestDir := Forward

		for i, r := range remaining {
			y := float64(r.Y)
			dStart := math.Hypot(cx-float64(r.XStart), cy-y)
			dEnd := math.Hypot(cx-float64(r.XEnd+1), cy-y)
			if dStart < bestDist {
				best, bestDist, bestDir = i, dStart, Forward
			}
			if dEnd < bestDist {
				best, bestDist, bestDir = i, dEnd, Reverse
			}
		}

		chosen := OrderedRun{Run: remaining[best], Dir: bestDir}
		remaining = slices.Delete(remaining, best, best+1)
		ordered = append(ordered, chosen)

		cx, cy = float64(chosen.Exit()), float64(chosen.Y)
	}
	return ordered
}
