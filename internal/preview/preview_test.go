package preview

import (
	"math"
	"testing"

	"gcodeconv/internal/raster"
	"gcodeconv/internal/toolpath"
)

func testMask() (*raster.Mask, []toolpath.OrderedRun) {
	m := raster.NewMask(300, 60)
	for x := 0; x < 40; x++ {
		m.Bits[55*m.W+x] = true
	}
	for x := 100; x < 160; x++ {
		m.Bits[58*m.W+x] = true
	}
	runs := toolpath.ExtractRuns(m, 1)
	return m, toolpath.Optimize(runs)
}

func TestRenderWithoutPath(t *testing.T) {
	m, ordered := testMask()
	img := Render(m, ordered, Options{ShowPath: false, PxPerMm: 5})
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 60 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for _, p := range []struct {
		x, y int
		v    uint8
	}{{10, 55, 0}, {10, 54, 255}, {120, 58, 0}, {200, 10, 255}} {
		c := img.RGBAAt(p.x, p.y)
		if c.R != p.v || c.G != p.v || c.B != p.v || c.A != 255 {
			t.Errorf("pixel (%d,%d) = %v, want gray %d", p.x, p.y, c, p.v)
		}
	}
}

func TestRenderWithPath(t *testing.T) {
	m, ordered := testMask()
	img := Render(m, ordered, Options{ShowPath: true, Optimized: true, PxPerMm: 5})

	c := img.RGBAAt(20, 55)
	if c.R < 150 || c.G > 60 || c.B > 60 {
		t.Errorf("run pixel = %v, want red", c)
	}
	// The info box darkens the top left corner.
	if c := img.RGBAAt(200, 45); c.R > 150 {
		t.Errorf("info box pixel = %v, want dark", c)
	}
	// Away from runs, travel and the box the white background is untouched.
	if c := img.RGBAAt(280, 20); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("background pixel = %v, want white", c)
	}
}

func TestRenderEmpty(t *testing.T) {
	m := raster.NewMask(10, 10)
	img := Render(m, nil, Options{ShowPath: true, Optimized: true, PxPerMm: 1})
	if img.Bounds().Dx() != 10 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestStrokeWidth(t *testing.T) {
	tests := []struct {
		w    int
		want float64
	}{{100, 1}, {300, 1}, {600, 2}, {1500, 3}}
	for _, tt := range tests {
		if got := StrokeWidth(tt.w); got != tt.want {
			t.Errorf("StrokeWidth(%d) = %v, want %v", tt.w, got, tt.want)
		}
	}
}

func TestEstimatedTravel(t *testing.T) {
	ordered := []toolpath.OrderedRun{
		{Run: toolpath.NewRun(0, 0, 3, 1), Dir: toolpath.Forward},
		{Run: toolpath.NewRun(2, 5, 6, 1), Dir: toolpath.Reverse},
	}
	// (3.5, 0.5) to (7.5, 2.5)
	want := math.Sqrt(20) / 2
	if got := EstimatedTravel(ordered, 2); math.Abs(got-want) > 1e-12 {
		t.Errorf("EstimatedTravel = %v, want %v", got, want)
	}
	if got := EstimatedTravel(ordered[:1], 2); got != 0 {
		t.Errorf("EstimatedTravel of one run = %v, want 0", got)
	}
}
