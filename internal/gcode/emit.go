package gcode

import (
	"io"
	"math"
	"strings"

	"gcodeconv/internal/config"
	"gcodeconv/internal/raster"
	"gcodeconv/internal/toolpath"
)

// HeaderComment is the first line of every program.
const HeaderComment = "Generated by G-Code-Converter simple client generator"

// Settings are the machine parameters of a program.
type Settings struct {
	Mode         config.Mode
	PowerMapping config.PowerMapping
	MaxPower     int
	Feed         float64
	ZTravel      float64
	ZPlunge      float64

	// PixelSize is the size of one pixel in millimetres.
	PixelSize float64
	// CanvasWidth is the raster width in pixels; run edges are clamped to it.
	CanvasWidth int
}

// SettingsFrom derives Settings from a normalized configuration.
func SettingsFrom(c config.Config, canvasWidth int) Settings {
	return Settings{
		Mode:         c.Mode,
		PowerMapping: c.PowerMapping,
		MaxPower:     c.MaxPower,
		Feed:         c.Feed,
		ZTravel:      c.ZTravel,
		ZPlunge:      c.ZPlunge,
		PixelSize:    c.PixelSize(),
		CanvasWidth:  canvasWidth,
	}
}

// Program returns the motion program for ordered as a string.
func Program(ordered []toolpath.OrderedRun, s Settings, gray *raster.Gray) (string, error) {
	var sb strings.Builder
	if err := Emit(&sb, ordered, s, gray); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Emit writes the motion program for ordered to w. Grayscale power mapping
// is used only when gray is not nil; gray must have the raster's
// dimensions.
func Emit(w io.Writer, ordered []toolpath.OrderedRun, s Settings, gray *raster.Gray) error {
	g := NewWriter(w)
	laser := s.Mode == config.Laser

	g.Comment(HeaderComment)
	g.Units()
	g.RapidZ(s.ZTravel)

	for _, o := range ordered {
		entry := s.mm(o.Entry())
		exit := s.mm(o.Exit())
		y := float64(o.Y) * s.PixelSize

		g.Rapid(entry, y)
		switch {
		case laser && s.PowerMapping == config.GrayscalePower && gray != nil:
			s.modulated(g, o, gray)
		case laser:
			g.PowerOn(s.MaxPower)
			g.Line(exit, y, s.Feed)
			g.PowerOff()
		default:
			g.LineZ(s.ZPlunge, s.Feed)
			g.Line(exit, y, s.Feed)
			g.LineZ(s.ZTravel, s.Feed)
		}
	}

	g.RapidZ(s.ZTravel)
	g.Home()
	if laser {
		g.PowerOff()
	}
	g.Comment("end")
	return g.Flush()
}

// mm converts a pixel-edge x coordinate to millimetres after clamping it
// into the canvas.
func (s Settings) mm(x int) float64 {
	x = min(max(x, 0), s.CanvasWidth)
	return float64(x) * s.PixelSize
}

// modulated walks the pixels of o from left to right whatever the
// traversal direction, switching the laser power only when it changes and
// moving to the right edge of every pixel.
func (s Settings) modulated(g *Writer, o toolpath.OrderedRun, gray *raster.Gray) {
	y := float64(o.Y) * s.PixelSize
	prev := -1
	for x := min(o.XStart, o.XEnd); x <= max(o.XStart, o.XEnd); x++ {
		p := Power(gray.At(x, o.Y), s.MaxPower)
		if p != prev {
			if p > 0 {
				g.PowerOn(p)
			} else {
				g.PowerOff()
			}
			prev = p
		}
		g.Line(s.mm(x+1), y, s.Feed)
	}
	g.PowerOff()
}

// Power maps an intensity to a laser power: black is maxPower, white is 0.
func Power(intensity uint8, maxPower int) int {
	p := int(math.Round(float64(255-int(intensity)) / 255 * float64(maxPower)))
	return min(max(p, 0), maxPower)
}
