// Package pipeline ties the stages together and caches the grayscale
// buffer, draw mask and runs so that preview, generate and export calls
// with unchanged raster settings reuse them.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"gcodeconv/internal/config"
	"gcodeconv/internal/gcode"
	"gcodeconv/internal/preview"
	"gcodeconv/internal/raster"
	"gcodeconv/internal/svgdoc"
	"gcodeconv/internal/toolpath"
)

var (
	// ErrNoImage is returned by every command before an image is loaded.
	ErrNoImage = errors.New("pipeline: no image processed yet")

	// ErrNoRuns is returned by ExportDrawing when the draw mask is empty.
	ErrNoRuns = fmt.Errorf("pipeline: %w", svgdoc.ErrNoRuns)
)

// rasterKey holds the settings the cached raster state depends on.
type rasterKey struct {
	widthMm   float64
	pxPerMm   float64
	dither    bool
	invert    bool
	nearWhite bool
}

func keyOf(c config.Config) rasterKey {
	return rasterKey{
		widthMm:   c.WidthMm,
		pxPerMm:   c.PxPerMm,
		dither:    c.Dither,
		invert:    c.Invert,
		nearWhite: c.GrayscaleLaser(),
	}
}

// state is replaced as a whole, never updated in place.
type state struct {
	key  rasterKey
	gray *raster.Gray
	mask *raster.Mask
	runs []toolpath.Run
}

// Frame is the result of one pipeline pass.
type Frame struct {
	Config config.Config

	// Gray holds the effective (invert-applied) intensities.
	Gray    *raster.Gray
	Mask    *raster.Mask
	Runs    []toolpath.Run
	Ordered []toolpath.OrderedRun
	Stats   toolpath.Stats
}

// Retained returns the grayscale buffer that modulates laser power and
// drawing opacity, or nil when the configuration does not use it.
func (f *Frame) Retained() *raster.Gray {
	if f.Config.GrayscaleLaser() {
		return f.Gray
	}
	return nil
}

// Pipeline owns the source image and the cached raster state.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	source image.Image
	base   *raster.Gray
	state  *state
}

// New returns an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Load replaces the source image and discards the cached state.
func (p *Pipeline) Load(img image.Image) {
	p.source, p.base, p.state = img, nil, nil
}

// LoadGray uses an already decoded grayscale buffer as the source. The
// buffer is taken as is: it is not resampled to the configured width.
func (p *Pipeline) LoadGray(g *raster.Gray) {
	p.source, p.base, p.state = nil, g, nil
}

// Loaded reports whether a source is present.
func (p *Pipeline) Loaded() bool {
	return p.source != nil || p.base != nil
}

// Preview runs binarization, run extraction and ordering.
func (p *Pipeline) Preview(cfg config.Config) (*Frame, error) {
	if !p.Loaded() {
		return nil, ErrNoImage
	}
	cfg = cfg.Normalize()
	st := p.rasterize(cfg)

	start := time.Now()
	ordered := toolpath.Order(st.runs, cfg.Optimize)
	Logger().Debug("ordered runs",
		"optimize", cfg.Optimize,
		"runs", len(ordered),
		"elapsed", time.Since(start))

	return &Frame{
		Config:  cfg,
		Gray:    st.gray,
		Mask:    st.mask,
		Runs:    st.runs,
		Ordered: ordered,
		Stats:   toolpath.Measure(ordered, cfg.PixelSize()),
	}, nil
}

// rasterize returns the cached state for cfg, recomputing it when the
// source or the raster settings changed.
func (p *Pipeline) rasterize(cfg config.Config) *state {
	key := keyOf(cfg)
	if p.state != nil && p.state.key == key {
		Logger().Debug("reusing raster", "width", p.state.gray.W, "height", p.state.gray.H)
		return p.state
	}

	start := time.Now()
	src := p.base
	if src == nil {
		src = raster.FromImage(p.source, cfg.WidthMm, cfg.PxPerMm)
	}
	mask := raster.Binarize(src, raster.Options{
		Dither:    cfg.Dither,
		Invert:    cfg.Invert,
		NearWhite: key.nearWhite,
	})
	st := &state{
		key:  key,
		gray: src.Effective(cfg.Invert),
		mask: mask,
		runs: toolpath.ExtractRuns(mask, cfg.PixelSize()),
	}
	p.state = st

	Logger().Info("rasterized",
		"width", st.gray.W,
		"height", st.gray.H,
		"drawn", mask.Count(),
		"runs", len(st.runs),
		"elapsed", time.Since(start))
	return st
}

// Generate returns the motion program for the current image.
func (p *Pipeline) Generate(cfg config.Config) (string, error) {
	f, err := p.Preview(cfg)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := gcode.Emit(&sb, f.Ordered, gcode.SettingsFrom(f.Config, f.Gray.W), f.Retained()); err != nil {
		return "", fmt.Errorf("pipeline: emitting program: %w", err)
	}
	Logger().Info("generated program",
		"mode", f.Config.Mode,
		"power", f.Config.PowerMapping,
		"runs", f.Stats.Runs,
		"travel_mm", f.Stats.TravelMm,
		"bytes", sb.Len())
	return sb.String(), nil
}

// ExportDrawing returns the SVG drawing for the current image. It fails
// with ErrNoRuns when there is nothing to draw.
func (p *Pipeline) ExportDrawing(cfg config.Config) ([]byte, error) {
	f, err := p.Preview(cfg)
	if err != nil {
		return nil, err
	}
	if len(f.Ordered) == 0 {
		return nil, ErrNoRuns
	}
	data, err := svgdoc.Render(f.Ordered, svgdoc.Document{
		Width:     f.Gray.W,
		Height:    f.Gray.H,
		PixelSize: f.Config.PixelSize(),
		Optimized: f.Config.Optimize,
		Gray:      f.Retained(),
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: exporting drawing: %w", err)
	}
	Logger().Info("exported drawing", "runs", len(f.Ordered), "bytes", len(data))
	return data, nil
}

// RenderPreview draws the binarized image with the toolpath overlay.
func (p *Pipeline) RenderPreview(cfg config.Config) (*image.RGBA, error) {
	f, err := p.Preview(cfg)
	if err != nil {
		return nil, err
	}
	return preview.Render(f.Mask, f.Ordered, preview.Options{
		ShowPath:  f.Config.ShowPath,
		Optimized: f.Config.Optimize,
		PxPerMm:   f.Config.PxPerMm,
	}), nil
}
