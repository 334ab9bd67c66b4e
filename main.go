package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/disintegration/imaging"

	"gcodeconv/internal/config"
	"gcodeconv/internal/pipeline"
	"gcodeconv/internal/raster"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	fs *flag.FlagSet

	input, output string
	svgPath       string
	previewPath   string
	configPath    string
	verbose       bool

	width, ppmm            float64
	dither, invert         bool
	mode, power            string
	maxPower               int
	feed, zTravel, zPlunge float64
	optimize, showPath     bool
}

func parseFlags(args []string) (*cliFlags, error) {
	d := config.Default()
	f := &cliFlags{fs: flag.NewFlagSet("gcodeconv", flag.ContinueOnError)}
	fs := f.fs

	fs.StringVar(&f.input, "input", "", "Path to the input image (png, jpeg, gif, bmp, tiff, webp, svg)")
	fs.StringVar(&f.output, "output", "output.nc", "Path to the output G-code file, - for stdout")
	fs.StringVar(&f.svgPath, "svg", "", "Optional path of the SVG drawing")
	fs.StringVar(&f.previewPath, "preview", "", "Optional path of the preview image")
	fs.StringVar(&f.configPath, "config", "", "Optional YAML config file")
	fs.BoolVar(&f.verbose, "v", false, "Verbose logging")

	fs.Float64Var(&f.width, "width", d.WidthMm, "Target width (mm)")
	fs.Float64Var(&f.ppmm, "ppmm", d.PxPerMm, "Resolution (pixels per mm)")
	fs.BoolVar(&f.dither, "dither", d.Dither, "Use Floyd-Steinberg dithering")
	fs.BoolVar(&f.invert, "invert", d.Invert, "Invert intensities")
	fs.StringVar(&f.mode, "mode", string(d.Mode), "Tool head: pen or laser")
	fs.StringVar(&f.power, "power", string(d.PowerMapping), "Laser power mapping: constant or grayscale")
	fs.IntVar(&f.maxPower, "max-power", d.MaxPower, "Maximum laser power (0-255)")
	fs.Float64Var(&f.feed, "feed", d.Feed, "Feed rate (mm/min)")
	fs.Float64Var(&f.zTravel, "z-travel", d.ZTravel, "Pen travel height (mm)")
	fs.Float64Var(&f.zPlunge, "z-plunge", d.ZPlunge, "Pen drawing height (mm)")
	fs.BoolVar(&f.optimize, "optimize", d.Optimize, "Order runs by nearest neighbour")
	fs.BoolVar(&f.showPath, "show-path", d.ShowPath, "Draw the toolpath on the preview")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.input == "" {
		return nil, errors.New("missing -input")
	}
	return f, nil
}

// config loads the config file, if any, and applies the flags that were set
// explicitly on top of it.
func (f *cliFlags) config() (config.Config, error) {
	c := config.Default()
	if f.configPath != "" {
		var err error
		if c, err = config.LoadFile(f.configPath); err != nil {
			return c, err
		}
	}

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "width":
			c.WidthMm = f.width
		case "ppmm":
			c.PxPerMm = f.ppmm
		case "dither":
			c.Dither = f.dither
		case "invert":
			c.Invert = f.invert
		case "mode":
			c.Mode = config.Mode(f.mode)
		case "power":
			c.PowerMapping = config.PowerMapping(f.power)
		case "max-power":
			c.MaxPower = f.maxPower
		case "feed":
			c.Feed = f.feed
		case "z-travel":
			c.ZTravel = f.zTravel
		case "z-plunge":
			c.ZPlunge = f.zPlunge
		case "optimize":
			c.Optimize = f.optimize
		case "show-path":
			c.ShowPath = f.showPath
		}
	})
	return c.Normalize(), nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, decorateText(err.Error(), errorMessage))
		os.Exit(2)
	}
	if f.verbose {
		pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := f.config()
	if err != nil {
		log.Fatalf(decorateText("failed to load config: %v", errorMessage), err)
	}

	start := time.Now()
	widthPx, _ := raster.Size(1, 1, cfg.WidthMm, cfg.PxPerMm)
	img, err := LoadImage(f.input, widthPx)
	if err != nil {
		log.Fatalf(decorateText("failed to load image: %v", errorMessage), err)
	}

	p := pipeline.New()
	p.Load(img)

	gcode, err := p.Generate(cfg)
	if err != nil {
		log.Fatalf(decorateText("failed to convert image to G-code: %v", errorMessage), err)
	}
	if err := writeOutput(f.output, []byte(gcode)); err != nil {
		log.Fatalf(decorateText("failed to write output file: %v", errorMessage), err)
	}
	status("G-code", f.output)

	if f.svgPath != "" {
		data, err := p.ExportDrawing(cfg)
		switch {
		case errors.Is(err, pipeline.ErrNoRuns):
			fmt.Fprintln(os.Stderr, decorateText("nothing to draw, skipping SVG export", errorMessage))
		case err != nil:
			log.Fatalf(decorateText("failed to export drawing: %v", errorMessage), err)
		default:
			if err := os.WriteFile(f.svgPath, data, 0644); err != nil {
				log.Fatalf(decorateText("failed to write drawing: %v", errorMessage), err)
			}
			status("SVG", f.svgPath)
		}
	}

	if f.previewPath != "" {
		img, err := p.RenderPreview(cfg)
		if err != nil {
			log.Fatalf(decorateText("failed to render preview: %v", errorMessage), err)
		}
		if err := imaging.Save(img, f.previewPath); err != nil {
			log.Fatalf(decorateText("failed to write preview: %v", errorMessage), err)
		}
		status("Preview", f.previewPath)
	}

	fmt.Fprintf(os.Stderr, "%s %s\n",
		decorateText("Done in", successMessage),
		formatTime(time.Since(start)))
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func status(what, path string) {
	if path == "-" {
		path = "stdout"
	}
	fmt.Fprintf(os.Stderr, "%s successfully written to %s\n", decorateText(what, statusMessage), path)
}
