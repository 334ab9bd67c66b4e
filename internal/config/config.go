// Package config holds the converter settings: documented defaults, lenient
// parsing from YAML files and string forms, and one-time normalization.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects the tool head.
type Mode string

const (
	Pen   Mode = "pen"
	Laser Mode = "laser"
)

// PowerMapping selects how laser power is derived while marking.
type PowerMapping string

const (
	ConstantPower  PowerMapping = "constant"
	GrayscalePower PowerMapping = "grayscale"
)

// Defaults used whenever a value is missing or unusable.
const (
	DefaultWidthMm  = 100.0
	DefaultPxPerMm  = 5.0
	DefaultMaxPower = 255
	DefaultFeed     = 1200.0
	DefaultZTravel  = 5.0
	DefaultZPlunge  = -1.0
)

// Config represents the converter configuration.
type Config struct {
	// WidthMm is the physical width of the output in millimetres.
	WidthMm float64 `yaml:"widthMm"`

	// PxPerMm is the raster resolution the source image is resampled to.
	PxPerMm float64 `yaml:"pxPerMm"`

	// Dither enables Floyd–Steinberg error diffusion instead of thresholding.
	Dither bool `yaml:"dither"`

	// Invert flips intensities before binarization.
	Invert bool `yaml:"invert"`

	Mode         Mode         `yaml:"mode"`
	PowerMapping PowerMapping `yaml:"powerMapping"`

	// MaxPower is the laser power (spindle S word) for a black pixel, 0–255.
	MaxPower int `yaml:"maxPower"`

	// Feed is the feed rate of drawing moves.
	Feed float64 `yaml:"feed"`

	// ZTravel and ZPlunge are the pen heights for transit and marking.
	ZTravel float64 `yaml:"zTravel"`
	ZPlunge float64 `yaml:"zPlunge"`

	// Optimize enables greedy path ordering.
	Optimize bool `yaml:"optimize"`

	// ShowPath draws the toolpath overlay on preview renders.
	ShowPath bool `yaml:"showPath"`
}

// Default returns a configuration with default values.
func Default() Config {
	return Config{
		WidthMm:      DefaultWidthMm,
		PxPerMm:      DefaultPxPerMm,
		Dither:       true,
		Mode:         Pen,
		PowerMapping: ConstantPower,
		MaxPower:     DefaultMaxPower,
		Feed:         DefaultFeed,
		ZTravel:      DefaultZTravel,
		ZPlunge:      DefaultZPlunge,
		Optimize:     true,
		ShowPath:     true,
	}
}

// PixelSize returns the size of one raster pixel in millimetres.
func (c Config) PixelSize() float64 {
	return 1 / c.PxPerMm
}

// GrayscaleLaser reports whether laser power follows pixel intensity.
func (c Config) GrayscaleLaser() bool {
	return c.Mode == Laser && c.PowerMapping == GrayscalePower
}

// Normalize replaces unusable values with their defaults and clamps MaxPower.
// Leniency is intended: a malformed setting never aborts the pipeline.
func (c Config) Normalize() Config {
	d := Default()
	if !positive(c.WidthMm) {
		c.WidthMm = d.WidthMm
	}
	if !positive(c.PxPerMm) {
		c.PxPerMm = d.PxPerMm
	}
	if !positive(c.Feed) {
		c.Feed = d.Feed
	}
	if !finite(c.ZTravel) {
		c.ZTravel = d.ZTravel
	}
	if !finite(c.ZPlunge) {
		c.ZPlunge = d.ZPlunge
	}

	switch Mode(strings.ToLower(string(c.Mode))) {
	case Laser:
		c.Mode = Laser
	default:
		c.Mode = Pen
	}
	switch PowerMapping(strings.ToLower(string(c.PowerMapping))) {
	case GrayscalePower:
		c.PowerMapping = GrayscalePower
	default:
		c.PowerMapping = ConstantPower
	}

	c.MaxPower = min(max(c.MaxPower, 0), 255)
	return c
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

// FromForm builds a configuration from string values keyed by the yaml
// field names. Missing or non-numeric entries keep their defaults.
func FromForm(form map[string]string) Config {
	c := Default()
	setFloat(form, "widthMm", &c.WidthMm)
	setFloat(form, "pxPerMm", &c.PxPerMm)
	setFloat(form, "feed", &c.Feed)
	setFloat(form, "zTravel", &c.ZTravel)
	setFloat(form, "zPlunge", &c.ZPlunge)
	if v, ok := form["maxPower"]; ok {
		if f, err := parseNumber(v); err == nil {
			c.MaxPower = int(math.Round(f))
		}
	}
	setBool(form, "dither", &c.Dither)
	setBool(form, "invert", &c.Invert)
	setBool(form, "optimize", &c.Optimize)
	setBool(form, "showPath", &c.ShowPath)
	if v, ok := form["mode"]; ok {
		c.Mode = Mode(strings.TrimSpace(v))
	}
	if v, ok := form["powerMapping"]; ok {
		c.PowerMapping = PowerMapping(strings.TrimSpace(v))
	}
	return c.Normalize()
}

func setFloat(form map[string]string, key string, dst *float64) {
	v, ok := form[key]
	if !ok {
		return
	}
	if f, err := parseNumber(v); err == nil {
		*dst = f
	}
}

func setBool(form map[string]string, key string, dst *bool) {
	v, ok := form[key]
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes", "checked":
		*dst = true
	case "0", "false", "off", "no", "":
		*dst = false
	}
}

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseNumber reads the longest leading decimal number of s, so "12mm"
// is 12. Text without a leading number is an error.
func parseNumber(s string) (float64, error) {
	m := numberPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, err
	}
	if !finite(f) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

// UnmarshalYAML decodes the configuration on top of the defaults. Scalar
// values that do not parse as the field's type are ignored, leaving the
// default in place.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("config: expected a mapping, got %s", value.Tag)
	}
	form := make(map[string]string, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			continue
		}
		if v.Tag == "!!null" {
			continue
		}
		form[k.Value] = v.Value
	}
	*c = FromForm(form)
	return nil
}

// LoadFile loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data.
func Parse(data []byte) (Config, error) {
	c := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return c, nil
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("error parsing config file: %w", err)
	}
	return c, nil
}

// Save writes the configuration to a YAML file.
func Save(c Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
