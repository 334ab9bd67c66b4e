package config

import (
	"math"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.WidthMm != 100 || c.PxPerMm != 5 || c.Feed != 1200 {
		t.Errorf("unexpected numeric defaults: %+v", c)
	}
	if c.ZTravel != 5 || c.ZPlunge != -1 {
		t.Errorf("unexpected z defaults: travel %v plunge %v", c.ZTravel, c.ZPlunge)
	}
	if c.Mode != Pen || c.PowerMapping != ConstantPower || c.MaxPower != 255 {
		t.Errorf("unexpected tool defaults: %+v", c)
	}
	if got := c.PixelSize(); got != 0.2 {
		t.Errorf("PixelSize() = %v, want 0.2", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    Config
		check func(Config) bool
	}{
		{"zero width", Config{WidthMm: 0}, func(c Config) bool { return c.WidthMm == DefaultWidthMm }},
		{"negative resolution", Config{PxPerMm: -3}, func(c Config) bool { return c.PxPerMm == DefaultPxPerMm }},
		{"nan feed", Config{Feed: math.NaN()}, func(c Config) bool { return c.Feed == DefaultFeed }},
		{"inf travel", Config{ZTravel: math.Inf(1)}, func(c Config) bool { return c.ZTravel == DefaultZTravel }},
		{"zero plunge kept", Config{ZPlunge: 0}, func(c Config) bool { return c.ZPlunge == 0 }},
		{"unknown mode", Config{Mode: "router"}, func(c Config) bool { return c.Mode == Pen }},
		{"upper case laser", Config{Mode: "LASER"}, func(c Config) bool { return c.Mode == Laser }},
		{"unknown mapping", Config{PowerMapping: "dynamic"}, func(c Config) bool { return c.PowerMapping == ConstantPower }},
		{"power above range", Config{MaxPower: 1000}, func(c Config) bool { return c.MaxPower == 255 }},
		{"power below range", Config{MaxPower: -4}, func(c Config) bool { return c.MaxPower == 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); !tt.check(got) {
				t.Errorf("Normalize() = %+v", got)
			}
		})
	}
}

func TestFromForm(t *testing.T) {
	c := FromForm(map[string]string{
		"widthMm":      "50",
		"pxPerMm":      "abc",
		"feed":         "",
		"zPlunge":      "-0.5",
		"maxPower":     "127.6",
		"mode":         "laser",
		"powerMapping": "grayscale",
		"dither":       "off",
		"invert":       "on",
		"optimize":     "false",
	})
	if c.WidthMm != 50 {
		t.Errorf("WidthMm = %v, want 50", c.WidthMm)
	}
	if c.PxPerMm != DefaultPxPerMm {
		t.Errorf("non-numeric PxPerMm = %v, want default", c.PxPerMm)
	}
	if c.Feed != DefaultFeed {
		t.Errorf("empty Feed = %v, want default", c.Feed)
	}
	if c.ZPlunge != -0.5 || c.ZTravel != DefaultZTravel {
		t.Errorf("z values = %v/%v", c.ZTravel, c.ZPlunge)
	}
	if c.MaxPower != 128 {
		t.Errorf("MaxPower = %d, want 128", c.MaxPower)
	}
	if !c.GrayscaleLaser() {
		t.Errorf("expected grayscale laser, got %s/%s", c.Mode, c.PowerMapping)
	}
	if c.Dither || !c.Invert || c.Optimize || !c.ShowPath {
		t.Errorf("unexpected flags: %+v", c)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{" 12mm", 12, true},
		{"-0.5 mm", -0.5, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"1e2x", 100, true},
		{"3e", 3, true},
		{"+7", 7, true},
		{"mm12", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"1e999", 0, false},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseNumber(%q) = %v, %v; want %v, ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}

	c := FromForm(map[string]string{"widthMm": "120mm", "feed": "900 mm/min"})
	if c.WidthMm != 120 || c.Feed != 900 {
		t.Errorf("FromForm with units = %v/%v, want 120/900", c.WidthMm, c.Feed)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
widthMm: 80
pxPerMm: "not a number"
feed: 900
mode: laser
maxPower: 200
optimize: no
zTravel:
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.WidthMm != 80 || c.Feed != 900 || c.MaxPower != 200 {
		t.Errorf("numeric fields not decoded: %+v", c)
	}
	if c.PxPerMm != DefaultPxPerMm || c.ZTravel != DefaultZTravel {
		t.Errorf("fallbacks not applied: %+v", c)
	}
	if c.Mode != Laser || c.Optimize {
		t.Errorf("mode/optimize = %s/%v", c.Mode, c.Optimize)
	}
	if !c.Dither {
		t.Errorf("missing dither should keep default true")
	}
}

func TestParseRejectsNonMapping(t *testing.T) {
	if _, err := Parse([]byte("- 1\n- 2\n")); err == nil {
		t.Fatal("expected an error for a sequence document")
	}
}

func TestLoadFileMissing(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c != Default() {
		t.Errorf("LoadFile on a missing file = %+v, want defaults", c)
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "gcode.yaml")
	want := Default()
	want.Mode = Laser
	want.PowerMapping = GrayscalePower
	want.MaxPower = 180
	want.Invert = true
	want.ZPlunge = -2.5

	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got != want {
		t.Errorf("LoadFile = %+v, want %+v", got, want)
	}
}
