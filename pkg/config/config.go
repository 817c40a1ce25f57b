// Package config loads viewer settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/chazu/crease/pkg/drag"
	"github.com/chazu/crease/pkg/fold"
	"github.com/chazu/crease/pkg/graph"
	"github.com/chazu/crease/pkg/scene"
	"github.com/chazu/crease/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultLayerThickness is the distance between stacked layers.
	DefaultLayerThickness = graph.DefaultLayerThickness
	// DefaultShrinkFactor pulls obstacle vertices toward their facet centroid.
	DefaultShrinkFactor = fold.DefaultShrinkFactor
	// DefaultMultitouchDelayMS is how long a touch waits for a second finger.
	DefaultMultitouchDelayMS = int(drag.DefaultMultitouchDelay / time.Millisecond)
	// DefaultActiveFacets folds only the touched facet.
	DefaultActiveFacets = "single"

	DefaultFOV       = 45.0
	DefaultDistance  = 30.0
	DefaultElevation = 90.0

	DefaultWidth  = 960
	DefaultHeight = 640

	// DefaultSlabRatio is the exported slab thickness as a fraction of the
	// layer spacing.
	DefaultSlabRatio = tessellate.DefaultSlabRatio
	// DefaultMinSlab keeps exported slabs thick enough to mesh and print.
	DefaultMinSlab = 0.25
)

// Config holds every viewer tunable.
type Config struct {
	LayerThickness    float64 `toml:"layer_thickness"`
	ShrinkFactor      float64 `toml:"shrink_factor"`
	MultitouchDelayMS int     `toml:"multitouch_delay_ms"`
	FaceBounded       bool    `toml:"face_bounded"`
	ActiveFacets      string  `toml:"active_facets"`
	Template          string  `toml:"template"`

	Camera CameraConfig `toml:"camera"`
	Window WindowConfig `toml:"window"`
	Export ExportConfig `toml:"export"`
}

// CameraConfig places the initial camera. Elevation is measured from the
// stack plane in degrees; 90 looks straight down.
type CameraConfig struct {
	FOV       float64 `toml:"fov"`
	Distance  float64 `toml:"distance"`
	Elevation float64 `toml:"elevation"`
}

// WindowConfig sizes the host window.
type WindowConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// ExportConfig tunes solid export.
type ExportConfig struct {
	SlabRatio float64 `toml:"slab_ratio"`
	MinSlab   float64 `toml:"min_slab"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LayerThickness:    DefaultLayerThickness,
		ShrinkFactor:      DefaultShrinkFactor,
		MultitouchDelayMS: DefaultMultitouchDelayMS,
		ActiveFacets:      DefaultActiveFacets,
		Camera: CameraConfig{
			FOV:       DefaultFOV,
			Distance:  DefaultDistance,
			Elevation: DefaultElevation,
		},
		Window: WindowConfig{Width: DefaultWidth, Height: DefaultHeight},
		Export: ExportConfig{SlabRatio: DefaultSlabRatio, MinSlab: DefaultMinSlab},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var problems []string

	if c.LayerThickness <= 0 {
		problems = append(problems, fmt.Sprintf("layer_thickness must be positive, got %g", c.LayerThickness))
	}
	if c.ShrinkFactor <= 0 || c.ShrinkFactor > 1 {
		problems = append(problems, fmt.Sprintf("shrink_factor must be in (0, 1], got %g", c.ShrinkFactor))
	}
	if c.MultitouchDelayMS < 0 {
		problems = append(problems, fmt.Sprintf("multitouch_delay_ms must not be negative, got %d", c.MultitouchDelayMS))
	}
	if _, err := fold.ParseActiveStrategy(c.ActiveFacets); err != nil {
		problems = append(problems, fmt.Sprintf("active_facets must be \"single\" or \"connected\", got %q", c.ActiveFacets))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		problems = append(problems, fmt.Sprintf("camera.fov must be in (0, 180), got %g", c.Camera.FOV))
	}
	if c.Camera.Distance <= 0 {
		problems = append(problems, fmt.Sprintf("camera.distance must be positive, got %g", c.Camera.Distance))
	}
	if c.Camera.Elevation <= 0 || c.Camera.Elevation > 90 {
		problems = append(problems, fmt.Sprintf("camera.elevation must be in (0, 90], got %g", c.Camera.Elevation))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, fmt.Sprintf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Export.SlabRatio <= 0 || c.Export.SlabRatio > 1 {
		problems = append(problems, fmt.Sprintf("export.slab_ratio must be in (0, 1], got %g", c.Export.SlabRatio))
	}
	if c.Export.MinSlab < 0 {
		problems = append(problems, fmt.Sprintf("export.min_slab must not be negative, got %g", c.Export.MinSlab))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// MultitouchDelay returns the debounce as a duration.
func (c *Config) MultitouchDelay() time.Duration {
	return time.Duration(c.MultitouchDelayMS) * time.Millisecond
}

// FoldOptions converts the config into engine options.
func (c *Config) FoldOptions() fold.Options {
	active, _ := fold.ParseActiveStrategy(c.ActiveFacets)
	return fold.Options{
		LayerThickness:  c.LayerThickness,
		ShrinkFactor:    c.ShrinkFactor,
		FaceBounded:     c.FaceBounded,
		MultitouchDelay: c.MultitouchDelay(),
		Active:          active,
	}
}

// TessellateOptions converts the config into export options.
func (c *Config) TessellateOptions() tessellate.Options {
	return tessellate.Options{
		LayerThickness: c.LayerThickness,
		SlabRatio:      c.Export.SlabRatio,
		MinSlab:        c.Export.MinSlab,
	}
}

// ApplyCamera sets the lens and places cam on the -Y side of the origin at
// the configured distance and elevation, looking at the origin with +Y up.
func (c *Config) ApplyCamera(cam *scene.Camera) {
	cam.FOV = c.Camera.FOV
	if c.Window.Height > 0 {
		cam.Aspect = float64(c.Window.Width) / float64(c.Window.Height)
	}
	el := c.Camera.Elevation * math.Pi / 180
	cam.Position = v3.Vec{Y: -c.Camera.Distance * math.Cos(el), Z: c.Camera.Distance * math.Sin(el)}
	cam.LookAt(v3.Vec{}, v3.Vec{Y: 1})
}
