package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/chazu/crease/pkg/config"
	"github.com/chazu/crease/pkg/fold"
	"github.com/chazu/crease/pkg/input"
	"github.com/chazu/crease/pkg/kernel"
	"github.com/chazu/crease/pkg/kernel/sdfx"
	"github.com/chazu/crease/pkg/render"
	"github.com/chazu/crease/pkg/scene"
	"github.com/chazu/crease/pkg/script"
	"github.com/chazu/crease/pkg/template"
	"github.com/chazu/crease/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Wails may call bindings from several goroutines, so every binding holds mu.
type App struct {
	ctx context.Context
	mu  sync.Mutex

	cfg     *config.Config
	script  *script.Engine
	kernel  kernel.Kernel
	camera  *scene.Camera
	orbit   *scene.OrbitControls
	events  *input.Dispatcher
	painter *render.Painter
	fold    *fold.Engine
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// LoadResult reports the outcome of loading template source.
type LoadResult struct {
	Name     string          `json:"name"`
	Facets   int             `json:"facets"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// ExportResult carries one slab mesh per facet of the current template.
type ExportResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// PointerData is a pointer event in window pixels.
type PointerData struct {
	Kind    string  `json:"kind"` // down, move, up, cancel
	Pointer int     `json:"pointer"`
	Touch   bool    `json:"touch"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Touches int     `json:"touches"`
}

// NewApp creates an App showing the configured template, or the letter
// sample when none is configured or it fails to load.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{
		cfg:     cfg,
		script:  script.NewEngine(),
		kernel:  sdfx.New(),
		camera:  scene.NewCamera(),
		events:  input.NewDispatcher(),
		painter: render.NewPainter(cfg.Window.Width, cfg.Window.Height),
	}
	cfg.ApplyCamera(a.camera)
	a.orbit = scene.NewOrbitControls(a.camera)
	a.events.Subscribe(a.orbit.Handle)

	if cfg.Template != "" {
		src, err := os.ReadFile(cfg.Template)
		if err != nil {
			log.Printf("Template load error: %v", err)
		} else if res := a.Load(string(src)); len(res.Errors) > 0 {
			log.Printf("Template %s: %s", cfg.Template, res.Errors[0].Message)
		}
	}
	if a.fold == nil {
		if err := a.show(template.Letter()); err != nil {
			log.Printf("Sample load error: %v", err)
		}
	}
	return a
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown releases the fold engine when the window closes.
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fold != nil {
		a.fold.Dispose()
		a.fold = nil
	}
}

// Load evaluates template source and, on success, replaces the folded
// object. Empty source leaves the current object alone.
func (a *App) Load(source string) LoadResult {
	result := LoadResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a template.
	t, evalErrs, err := a.script.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the frontend format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	if t == nil {
		return result
	}

	// Step 3: Advisory findings travel with a successful load.
	for _, w := range template.Validate(t).Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Error()})
	}

	// Step 4: Rebuild the scene.
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.show(t); err != nil {
		log.Printf("Fold engine error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	result.Name = t.Name
	result.Facets = t.FacetCount()
	return result
}

// show replaces the fold engine. Callers other than NewApp hold mu.
func (a *App) show(t *template.Template) error {
	e, err := fold.New(t, fold.Host{
		Camera:   a.camera,
		Renderer: a.painter,
		Input:    a.events,
		Orbit:    a.orbit,
	}, a.cfg.FoldOptions())
	if err != nil {
		return err
	}
	if a.fold != nil {
		a.fold.Dispose()
	}
	a.fold = e
	a.orbit.SetEnabled(true)
	return nil
}

// Pointer forwards one pointer or touch event.
func (a *App) Pointer(p PointerData) error {
	kind, err := parseKind(p.Kind)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	x, y := input.PixelToNDC(p.X, p.Y, a.painter.Width, a.painter.Height)
	a.events.Dispatch(input.PointerEvent{
		Kind:    kind,
		Pointer: p.Pointer,
		Touch:   p.Touch,
		X:       x,
		Y:       y,
		Touches: p.Touches,
	})
	return nil
}

func parseKind(s string) (input.Kind, error) {
	switch s {
	case "down":
		return input.Down, nil
	case "move":
		return input.Move, nil
	case "up":
		return input.Up, nil
	case "cancel":
		return input.Cancel, nil
	}
	return 0, fmt.Errorf("unknown pointer event kind %q", s)
}

// Frame advances the engine one frame and returns what to draw.
func (a *App) Frame() *render.DrawList {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fold == nil {
		return a.painter.List()
	}
	if err := a.fold.Update(); err != nil {
		log.Printf("Frame error: %v", err)
	}
	return a.painter.List()
}

// Resize matches the viewport to the canvas.
func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.painter.Resize(w, h)
	a.camera.Aspect = float64(w) / float64(h)
}

// ResetView restores the configured camera pose.
func (a *App) ResetView() {
	a.mu.Lock()
	defer a.mu.Unlock()
	aspect := a.camera.Aspect
	a.cfg.ApplyCamera(a.camera)
	a.camera.Aspect = aspect
}

// Export tessellates the current template into one slab mesh per facet.
func (a *App) Export() ExportResult {
	result := ExportResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}
	a.mu.Lock()
	var t *template.Template
	if a.fold != nil {
		t = a.fold.Template()
	}
	a.mu.Unlock()
	if t == nil {
		return result
	}

	meshes, err := tessellate.Tessellate(t, a.kernel, a.cfg.TessellateOptions())
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    color,
		})
	}
	return result
}
