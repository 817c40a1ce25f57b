// Command foldview is a desktop and touch viewer for folding templates.
//
// Drag on the paper to fold it. Drag on empty space to orbit the camera,
// scroll or pinch to zoom and press R to reset the view.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/chazu/crease/pkg/config"
	"github.com/chazu/crease/pkg/fold"
	"github.com/chazu/crease/pkg/input"
	"github.com/chazu/crease/pkg/render"
	"github.com/chazu/crease/pkg/scene"
	"github.com/chazu/crease/pkg/script"
	"github.com/chazu/crease/pkg/template"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var background = color.RGBA{0x26, 0x26, 0x2A, 0xFF}

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

type game struct {
	cfg     *config.Config
	cam     *scene.Camera
	events  *input.Dispatcher
	tracker *input.Tracker
	painter *render.Painter
	engine  *fold.Engine

	width, height int
	touchIDs      []ebiten.TouchID
	samples       []input.Sample
	vertices      []ebiten.Vertex
	indices       []uint16
}

func newGame(cfg *config.Config, t *template.Template) (*game, error) {
	g := &game{
		cfg:     cfg,
		cam:     scene.NewCamera(),
		events:  input.NewDispatcher(),
		tracker: input.NewTracker(),
		painter: render.NewPainter(cfg.Window.Width, cfg.Window.Height),
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
	}
	cfg.ApplyCamera(g.cam)
	orbit := scene.NewOrbitControls(g.cam)
	g.events.Subscribe(orbit.Handle)

	e, err := fold.New(t, fold.Host{
		Camera:   g.cam,
		Renderer: g.painter,
		Input:    g.events,
		Orbit:    orbit,
	}, cfg.FoldOptions())
	if err != nil {
		return nil, err
	}
	g.engine = e
	return g, nil
}

func (g *game) Update() error {
	g.samples = g.samples[:0]

	mx, my := ebiten.CursorPosition()
	x, y := input.PixelToNDC(float64(mx), float64(my), g.width, g.height)
	g.samples = append(g.samples, input.Sample{
		Pointer: input.MousePointer,
		Down:    ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		X:       x,
		Y:       y,
	})

	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		x, y := input.PixelToNDC(float64(tx), float64(ty), g.width, g.height)
		g.samples = append(g.samples, input.Sample{
			Pointer: int(id) + 1,
			Touch:   true,
			Down:    true,
			X:       x,
			Y:       y,
		})
	}
	g.tracker.Update(g.samples, g.events.Dispatch)

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.Zoom(-wy * 0.1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.tracker.Reset(g.events.Dispatch)
		g.cfg.ApplyCamera(g.cam)
		g.cam.Aspect = float64(g.width) / float64(g.height)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.engine.Dispose()
		return ebiten.Termination
	}

	return g.engine.Update()
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	for _, it := range g.painter.List().Items {
		if len(it.Points) < 2 {
			continue
		}
		var path vector.Path
		path.MoveTo(it.Points[0].X, it.Points[0].Y)
		for _, p := range it.Points[1:] {
			path.LineTo(p.X, p.Y)
		}
		if it.Closed {
			path.Close()
		}

		g.vertices, g.indices = g.vertices[:0], g.indices[:0]
		if it.Fill {
			g.vertices, g.indices = path.AppendVerticesAndIndicesForFilling(g.vertices, g.indices)
		} else {
			g.vertices, g.indices = path.AppendVerticesAndIndicesForStroke(g.vertices, g.indices, &vector.StrokeOptions{
				Width:    1,
				LineJoin: vector.LineJoinRound,
			})
		}
		c := it.Color
		for i := range g.vertices {
			g.vertices[i].SrcX = 1
			g.vertices[i].SrcY = 1
			g.vertices[i].ColorR = float32(c.R) / 0xff
			g.vertices[i].ColorG = float32(c.G) / 0xff
			g.vertices[i].ColorB = float32(c.B) / 0xff
			g.vertices[i].ColorA = float32(c.A) / 0xff
		}
		screen.DrawTriangles(g.vertices, g.indices, whiteSubImage, &ebiten.DrawTrianglesOptions{
			AntiAlias: true,
		})
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != g.width || outsideHeight != g.height) {
		g.width, g.height = outsideWidth, outsideHeight
		g.painter.Resize(outsideWidth, outsideHeight)
		g.cam.Aspect = float64(outsideWidth) / float64(outsideHeight)
	}
	return g.width, g.height
}

// loadTemplate evaluates the .fold file at path, or returns the letter
// sample when path is empty.
func loadTemplate(path string) (*template.Template, error) {
	if path == "" {
		return template.Letter(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, evalErrs, err := script.NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("%s: %v", path, e)
		}
		return nil, fmt.Errorf("%s: %d errors", path, len(evalErrs))
	}
	if t == nil {
		return nil, fmt.Errorf("%s: no template", path)
	}
	return t, nil
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	templatePath := flag.String("template", "", "path to a .fold file (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *templatePath != "" {
		cfg.Template = *templatePath
	}

	t, err := loadTemplate(cfg.Template)
	if err != nil {
		log.Printf("Template load error: %v", err)
		t = template.Letter()
	}

	g, err := newGame(cfg, t)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle("foldview: " + t.Name)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
