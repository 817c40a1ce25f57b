// Package fold is the interactive folding engine. It keeps three runtime
// instantiations of one template in a scene: the prime object the user
// touches, a mirrored preview of the flap being folded and a preview of the
// facets that stay put. A drag on the prime object defines a crease; every
// frame the engine clamps the drag against obstacles, mirrors the preview
// about the crease and moves the shared clip planes that cut the prime
// object and the flap preview apart.
package fold

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/crease/pkg/drag"
	"github.com/chazu/crease/pkg/geom"
	"github.com/chazu/crease/pkg/graph"
	"github.com/chazu/crease/pkg/input"
	"github.com/chazu/crease/pkg/scene"
	"github.com/chazu/crease/pkg/template"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ActiveStrategy decides which facets move with the touched one.
type ActiveStrategy int

const (
	// ActiveSingle folds only the touched facet.
	ActiveSingle ActiveStrategy = iota
	// ActiveConnected folds every facet reachable through same-layer links.
	ActiveConnected
)

// ParseActiveStrategy maps the config spelling to a strategy.
func ParseActiveStrategy(s string) (ActiveStrategy, error) {
	switch s {
	case "", "single":
		return ActiveSingle, nil
	case "connected":
		return ActiveConnected, nil
	}
	return ActiveSingle, fmt.Errorf("fold: unknown active facet strategy %q", s)
}

// DefaultShrinkFactor pulls obstacle vertices toward their facet centroid so
// a crease may pass exactly through a shared corner.
const DefaultShrinkFactor = 0.9

// Options tunes the engine.
type Options struct {
	LayerThickness  float64
	ShrinkFactor    float64
	FaceBounded     bool
	MultitouchDelay time.Duration
	Active          ActiveStrategy
	Clock           drag.Clock
}

// DefaultOptions returns the options used when a host has no config.
func DefaultOptions() Options {
	return Options{
		LayerThickness:  graph.DefaultLayerThickness,
		ShrinkFactor:    DefaultShrinkFactor,
		MultitouchDelay: drag.DefaultMultitouchDelay,
	}
}

// Host is what the embedding application provides.
type Host struct {
	Camera   *scene.Camera
	Renderer scene.Renderer // optional
	Input    input.Source   // optional; events may also be fed to Handle
	Orbit    drag.Gate      // optional
}

// ErrNoCamera is returned by New when the host has no camera.
var ErrNoCamera = errors.New("fold: host camera is required")

// Engine owns the scene objects for one template.
type Engine struct {
	opts Options
	host Host

	tmpl  *template.Template
	scene *scene.Scene
	clip  scene.ClipPair

	prime *graph.Thing
	copy  *graph.Thing
	copy2 *graph.Thing

	overlay *scene.Group
	wall    *scene.Surface
	polys   []*geom.Polygon

	ctrl    *drag.Controller
	gesture *Gesture
	radius  float64
}

// New builds the prime object and both previews from t and starts listening
// to the host input.
func New(t *template.Template, host Host, opts Options) (*Engine, error) {
	if host.Camera == nil {
		return nil, ErrNoCamera
	}
	if opts.LayerThickness <= 0 {
		opts.LayerThickness = graph.DefaultLayerThickness
	}
	if opts.ShrinkFactor <= 0 || opts.ShrinkFactor > 1 {
		opts.ShrinkFactor = DefaultShrinkFactor
	}

	e := &Engine{
		opts:    opts,
		host:    host,
		tmpl:    t,
		scene:   scene.New(host.Camera),
		clip:    scene.NewClipPair(),
		overlay: scene.NewGroup("crease"),
	}
	gopts := graph.Options{LayerThickness: opts.LayerThickness}
	var err error
	if e.prime, err = graph.Build(t, gopts, e.clip, graph.Prime); err != nil {
		return nil, fmt.Errorf("fold: %w", err)
	}
	if e.copy, err = graph.Build(t, gopts, e.clip, graph.Copy); err != nil {
		return nil, fmt.Errorf("fold: %w", err)
	}
	if e.copy2, err = graph.Build(t, gopts, e.clip, graph.Copy2); err != nil {
		return nil, fmt.Errorf("fold: %w", err)
	}
	for _, f := range e.prime.Facets {
		p, err := geom.NewPolygon(f.Outline2)
		if err != nil {
			return nil, fmt.Errorf("fold: facet %v: %w", f.Ref, err)
		}
		e.polys = append(e.polys, p)
	}
	e.radius = e.prime.Group.Radius()
	e.clip.Disable(e.radius)

	e.scene.Add(e.prime.Group)
	e.scene.Add(e.copy.Group)
	e.scene.Add(e.copy2.Group)
	e.scene.Add(e.overlay)

	e.ctrl = drag.New(drag.Options{
		Camera:          host.Camera,
		Interactables:   e.prime.Surfaces,
		OnPress:         e.press,
		OnMove:          e.move,
		OnRelease:       e.release,
		FaceBounded:     opts.FaceBounded,
		MultitouchDelay: opts.MultitouchDelay,
		Orbit:           host.Orbit,
		Clock:           opts.Clock,
	})
	if host.Input != nil {
		e.ctrl.Start(host.Input)
	}
	return e, nil
}

// Handle feeds one pointer event to the drag controller directly.
func (e *Engine) Handle(ev input.PointerEvent) {
	e.ctrl.Handle(ev)
}

// Update advances one frame: a debounced touch press may fire, then the
// scene is drawn.
func (e *Engine) Update() error {
	e.ctrl.Poll()
	if e.host.Renderer == nil {
		return nil
	}
	return e.host.Renderer.Render(e.scene)
}

// Dispose ends any gesture, stops listening and empties the scene.
func (e *Engine) Dispose() {
	e.ctrl.Dispose()
	for _, g := range append([]*scene.Group(nil), e.scene.Groups()...) {
		e.scene.Remove(g)
	}
}

// Template returns the template the engine was built from.
func (e *Engine) Template() *template.Template { return e.tmpl }

// Scene holds the prime, copy and copy2 groups and the crease overlay.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Prime is the authoritative paper; it is the only Thing that takes input.
func (e *Engine) Prime() *graph.Thing { return e.prime }

// Copy previews the lifted flap, mirrored across the crease.
func (e *Engine) Copy() *graph.Thing { return e.copy }

// Copy2 previews the facets left lying flat.
func (e *Engine) Copy2() *graph.Thing { return e.copy2 }

// ClipPlanes is the plane pair that splits prime and copy along the crease.
func (e *Engine) ClipPlanes() scene.ClipPair { return e.clip }

// Controller is the drag controller bound to the host input.
func (e *Engine) Controller() *drag.Controller { return e.ctrl }

// Options returns the options after defaults were filled in.
func (e *Engine) Options() Options { return e.opts }

// Gesture returns the fold in progress, or nil.
func (e *Engine) Gesture() *Gesture { return e.gesture }

// CreaseWall returns the quad drawn between the crease and the lifted flap,
// or nil outside a gesture.
func (e *Engine) CreaseWall() *scene.Surface { return e.wall }

// ClipRadius is the radius past which a clip plane constant disables it.
func (e *Engine) ClipRadius() float64 { return e.radius }

// ActiveFacets returns the facets that fold together with facet i.
func (e *Engine) ActiveFacets(i int) map[int]bool {
	active := map[int]bool{i: true}
	if e.opts.Active != ActiveConnected {
		return active
	}
	for _, j := range e.prime.Graph.Reach(i, func(n graph.Neighbor) bool { return n.LayerOffset == 0 }) {
		active[j] = true
	}
	return active
}

// Obstacles collects what the drag is clamped against: the shrunken
// vertices of every inactive facet, and the boundary edges of active facets
// that are linked to inactive ones.
func (e *Engine) Obstacles(active map[int]bool) ([]v2.Vec, [][2]v2.Vec) {
	var points []v2.Vec
	var edges [][2]v2.Vec
	for _, f := range e.prime.Facets {
		if active[f.Index] {
			for _, n := range e.prime.Graph.Neighbors(f.Index) {
				if active[n.Facet] {
					continue
				}
				a, b := geom.Edge(f.Outline2, n.Edge)
				edges = append(edges, [2]v2.Vec{a, b})
			}
			continue
		}
		points = append(points, geom.Shrink(f.Outline2, e.opts.ShrinkFactor)...)
	}
	return points, edges
}

func (e *Engine) press(c *drag.Controller) {
	f, ok := e.prime.FacetOf(c.TouchSurface())
	if !ok {
		return
	}
	// The prime group never moves, so its local frame is world space.
	n := c.TouchNormal()
	sign := -1.0
	if f.Normal.Dot(n) > 0 {
		sign = 1
	}
	from2, edge := geom.ClosestEdge(f.Outline2, geom.XY(c.TouchPoint()))
	from := geom.Lift(from2, f.Z())

	active := e.ActiveFacets(f.Index)
	points, edges := e.Obstacles(active)
	lo, hi := e.prime.Graph.LayerRange()

	e.gesture = &Gesture{
		InitialFacet:   f.Index,
		InitialEdge:    edge,
		Sign:           sign,
		FacetNormal:    f.Normal,
		TouchNormal:    n,
		From:           from,
		Mid:            from,
		To:             from,
		Active:         active,
		PointObstacles: points,
		EdgeObstacles:  edges,
		FoldHeight:     foldHeight(f.Ref.Layer, lo, hi, n.Z > 0),
	}

	e.copy.Group.Matrix = sdf.Identity3d()
	e.copy.ShowPartition(active, true)
	e.copy2.ShowPartition(active, false)
	e.copy.SetVisible(true)
	e.copy2.SetVisible(true)
}

func (e *Engine) move(c *drag.Controller) {
	g := e.gesture
	if g == nil {
		return
	}
	f := e.prime.Facets[g.InitialFacet]
	from := geom.XY(g.From)
	to, ok := clampTarget(from, geom.XY(c.TouchPoint()), g.PointObstacles, g.EdgeObstacles, f.Outline2)
	if !ok {
		return
	}
	g.To = geom.Lift(to, f.Z())
	g.Mid = g.From.Add(g.To).MulScalar(0.5)

	d := to.Sub(from)
	if d.Dot(d) < degenerate {
		return
	}
	dir2 := d.Normalize()
	a, b, ok := e.polys[g.InitialFacet].Crossing(geom.XY(g.Mid), geom.Perp(dir2))
	if !ok {
		return
	}
	g.Crease = [2]v3.Vec{geom.Lift(a, f.Z()), geom.Lift(b, f.Z())}

	dir := geom.Lift(dir2, 0)
	lift := e.opts.LayerThickness * float64(g.FoldHeight)
	e.copy.Group.Matrix = mirrorMatrix(g.Mid, dir, g.FacetNormal, g.Sign, lift)
	e.clip.Set(geom.PlaneFromPoint(dir, g.Mid))
	e.setWall(wallQuad(g.Crease, g.Lift(e.opts.LayerThickness)))
	g.Valid = true
}

func (e *Engine) release(*drag.Controller) {
	e.copy.SetVisible(false)
	e.copy2.SetVisible(false)
	e.copy.Group.Matrix = sdf.Identity3d()
	e.clip.Disable(e.radius)
	e.setWall(nil)
	e.gesture = nil
}

func (e *Engine) setWall(quad []v3.Vec) {
	if e.wall != nil {
		e.overlay.RemoveSurface(e.wall)
		e.wall = nil
	}
	if len(quad) == 0 {
		return
	}
	e.wall = scene.NewSurface("wall", scene.KindCrease, 0, quad, geom.PolygonNormal(quad))
	e.overlay.AddSurface(e.wall)
}
