// Package render flattens a scene into a 2D draw list. Every visible surface
// is clipped by its clip set, projected through the scene camera and sorted
// far to near, so a host only has to fill and stroke polygons in order.
package render

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/chazu/crease/pkg/input"
	"github.com/chazu/crease/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point is a pixel position.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Item is one filled polygon or stroked polyline.
type Item struct {
	Name   string     `json:"name"`
	Kind   scene.Kind `json:"kind"`
	Fill   bool       `json:"fill"`
	Closed bool       `json:"closed"`
	Points []Point    `json:"points"`
	Depth  float64    `json:"depth"`
	Color  color.RGBA `json:"-"`
	CSS    string     `json:"color"`
}

// DrawList is one frame, back to front.
type DrawList struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Items  []Item `json:"items"`
}

// Palette colours items by kind and facing.
type Palette struct {
	Front     color.RGBA
	Back      color.RGBA
	Connector color.RGBA
	Crease    color.RGBA
	Outline   color.RGBA
}

// DefaultPalette is paper white on the front and a warm grey on the back.
var DefaultPalette = Palette{
	Front:     color.RGBA{0xF5, 0xF2, 0xEA, 0xFF},
	Back:      color.RGBA{0xC9, 0xBF, 0xAE, 0xFF},
	Connector: color.RGBA{0x8C, 0x84, 0x78, 0xFF},
	Crease:    color.RGBA{0x4A, 0x90, 0xD9, 0x80},
	Outline:   color.RGBA{0x33, 0x33, 0x33, 0xFF},
}

// outlineBias pulls an outline toward the camera so it draws over its own
// surface.
const outlineBias = 1e-6

// Painter implements scene.Renderer by keeping the latest draw list.
type Painter struct {
	Width   int
	Height  int
	Palette Palette

	last *DrawList
}

var _ scene.Renderer = (*Painter)(nil)

// NewPainter returns a painter for a viewport of w by h pixels.
func NewPainter(w, h int) *Painter {
	return &Painter{Width: w, Height: h, Palette: DefaultPalette}
}

// Resize changes the viewport.
func (p *Painter) Resize(w, h int) {
	p.Width, p.Height = w, h
}

// Render paints sc and keeps the result for List.
func (p *Painter) Render(sc *scene.Scene) error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("render: invalid viewport %dx%d", p.Width, p.Height)
	}
	p.last = Paint(sc, p.Width, p.Height, p.Palette)
	return nil
}

// List returns the last painted frame, or an empty list.
func (p *Painter) List() *DrawList {
	if p.last == nil {
		return &DrawList{Width: p.Width, Height: p.Height}
	}
	return p.last
}

// Paint builds the draw list for sc.
func Paint(sc *scene.Scene, w, h int, pal Palette) *DrawList {
	dl := &DrawList{Width: w, Height: h}
	cam := sc.Camera
	if cam == nil {
		return dl
	}
	for _, g := range sc.Groups() {
		if !g.Visible {
			continue
		}
		for _, s := range g.Surfaces {
			if !s.Shown() {
				continue
			}
			pts := s.ClippedWorldPoints()
			if len(pts) < 3 {
				continue
			}
			it, ok := project(cam, pts, w, h)
			if !ok {
				continue
			}
			it.Name, it.Kind, it.Fill, it.Closed = s.Name, s.Kind, true, true
			it.Color = pal.surface(s, cam.Position.Sub(pts[0]))
			dl.Items = append(dl.Items, it)
		}
		for _, l := range g.Lines {
			if !l.Shown() {
				continue
			}
			for _, run := range l.ClippedWorldRuns() {
				if len(run) < 2 {
					continue
				}
				it, ok := project(cam, run, w, h)
				if !ok {
					continue
				}
				it.Name, it.Kind = l.Name, scene.KindFacet
				it.Depth -= outlineBias
				it.Color = pal.Outline
				dl.Items = append(dl.Items, it)
			}
		}
	}
	sort.SliceStable(dl.Items, func(i, j int) bool {
		return dl.Items[i].Depth > dl.Items[j].Depth
	})
	for i := range dl.Items {
		dl.Items[i].CSS = CSS(dl.Items[i].Color)
	}
	return dl
}

// project maps world points to pixels. Items with a point behind the camera
// are dropped.
func project(cam *scene.Camera, pts []v3.Vec, w, h int) (Item, bool) {
	it := Item{Points: make([]Point, len(pts))}
	depth := 0.0
	for i, p := range pts {
		x, y, d, ok := cam.Project(p)
		if !ok {
			return Item{}, false
		}
		px, py := input.NDCToPixel(x, y, w, h)
		it.Points[i] = Point{X: float32(px), Y: float32(py)}
		depth += d
	}
	it.Depth = depth / float64(len(pts))
	return it, true
}

func (pal Palette) surface(s *scene.Surface, toEye v3.Vec) color.RGBA {
	switch s.Kind {
	case scene.KindConnector:
		return pal.Connector
	case scene.KindCrease:
		return pal.Crease
	}
	if s.WorldNormal().Dot(toEye) >= 0 {
		return pal.Front
	}
	return pal.Back
}

// CSS formats c as a #rrggbbaa colour.
func CSS(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
