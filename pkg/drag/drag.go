// Package drag turns pointer and touch input into surface-anchored drag
// gestures. A press casts a ray through the camera into the interactable
// surfaces; on a hit the camera orbit is switched off until release and the
// hit point, surface and viewer-facing normal are tracked as the pointer
// moves.
package drag

import (
	"time"

	"github.com/chazu/crease/pkg/geom"
	"github.com/chazu/crease/pkg/input"
	"github.com/chazu/crease/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultMultitouchDelay is how long a first touch waits for a second one
// before it becomes a drag.
const DefaultMultitouchDelay = 150 * time.Millisecond

// Clock returns the current time. It is injected so tests can step time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Gate is whatever must be switched off while a drag is active, usually
// camera orbit controls.
type Gate interface {
	SetEnabled(bool)
}

// Options configures a Controller.
type Options struct {
	Camera *scene.Camera
	// Interactables returns the surfaces a press may grab. It is called on
	// every press so the set may change between gestures.
	Interactables func() []*scene.Surface

	OnPress   func(*Controller)
	OnMove    func(*Controller)
	OnRelease func(*Controller)

	// FaceBounded keeps the drag on the touched surface. Otherwise the drag
	// may continue onto the surface's unbounded plane.
	FaceBounded bool

	// MultitouchDelay debounces touch presses; zero presses immediately.
	MultitouchDelay time.Duration

	Orbit Gate
	Clock Clock
}

// Controller tracks at most one drag gesture.
type Controller struct {
	opts Options

	active       bool
	touchPoint   v3.Vec
	touchNormal  v3.Vec
	touchSurface *scene.Surface
	anchor       v3.Vec

	pending  *input.PointerEvent
	deadline time.Time
	multi    bool
	pointer  int

	unsubscribe func()
}

// New returns a controller; call Start to attach it to an input source.
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Interactables == nil {
		opts.Interactables = func() []*scene.Surface { return nil }
	}
	return &Controller{opts: opts}
}

// Start subscribes to src. A controller listens to one source at a time.
func (c *Controller) Start(src input.Source) {
	c.stopListening()
	c.unsubscribe = src.Subscribe(c.Handle)
}

// Dispose cancels any gesture and removes the input subscription.
func (c *Controller) Dispose() {
	c.Cancel()
	c.stopListening()
}

func (c *Controller) stopListening() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool { return c.active }

// TouchPoint is the latest world-space drag point.
func (c *Controller) TouchPoint() v3.Vec { return c.touchPoint }

// TouchNormal is the world normal of the grabbed surface, facing the viewer
// at press time.
func (c *Controller) TouchNormal() v3.Vec { return c.touchNormal }

// TouchSurface is the grabbed surface.
func (c *Controller) TouchSurface() *scene.Surface { return c.touchSurface }

// Anchor is the world point where the gesture started.
func (c *Controller) Anchor() v3.Vec { return c.anchor }

// Pending reports whether a touch press is waiting out the multitouch delay.
func (c *Controller) Pending() bool { return c.pending != nil }

// Handle consumes one pointer event.
func (c *Controller) Handle(ev input.PointerEvent) {
	switch ev.Kind {
	case input.Down:
		c.down(ev)
	case input.Move:
		if c.active && ev.Pointer == c.pointer {
			c.move(ev)
		}
	case input.Up, input.Cancel:
		c.up(ev)
	}
}

// Poll fires a pending touch press whose delay has elapsed. Hosts call it
// once per frame.
func (c *Controller) Poll() {
	if c.pending == nil || c.opts.Clock.Now().Before(c.deadline) {
		return
	}
	ev := *c.pending
	c.pending = nil
	c.press(ev)
	if !c.active {
		c.setOrbit(true)
	}
}

// Cancel ends an active or pending gesture as if it had been released.
func (c *Controller) Cancel() {
	c.cancelPending()
	c.multi = false
	c.release()
}

// cancelPending drops a waiting touch press and hands the camera back.
func (c *Controller) cancelPending() {
	if c.pending == nil {
		return
	}
	c.pending = nil
	c.setOrbit(true)
}

func (c *Controller) setOrbit(on bool) {
	if c.opts.Orbit != nil {
		c.opts.Orbit.SetEnabled(on)
	}
}

func (c *Controller) down(ev input.PointerEvent) {
	if !ev.Touch || c.opts.MultitouchDelay <= 0 {
		if ev.Touch && ev.Touches > 1 {
			c.multi = true
			return
		}
		c.press(ev)
		return
	}
	if ev.Touches > 1 || c.multi {
		// A second finger: this is a camera gesture, not a fold.
		c.cancelPending()
		c.multi = true
		return
	}
	// The camera holds still while the press waits, and the press fires
	// where the finger landed.
	p := ev
	c.pending = &p
	c.deadline = c.opts.Clock.Now().Add(c.opts.MultitouchDelay)
	c.setOrbit(false)
}

func (c *Controller) up(ev input.PointerEvent) {
	if c.pending != nil && c.pending.Pointer == ev.Pointer {
		c.cancelPending()
	}
	if ev.Touch && ev.Touches == 0 {
		c.multi = false
	}
	if c.active && ev.Pointer == c.pointer {
		c.release()
	}
}

func (c *Controller) press(ev input.PointerEvent) {
	if c.opts.Camera == nil {
		return
	}
	ray := c.opts.Camera.Ray(ev.X, ev.Y)
	hits := scene.Raycast(ray, c.opts.Interactables())
	if len(hits) == 0 {
		return
	}
	h := hits[0]
	c.active = true
	c.pointer = ev.Pointer
	c.touchPoint = h.Point
	c.anchor = h.Point
	c.touchSurface = h.Surface
	c.touchNormal = h.Normal
	c.setOrbit(false)
	if c.opts.OnPress != nil {
		c.opts.OnPress(c)
	}
}

func (c *Controller) move(ev input.PointerEvent) {
	ray := c.opts.Camera.Ray(ev.X, ev.Y)
	h, ok := c.touchSurface.Intersect(ray)
	if !c.opts.FaceBounded {
		plane := geom.PlaneFromPoint(c.touchNormal, c.anchor)
		if ph, pok := scene.RaycastPlane(ray, plane); pok && (!ok || ph.Distance < h.Distance) {
			h, ok = ph, true
		}
	}
	if !ok {
		return
	}
	c.touchPoint = h.Point
	if c.opts.OnMove != nil {
		c.opts.OnMove(c)
	}
}

func (c *Controller) release() {
	if !c.active {
		return
	}
	c.active = false
	c.setOrbit(true)
	if c.opts.OnRelease != nil {
		c.opts.OnRelease(c)
	}
	c.touchSurface = nil
	c.touchPoint = v3.Vec{}
	c.touchNormal = v3.Vec{}
	c.anchor = v3.Vec{}
}
