package drag

import (
	"testing"
	"time"

	"github.com/chazu/crease/pkg/input"
	"github.com/chazu/crease/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeGate struct{ enabled, calls int }

func (g *fakeGate) SetEnabled(on bool) {
	g.calls++
	if on {
		g.enabled = 1
	} else {
		g.enabled = 0
	}
}

type rig struct {
	cam      *scene.Camera
	surface  *scene.Surface
	ctrl     *Controller
	src      *input.Dispatcher
	gate     *fakeGate
	clock    *fakeClock
	presses  int
	moves    int
	releases int
}

func newRig(t *testing.T, faceBounded bool, delay time.Duration) *rig {
	t.Helper()
	r := &rig{
		cam: scene.NewCamera(),
		surface: scene.NewSurface("sheet", scene.KindFacet, 0, []v3.Vec{
			{X: -4, Y: -4}, {X: 4, Y: -4}, {X: 4, Y: 4}, {X: -4, Y: 4},
		}, v3.Vec{Z: 1}),
		src:   input.NewDispatcher(),
		gate:  &fakeGate{enabled: 1},
		clock: &fakeClock{t: time.Unix(100, 0)},
	}
	r.ctrl = New(Options{
		Camera:          r.cam,
		Interactables:   func() []*scene.Surface { return []*scene.Surface{r.surface} },
		OnPress:         func(*Controller) { r.presses++ },
		OnMove:          func(*Controller) { r.moves++ },
		OnRelease:       func(*Controller) { r.releases++ },
		FaceBounded:     faceBounded,
		MultitouchDelay: delay,
		Orbit:           r.gate,
		Clock:           r.clock,
	})
	r.ctrl.Start(r.src)
	return r
}

// at returns the event position of a world point.
func (r *rig) at(t *testing.T, kind input.Kind, p v3.Vec) input.PointerEvent {
	t.Helper()
	x, y, _, ok := r.cam.Project(p)
	require.True(t, ok)
	return input.PointerEvent{Kind: kind, X: x, Y: y}
}

func assertNear(t *testing.T, want, got v3.Vec) {
	t.Helper()
	assert.InDelta(t, 0, want.Sub(got).Length(), 1e-6, "want %v got %v", want, got)
}

func TestPressMoveRelease(t *testing.T) {
	r := newRig(t, true, 0)

	r.src.Dispatch(r.at(t, input.Down, v3.Vec{X: 1, Y: 2}))
	require.True(t, r.ctrl.Active())
	assert.Equal(t, 1, r.presses)
	assert.Equal(t, 0, r.gate.enabled, "orbit disabled during drag")
	assertNear(t, v3.Vec{X: 1, Y: 2}, r.ctrl.TouchPoint())
	assertNear(t, v3.Vec{X: 1, Y: 2}, r.ctrl.Anchor())
	assertNear(t, v3.Vec{Z: 1}, r.ctrl.TouchNormal())
	assert.Same(t, r.surface, r.ctrl.TouchSurface())

	r.src.Dispatch(r.at(t, input.Move, v3.Vec{X: -2, Y: 3}))
	assert.Equal(t, 1, r.moves)
	assertNear(t, v3.Vec{X: -2, Y: 3}, r.ctrl.TouchPoint())
	assertNear(t, v3.Vec{X: 1, Y: 2}, r.ctrl.Anchor())

	r.src.Dispatch(input.PointerEvent{Kind: input.Up})
	assert.False(t, r.ctrl.Active())
	assert.Equal(t, 1, r.releases)
	assert.Equal(t, 1, r.gate.enabled)
	assert.Nil(t, r.ctrl.TouchSurface())
}

func TestPressMissKeepsOrbit(t *testing.T) {
	r := newRig(t, true, 0)
	r.src.Dispatch(r.at(t, input.Down, v3.Vec{X: 9, Y: 9}))
	assert.False(t, r.ctrl.Active())
	assert.Zero(t, r.presses)
	assert.Zero(t, r.gate.calls)

	r.src.Dispatch(input.PointerEvent{Kind: input.Up})
	assert.Zero(t, r.releases, "release without a gesture is silent")
}

func TestNormalFacesViewer(t *testing.T) {
	r := newRig(t, true, 0)
	r.surface.Normal = v3.Vec{Z: -1}
	r.src.Dispatch(r.at(t, input.Down, v3.Vec{}))
	require.True(t, r.ctrl.Active())
	assertNear(t, v3.Vec{Z: 1}, r.ctrl.TouchNormal())
}

func TestFaceBoundedIgnoresOffSurface(t *testing.T) {
	r := newRig(t, true, 0)
	r.src.Dispatch(r.at(t, input.Down, v3.Vec{X: 3}))
	r.src.Dispatch(r.at(t, input.Move, v3.Vec{X: 7}))

	assert.Zero(t, r.moves)
	assertNear(t, v3.Vec{X: 3}, r.ctrl.TouchPoint())
}

func TestUnboundedFollowsHelperPlane(t *testing.T) {
	r := newRig(t, false, 0)
	r.src.Dispatch(r.at(t, input.Down, v3.Vec{X: 3}))
	r.src.Dispatch(r.at(t, input.Move, v3.Vec{X: 7, Y: 1}))

	assert.Equal(t, 1, r.moves)
	assertNear(t, v3.Vec{X: 7, Y: 1}, r.ctrl.TouchPoint())
}

func TestMoveFromOtherPointerIgnored(t *testing.T) {
	r := newRig(t, true, 0)
	r.src.Dispatch(r.at(t, input.Down, v3.Vec{}))
	ev := r.at(t, input.Move, v3.Vec{X: 1})
	ev.Pointer = 3
	r.src.Dispatch(ev)
	assert.Zero(t, r.moves)
}

func TestMultitouchDebounce(t *testing.T) {
	delay := 100 * time.Millisecond

	t.Run("single touch fires after delay", func(t *testing.T) {
		r := newRig(t, true, delay)
		ev := r.at(t, input.Down, v3.Vec{X: 1})
		ev.Touch, ev.Pointer, ev.Touches = true, 1, 1
		r.src.Dispatch(ev)

		assert.True(t, r.ctrl.Pending())
		r.ctrl.Poll()
		assert.False(t, r.ctrl.Active(), "too early")

		r.clock.Advance(delay)
		r.ctrl.Poll()
		assert.True(t, r.ctrl.Active())
		assert.False(t, r.ctrl.Pending())
		assert.Equal(t, 1, r.presses)
	})

	t.Run("second touch cancels", func(t *testing.T) {
		r := newRig(t, true, delay)
		first := r.at(t, input.Down, v3.Vec{X: 1})
		first.Touch, first.Pointer, first.Touches = true, 1, 1
		r.src.Dispatch(first)

		r.clock.Advance(delay / 2)
		second := r.at(t, input.Down, v3.Vec{X: -1})
		second.Touch, second.Pointer, second.Touches = true, 2, 2
		r.src.Dispatch(second)

		r.clock.Advance(delay)
		r.ctrl.Poll()
		assert.False(t, r.ctrl.Active())
		assert.Zero(t, r.presses)
		assert.Equal(t, 1, r.gate.enabled, "camera gets the pinch")
	})

	t.Run("lift before delay cancels", func(t *testing.T) {
		r := newRig(t, true, delay)
		ev := r.at(t, input.Down, v3.Vec{X: 1})
		ev.Touch, ev.Pointer, ev.Touches = true, 1, 1
		r.src.Dispatch(ev)
		r.src.Dispatch(input.PointerEvent{Kind: input.Up, Touch: true, Pointer: 1})

		assert.Equal(t, 1, r.gate.enabled, "camera back after lift")

		r.clock.Advance(delay)
		r.ctrl.Poll()
		assert.False(t, r.ctrl.Active())
	})

	t.Run("pending press that misses returns the camera", func(t *testing.T) {
		r := newRig(t, true, delay)
		ev := r.at(t, input.Down, v3.Vec{X: 9, Y: 9})
		ev.Touch, ev.Pointer, ev.Touches = true, 1, 1
		r.src.Dispatch(ev)
		assert.Equal(t, 0, r.gate.enabled)

		r.clock.Advance(delay)
		r.ctrl.Poll()
		assert.False(t, r.ctrl.Active())
		assert.Equal(t, 1, r.gate.enabled)
	})

	t.Run("pending press keeps the landing point", func(t *testing.T) {
		r := newRig(t, true, delay)
		ev := r.at(t, input.Down, v3.Vec{X: 1})
		ev.Touch, ev.Pointer, ev.Touches = true, 1, 1
		r.src.Dispatch(ev)
		mv := r.at(t, input.Move, v3.Vec{X: 2, Y: 1})
		mv.Touch, mv.Pointer, mv.Touches = true, 1, 1
		r.src.Dispatch(mv)

		r.clock.Advance(delay)
		r.ctrl.Poll()
		require.True(t, r.ctrl.Active())
		assertNear(t, v3.Vec{X: 1}, r.ctrl.Anchor())
		assert.Equal(t, 0, r.gate.enabled, "orbit held off through the delay")
	})

	t.Run("mouse is never delayed", func(t *testing.T) {
		r := newRig(t, true, delay)
		r.src.Dispatch(r.at(t, input.Down, v3.Vec{}))
		assert.True(t, r.ctrl.Active())
	})
}

func TestDisposeRemovesListener(t *testing.T) {
	r := newRig(t, true, 0)
	r.src.Dispatch(r.at(t, input.Down, v3.Vec{}))
	r.ctrl.Dispose()

	assert.Equal(t, 1, r.releases, "dispose ends the gesture")
	assert.Equal(t, 0, r.src.Len())

	r.src.Dispatch(r.at(t, input.Down, v3.Vec{}))
	assert.Equal(t, 1, r.presses)
}

func TestPendingTouchHoldsCamera(t *testing.T) {
	delay := 100 * time.Millisecond
	cam := scene.NewCamera()
	orbit := scene.NewOrbitControls(cam)
	src := input.NewDispatcher()
	src.Subscribe(orbit.Handle)

	sheet := scene.NewSurface("sheet", scene.KindFacet, 0, []v3.Vec{
		{X: -4, Y: -4}, {X: 4, Y: -4}, {X: 4, Y: 4}, {X: -4, Y: 4},
	}, v3.Vec{Z: 1})
	clock := &fakeClock{t: time.Unix(100, 0)}
	ctrl := New(Options{
		Camera:          cam,
		Interactables:   func() []*scene.Surface { return []*scene.Surface{sheet} },
		FaceBounded:     true,
		MultitouchDelay: delay,
		Orbit:           orbit,
		Clock:           clock,
	})
	ctrl.Start(src)

	before := cam.Position
	src.Dispatch(input.PointerEvent{Kind: input.Down, Pointer: 1, Touch: true, Touches: 1})
	src.Dispatch(input.PointerEvent{Kind: input.Move, Pointer: 1, Touch: true, Touches: 1, X: 0.05})
	assert.Equal(t, before, cam.Position, "camera moved while the press was pending")
	assert.False(t, orbit.Enabled())

	clock.Advance(2 * delay)
	ctrl.Poll()
	require.True(t, ctrl.Active())
	assertNear(t, v3.Vec{}, ctrl.Anchor())
	assert.Equal(t, before, cam.Position)

	src.Dispatch(input.PointerEvent{Kind: input.Up, Pointer: 1, Touch: true})
	assert.True(t, orbit.Enabled())
}
