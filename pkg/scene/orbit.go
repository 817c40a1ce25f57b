package scene

import (
	"math"

	"github.com/chazu/crease/pkg/input"
)

// OrbitControls turns pointer drags on empty space into camera orbit and
// two-finger pinches into zoom. Object interaction disables it for the
// duration of a gesture.
type OrbitControls struct {
	Camera      *Camera
	RotateSpeed float64 // degrees per NDC unit dragged
	ZoomSpeed   float64

	enabled  bool
	pointers map[int][2]float64
	pinch    float64
}

// NewOrbitControls returns enabled controls driving cam.
func NewOrbitControls(cam *Camera) *OrbitControls {
	return &OrbitControls{
		Camera:      cam,
		RotateSpeed: 90,
		ZoomSpeed:   1,
		enabled:     true,
		pointers:    make(map[int][2]float64),
	}
}

// SetEnabled turns camera manipulation on or off. Pointer positions are
// still tracked while disabled so re-enabling does not jump.
func (o *OrbitControls) SetEnabled(on bool) {
	o.enabled = on
}

// Enabled reports whether the controls move the camera.
func (o *OrbitControls) Enabled() bool {
	return o.enabled
}

// Handle consumes one pointer event.
func (o *OrbitControls) Handle(ev input.PointerEvent) {
	switch ev.Kind {
	case input.Down:
		o.pointers[ev.Pointer] = [2]float64{ev.X, ev.Y}
		o.pinch = o.spread()
	case input.Move:
		prev, ok := o.pointers[ev.Pointer]
		if !ok {
			return
		}
		o.pointers[ev.Pointer] = [2]float64{ev.X, ev.Y}
		if !o.enabled {
			o.pinch = o.spread()
			return
		}
		switch len(o.pointers) {
		case 1:
			o.Camera.Orbit(-(ev.X-prev[0])*o.RotateSpeed, -(ev.Y-prev[1])*o.RotateSpeed)
		case 2:
			s := o.spread()
			if o.pinch > 0 && s > 0 {
				o.Camera.Zoom((o.pinch/s - 1) * o.ZoomSpeed)
			}
			o.pinch = s
		}
	case input.Up, input.Cancel:
		delete(o.pointers, ev.Pointer)
		o.pinch = o.spread()
	}
}

// spread is the distance between the first two tracked pointers.
func (o *OrbitControls) spread() float64 {
	if len(o.pointers) != 2 {
		return 0
	}
	var pts [][2]float64
	for _, p := range o.pointers {
		pts = append(pts, p)
	}
	return math.Hypot(pts[0][0]-pts[1][0], pts[0][1]-pts[1][1])
}
