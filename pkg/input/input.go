// Package input is the host-neutral pointer model. Hosts translate their
// native mouse and touch events into PointerEvents in normalized device
// coordinates and publish them through a Dispatcher; controllers subscribe
// to a Source and never see the window system.
package input

import "fmt"

// Kind is the phase of a pointer event.
type Kind int

const (
	Down Kind = iota
	Move
	Up
	Cancel
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MousePointer is the pointer id used for the mouse. Touch ids start at 1.
const MousePointer = 0

// PointerEvent is one pointer or touch transition. X and Y are normalized
// device coordinates: -1..1 left to right and bottom to top.
type PointerEvent struct {
	Kind    Kind
	Pointer int
	Touch   bool
	X, Y    float64
	// Touches is the number of touches down after this event, zero for mouse.
	Touches int
}

// Source delivers pointer events to subscribers.
type Source interface {
	Subscribe(fn func(PointerEvent)) (unsubscribe func())
}

// Dispatcher is a Source that hosts push events into. Handlers run
// synchronously, in subscription order, on the goroutine calling Dispatch.
type Dispatcher struct {
	handlers []handler
	nextID   uint32
}

type handler struct {
	id uint32
	fn func(PointerEvent)
}

var _ Source = (*Dispatcher)(nil)

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers fn and returns a function removing it again.
func (d *Dispatcher) Subscribe(fn func(PointerEvent)) func() {
	d.nextID++
	id := d.nextID
	d.handlers = append(d.handlers, handler{id: id, fn: fn})
	return func() {
		for i, h := range d.handlers {
			if h.id == id {
				d.handlers = append(d.handlers[:i], d.handlers[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to every subscriber.
func (d *Dispatcher) Dispatch(ev PointerEvent) {
	hs := make([]handler, len(d.handlers))
	copy(hs, d.handlers)
	for _, h := range hs {
		h.fn(ev)
	}
}

// Len returns the number of subscribers.
func (d *Dispatcher) Len() int {
	return len(d.handlers)
}

// PixelToNDC converts window pixel coordinates to normalized device
// coordinates.
func PixelToNDC(px, py float64, width, height int) (float64, float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return px/float64(width)*2 - 1, 1 - py/float64(height)*2
}

// NDCToPixel is the inverse of PixelToNDC.
func NDCToPixel(x, y float64, width, height int) (float64, float64) {
	return (x + 1) / 2 * float64(width), (1 - y) / 2 * float64(height)
}
