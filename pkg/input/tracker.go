package input

import "sort"

// Sample is the polled state of one pointer in one frame, in normalized
// device coordinates. Hosts that poll (rather than receive events) report
// the mouse every frame and each touch while it is down.
type Sample struct {
	Pointer int
	Touch   bool
	Down    bool
	X, Y    float64
}

// Tracker turns per-frame samples into pointer events.
type Tracker struct {
	down map[int]Sample
}

// NewTracker returns a tracker with no pointers down.
func NewTracker() *Tracker {
	return &Tracker{down: make(map[int]Sample)}
}

// Update compares samples with the previous frame and emits Down, Move and
// Up events in sample order. Touches missing from samples are released at
// their last position, lowest pointer first.
func (t *Tracker) Update(samples []Sample, emit func(PointerEvent)) {
	seen := make(map[int]bool, len(samples))
	for _, s := range samples {
		seen[s.Pointer] = true
		prev, ok := t.down[s.Pointer]
		switch {
		case s.Down && !ok:
			t.down[s.Pointer] = s
			emit(t.event(Down, s))
		case s.Down && (prev.X != s.X || prev.Y != s.Y):
			t.down[s.Pointer] = s
			emit(t.event(Move, s))
		case !s.Down && ok:
			delete(t.down, s.Pointer)
			emit(t.event(Up, s))
		}
	}

	var gone []int
	for id := range t.down {
		if !seen[id] {
			gone = append(gone, id)
		}
	}
	sort.Ints(gone)
	for _, id := range gone {
		s := t.down[id]
		delete(t.down, id)
		emit(t.event(Up, s))
	}
}

// Reset releases every tracked pointer with a Cancel event.
func (t *Tracker) Reset(emit func(PointerEvent)) {
	ids := make([]int, 0, len(t.down))
	for id := range t.down {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s := t.down[id]
		delete(t.down, id)
		emit(t.event(Cancel, s))
	}
}

// Down reports whether pointer is currently held.
func (t *Tracker) Down(pointer int) bool {
	_, ok := t.down[pointer]
	return ok
}

func (t *Tracker) event(kind Kind, s Sample) PointerEvent {
	ev := PointerEvent{Kind: kind, Pointer: s.Pointer, Touch: s.Touch, X: s.X, Y: s.Y}
	if s.Touch {
		for _, d := range t.down {
			if d.Touch {
				ev.Touches++
			}
		}
	}
	return ev
}
