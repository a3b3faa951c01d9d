// Package input fans pointer and key events out to scoped subscribers.
package input

import "postboard/internal/geom"

type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// PointerEvent carries a pointer position in screen coordinates.
type PointerEvent struct {
	Screen geom.Point
	Button Button
	Shift  bool
	Alt    bool
	Ctrl   bool
}

type KeyEvent struct {
	Key string
}

type eventKind int

const (
	kindPointerMove eventKind = iota
	kindKey
)

type pointerHandler struct {
	id uint32
	fn func(PointerEvent)
}

type keyHandler struct {
	id uint32
	fn func(KeyEvent) bool
}

// Dispatcher delivers events to subscribers in registration order. It is
// meant to be driven from a single event loop.
type Dispatcher struct {
	pointerMove []pointerHandler
	key         []keyHandler
	nextID      uint32
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Handle releases one subscription. Remove is idempotent.
type Handle struct {
	id   uint32
	d    *Dispatcher
	kind eventKind
}

func (h Handle) Remove() {
	if h.d == nil {
		return
	}
	switch h.kind {
	case kindPointerMove:
		h.d.pointerMove = removeByID(h.d.pointerMove, h.id, func(p pointerHandler) uint32 { return p.id })
	case kindKey:
		h.d.key = removeByID(h.d.key, h.id, func(k keyHandler) uint32 { return k.id })
	}
}

func (d *Dispatcher) OnPointerMove(fn func(PointerEvent)) Handle {
	d.nextID++
	d.pointerMove = append(d.pointerMove, pointerHandler{id: d.nextID, fn: fn})
	return Handle{id: d.nextID, d: d, kind: kindPointerMove}
}

// OnKey registers fn for key presses. fn reports whether it consumed the key.
func (d *Dispatcher) OnKey(fn func(KeyEvent) bool) Handle {
	d.nextID++
	d.key = append(d.key, keyHandler{id: d.nextID, fn: fn})
	return Handle{id: d.nextID, d: d, kind: kindKey}
}

// PointerMoved runs every pointer-move subscriber, in order, before returning.
func (d *Dispatcher) PointerMoved(ev PointerEvent) {
	handlers := append([]pointerHandler(nil), d.pointerMove...)
	for _, h := range handlers {
		h.fn(ev)
	}
}

// KeyPressed stops at the first subscriber that consumes the key.
func (d *Dispatcher) KeyPressed(ev KeyEvent) bool {
	handlers := append([]keyHandler(nil), d.key...)
	for _, h := range handlers {
		if h.fn(ev) {
			return true
		}
	}
	return false
}

// Subscribers returns the number of live subscriptions.
func (d *Dispatcher) Subscribers() int {
	return len(d.pointerMove) + len(d.key)
}

func removeByID[T any](s []T, id uint32, key func(T) uint32) []T {
	for i, h := range s {
		if key(h) == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
