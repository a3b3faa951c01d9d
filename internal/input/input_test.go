package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"postboard/internal/geom"
)

func TestPointerMoveOrderAndRemoval(t *testing.T) {
	d := NewDispatcher()
	var got []string

	first := d.OnPointerMove(func(ev PointerEvent) { got = append(got, "first") })
	d.OnPointerMove(func(ev PointerEvent) { got = append(got, "second") })

	d.PointerMoved(PointerEvent{Screen: geom.Pt(1, 1)})
	first.Remove()
	first.Remove()
	d.PointerMoved(PointerEvent{Screen: geom.Pt(2, 2)})

	assert.Equal(t, []string{"first", "second", "second"}, got)
	assert.Equal(t, 1, d.Subscribers())
}

func TestKeyPressedStopsAtFirstConsumer(t *testing.T) {
	d := NewDispatcher()
	calls := 0

	d.OnKey(func(ev KeyEvent) bool {
		calls++
		return ev.Key == "esc"
	})
	d.OnKey(func(ev KeyEvent) bool {
		calls++
		return true
	})

	assert.True(t, d.KeyPressed(KeyEvent{Key: "esc"}))
	assert.Equal(t, 1, calls)

	assert.True(t, d.KeyPressed(KeyEvent{Key: "x"}))
	assert.Equal(t, 3, calls)
}

func TestHandlerMayRemoveItselfWhileDispatching(t *testing.T) {
	d := NewDispatcher()
	var h Handle
	calls := 0
	h = d.OnKey(func(KeyEvent) bool {
		calls++
		h.Remove()
		return true
	})

	d.KeyPressed(KeyEvent{Key: "esc"})
	d.KeyPressed(KeyEvent{Key: "esc"})

	assert.Equal(t, 1, calls)
	assert.Zero(t, d.Subscribers())
}

func TestZeroHandleRemoveIsSafe(t *testing.T) {
	assert.NotPanics(t, func() { Handle{}.Remove() })
}
