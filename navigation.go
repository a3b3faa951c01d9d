package main

import (
	"postboard/internal/geom"
	"postboard/internal/input"
	"postboard/internal/viewport"
)

func (m *model) handleNavigation(key string) {
	speed := m.getMoveSpeed(key)
	if m.zPanMode {
		m.handlePan(key, speed)
		return
	}
	m.handleCursorMove(key, speed)
}

// handlePan moves the canvas under a fixed cursor.
func (m *model) handlePan(key string, speed int) {
	step := m.config.Canvas.PanStep * float64(speed)
	var d geom.Point
	switch key {
	case "h", "left", "H", "shift+left":
		d.X = step
	case "l", "right", "L", "shift+right":
		d.X = -step
	case "k", "up", "K", "shift+up":
		d.Y = step
	case "j", "down", "J", "shift+down":
		d.Y = -step
	}
	m.view.Pan(d)
	m.cursorMoved()
}

func (m *model) handleCursorMove(key string, speed int) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
	m.cursorMoved()
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 4
	default:
		return 1
	}
}

func (m *model) ensureCursorInBounds() {
	m.cursorX = min(max(m.cursorX, 0), m.surface.cols-1)
	m.cursorY = min(max(m.cursorY, 0), m.surface.rows-1)
}

// cursorPoint is the screen point under the keyboard cursor.
func (m *model) cursorPoint() geom.Point {
	return m.surface.cellCenter(m.cursorX, m.cursorY)
}

// cursorMoved feeds the keyboard cursor to pointer subscribers so the arrow
// preview follows it like it follows the mouse.
func (m *model) cursorMoved() {
	m.pointerMoved(input.PointerEvent{Screen: m.cursorPoint()})
}

// zoomAtCursor zooms one step keeping the canvas point under the cursor fixed.
func (m *model) zoomAtCursor(dir viewport.Direction) {
	m.view.ZoomAt(dir, m.cursorPoint().Sub(m.surface.Bounds().Min()))
	m.cursorMoved()
}

func (m *model) resetView() {
	m.view.Reset()
	m.cursorMoved()
}
