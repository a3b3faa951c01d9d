package main

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"postboard/internal/board"
	"postboard/internal/geom"
	"postboard/internal/input"
	"postboard/internal/viewport"
)

func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.X < 0 || msg.Y < 0 || msg.X >= m.surface.cols || msg.Y >= m.surface.rows {
		// the status line is not part of the canvas
		if msg.Action == tea.MouseActionRelease {
			m.endDrags()
		}
		return
	}
	m.cursorX, m.cursorY = msg.X, msg.Y
	ev := input.PointerEvent{
		Screen: m.surface.cellCenter(msg.X, msg.Y),
		Button: pointerButton(msg.Button),
		Shift:  msg.Shift,
		Alt:    msg.Alt,
		Ctrl:   msg.Ctrl,
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		m.pointerMoved(ev)
	case tea.MouseActionRelease:
		m.endDrags()
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.view.ZoomAt(viewport.ZoomIn, ev.Screen.Sub(m.surface.Bounds().Min()))
			m.pointerMoved(ev)
		case tea.MouseButtonWheelDown:
			m.view.ZoomAt(viewport.ZoomOut, ev.Screen.Sub(m.surface.Bounds().Min()))
			m.pointerMoved(ev)
		case tea.MouseButtonLeft:
			if ev.Shift {
				m.toggleArrowAt(ev)
				return
			}
			m.press(ev, m.isDoubleClick(msg.X, msg.Y))
		case tea.MouseButtonRight:
			m.toggleArrowAt(ev)
		case tea.MouseButtonMiddle:
			m.view.BeginDrag(ev.Screen)
		}
	}
}

func pointerButton(b tea.MouseButton) input.Button {
	switch b {
	case tea.MouseButtonLeft:
		return input.ButtonLeft
	case tea.MouseButtonMiddle:
		return input.ButtonMiddle
	case tea.MouseButtonRight:
		return input.ButtonRight
	default:
		return input.ButtonNone
	}
}

// isDoubleClick records a press on (col, row) and reports whether it follows
// another press on the same cell closely enough.
func (m *model) isDoubleClick(col, row int) bool {
	now := m.now()
	at := clickPoint{X: col, Y: row}
	double := m.lastClick == at && !m.lastClickTime.IsZero() && now.Sub(m.lastClickTime) <= doubleClickWindow
	m.lastClick = at
	m.lastClickTime = now
	if double {
		// a third press starts a new pair
		m.lastClickTime = time.Time{}
	}
	return double
}

// pointerMoved fans the pointer out to subscribers and continues any drag.
func (m *model) pointerMoved(ev input.PointerEvent) {
	m.events.PointerMoved(ev)
	if m.view.Dragging() {
		m.view.DragTo(ev.Screen)
	}
	if m.dragNote == "" {
		return
	}
	delta := ev.Screen.Sub(m.dragLast)
	m.dragLast = ev.Screen
	if delta == (geom.Point{}) {
		return
	}
	n, ok := m.board.Note(m.dragNote)
	if !ok {
		m.dragNote = ""
		return
	}
	// screen pixels shrink or grow with zoom
	if err := m.board.MoveNote(n.ID, n.Position().Add(delta.Scale(1/m.view.Zoom()))); err != nil {
		m.logger.Warn("move note failed", slog.String("note_id", n.ID), slog.String("error", err.Error()))
	}
}

func (m *model) endDrags() {
	m.view.EndDrag()
	m.dragNote = ""
}

// press handles a primary click at ev. While an arrow is being drawn every
// click goes to the drawing session.
func (m *model) press(ev input.PointerEvent, double bool) {
	if m.mode == ModeEditing {
		m.commitEdit()
	}
	m.errorMessage = ""
	m.successMessage = ""

	if m.arrows.Drawing() {
		m.arrows.HandleCanvasClick(ev)
		m.syncEditing()
		return
	}

	at := m.view.Transform().SurfaceToCanvas(m.surface, ev.Screen)
	if id, ok := board.HitTest(m.board.Notes(), at); ok {
		if double {
			m.startEditing(id)
			return
		}
		m.host.NoteClicked(ev, id)
		m.dragNote = id
		m.dragLast = ev.Screen
		return
	}

	tolerance := arrowHitCells * m.surface.cellW / m.view.Zoom()
	if id, ok := board.ArrowAt(m.board.Rendered(), at, tolerance); ok {
		m.host.ArrowClicked(id)
		return
	}

	m.board.ClearSelection()
	if double {
		m.createNoteAt(at)
		return
	}
	m.view.BeginDrag(ev.Screen)
}

// toggleArrowAt starts an arrow from the note under ev, anchored on the side
// nearest the pointer. If an arrow is already being drawn it is abandoned.
func (m *model) toggleArrowAt(ev input.PointerEvent) {
	if m.arrows.Drawing() {
		m.arrows.Cancel()
		return
	}
	at := m.view.Transform().SurfaceToCanvas(m.surface, ev.Screen)
	id, ok := board.HitTest(m.board.Notes(), at)
	if !ok {
		return
	}
	m.beginArrow(id, at, ev.Screen)
}

func (m *model) beginArrow(noteID string, at, screen geom.Point) {
	n, ok := m.board.Note(noteID)
	if !ok {
		return
	}
	cp, ok := board.ClosestPoint(&n, at)
	if !ok {
		return
	}
	if m.mode == ModeEditing {
		m.commitEdit()
	}
	if m.arrows.Begin(noteID, cp.Position) {
		m.board.SelectNote(noteID)
		m.arrows.Move(screen)
		m.successMessage = "Drawing arrow: click a note or empty canvas, Esc cancels"
	}
}

// createNoteAt drops a note at a canvas point and opens it for editing.
func (m *model) createNoteAt(at geom.Point) {
	if _, ok := m.host.CreateNote(at); ok {
		m.syncEditing()
	}
}
