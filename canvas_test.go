package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/board"
	"postboard/internal/geom"
	"postboard/internal/viewport"
)

func TestNoteCells(t *testing.T) {
	s := newTerminalSurface(8, 16)
	s.resize(100, 40)

	r := s.noteCells(viewport.Transform{Zoom: 1}, board.Note{X: 0, Y: 0})
	assert.Equal(t, cellRect{c0: 0, r0: 0, c1: 27, r1: 10}, r)

	// panned by one cell, half size
	r = s.noteCells(viewport.Transform{Zoom: 0.5, Pan: geom.Pt(8, 16)}, board.Note{X: 0, Y: 0})
	assert.Equal(t, cellRect{c0: 1, r0: 1, c1: 14, r1: 6}, r)
}

func TestCellCenterRoundTrip(t *testing.T) {
	s := newTerminalSurface(8, 16)
	col, row := s.cellAt(s.cellCenter(12, 7))
	assert.Equal(t, 12, col)
	assert.Equal(t, 7, row)
}

func TestBresenhamEndpoints(t *testing.T) {
	var got [][2]int
	bresenham(0, 0, 4, 2, func(x, y int) { got = append(got, [2]int{x, y}) })
	assert.Equal(t, [2]int{0, 0}, got[0])
	assert.Equal(t, [2]int{4, 2}, got[len(got)-1])
	assert.Len(t, got, 5)

	got = nil
	bresenham(3, 3, 3, 3, func(x, y int) { got = append(got, [2]int{x, y}) })
	assert.Equal(t, [][2]int{{3, 3}}, got)
}

func TestGlyphs(t *testing.T) {
	assert.Equal(t, '─', lineGlyph(10, 1))
	assert.Equal(t, '│', lineGlyph(1, 10))
	assert.Equal(t, '╲', lineGlyph(4, 2))
	assert.Equal(t, '╱', lineGlyph(4, -2))

	assert.Equal(t, '→', headGlyph(geom.Pt(10, 0)))
	assert.Equal(t, '↓', headGlyph(geom.Pt(0, 10)))
	assert.Equal(t, '←', headGlyph(geom.Pt(-10, 0)))
	assert.Equal(t, '↑', headGlyph(geom.Pt(0, -10)))
	assert.Equal(t, '↘', headGlyph(geom.Pt(10, 10)))
}

func TestWrapLines(t *testing.T) {
	assert.Equal(t, []string{"abcd", "ef", "", "g"}, wrapLines("abcdef\n\ng", 4))
	assert.Equal(t, []string{""}, wrapLines("", 4))
}

func TestWithCursor(t *testing.T) {
	assert.Equal(t, "ab█c", withCursor("abc", 2))
	assert.Equal(t, "abc█", withCursor("abc", 99))
}

func TestRenderCanvasDrawsNotesAndHidesTextWhenSmall(t *testing.T) {
	m := testModel(t)
	m.surface.resize(40, 12)
	n, err := m.board.AddNote(geom.Pt(0, 0), "")
	require.NoError(t, err)
	m.board.StopEditing()
	m.board.ClearSelection()
	_ = m.board.SetText(n.ID, "hello")
	m.cursorX, m.cursorY = 39, 11

	// zoom 0.5: footprint is 14x6 cells, text on the second row
	g := renderGrid(m)
	assert.Equal(t, '┌', g.at(0, 0).r)
	assert.Equal(t, '┘', g.at(13, 5).r)
	assert.Equal(t, 'h', g.at(1, 1).r)
	assert.Equal(t, board.DefaultColor, g.at(1, 1).bg)

	m.view.SetZoom(0.2, geom.Point{})
	g = renderGrid(m)
	assert.Equal(t, ' ', g.at(1, 1).r)
}

// renderGrid re-runs the drawing steps of renderCanvas on a bare grid.
func renderGrid(m model) *grid {
	g := newGrid(m.surface.cols, m.surface.rows)
	t := m.view.Transform()
	for _, n := range m.board.Notes() {
		m.drawNote(g, t, n, false, t.Zoom >= hideTextBelowZoom)
	}
	return g
}
