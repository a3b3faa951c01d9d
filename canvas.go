package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"postboard/internal/board"
	"postboard/internal/geom"
	"postboard/internal/viewport"
)

// terminalSurface maps terminal cells to screen pixels. One cell covers
// cellW x cellH pixels and the canvas area starts at the top-left cell.
type terminalSurface struct {
	cols  int
	rows  int
	cellW float64
	cellH float64
}

var _ viewport.Surface = (*terminalSurface)(nil)

func newTerminalSurface(cellW, cellH float64) *terminalSurface {
	return &terminalSurface{cols: 80, rows: 23, cellW: cellW, cellH: cellH}
}

func (s *terminalSurface) Bounds() geom.Rect {
	return geom.Rect{W: float64(s.cols) * s.cellW, H: float64(s.rows) * s.cellH}
}

func (s *terminalSurface) resize(cols, rows int) {
	s.cols = max(cols, 1)
	s.rows = max(rows, 1)
}

// cellCenter is the screen point a pointer event on (col, row) stands for.
func (s *terminalSurface) cellCenter(col, row int) geom.Point {
	return geom.Pt((float64(col)+0.5)*s.cellW, (float64(row)+0.5)*s.cellH)
}

func (s *terminalSurface) cellAt(p geom.Point) (col, row int) {
	return int(math.Floor(p.X / s.cellW)), int(math.Floor(p.Y / s.cellH))
}

// cellRect is an inclusive range of cells.
type cellRect struct {
	c0, r0, c1, r1 int
}

// noteCells is the cell range covered by a note's footprint.
func (s *terminalSurface) noteCells(t viewport.Transform, n board.Note) cellRect {
	b := n.Bounds()
	from := t.SurfaceToScreen(s, b.Min())
	to := t.SurfaceToScreen(s, b.Max())
	r := cellRect{
		c0: int(math.Floor(from.X / s.cellW)),
		r0: int(math.Floor(from.Y / s.cellH)),
		c1: int(math.Ceil(to.X/s.cellW)) - 1,
		r1: int(math.Ceil(to.Y/s.cellH)) - 1,
	}
	r.c1 = max(r.c1, r.c0)
	r.r1 = max(r.r1, r.r0)
	return r
}

type cell struct {
	r       rune
	fg      string
	bg      string
	bold    bool
	reverse bool
}

type grid struct {
	cols  int
	rows  int
	cells []cell
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range g.cells {
		g.cells[i].r = ' '
	}
	return g
}

func (g *grid) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return nil
	}
	return &g.cells[row*g.cols+col]
}

func (g *grid) set(col, row int, r rune, fg string) {
	if c := g.at(col, row); c != nil {
		c.r = r
		c.fg = fg
	}
}

// text writes s from col on, clipped to limit cells.
func (g *grid) text(col, row, limit int, s, fg string) {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > limit {
			return
		}
		if c := g.at(col+used, row); c != nil {
			c.r = r
			c.fg = fg
			c.bold = false
		}
		used += w
	}
}

// lines renders the grid, styling runs of cells that share attributes.
func (g *grid) lines() []string {
	styles := map[cell]lipgloss.Style{}
	out := make([]string, g.rows)
	for row := 0; row < g.rows; row++ {
		var b strings.Builder
		var run strings.Builder
		var runKey cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runKey == (cell{}) {
				b.WriteString(run.String())
			} else {
				st, ok := styles[runKey]
				if !ok {
					st = lipgloss.NewStyle().Bold(runKey.bold).Reverse(runKey.reverse)
					if runKey.fg != "" {
						st = st.Foreground(lipgloss.Color(runKey.fg))
					}
					if runKey.bg != "" {
						st = st.Background(lipgloss.Color(runKey.bg))
					}
					styles[runKey] = st
				}
				b.WriteString(st.Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < g.cols; col++ {
			c := g.cells[row*g.cols+col]
			key := cell{fg: c.fg, bg: c.bg, bold: c.bold, reverse: c.reverse}
			if key != runKey {
				flush()
				runKey = key
			}
			run.WriteRune(c.r)
		}
		flush()
		out[row] = b.String()
	}
	return out
}

const (
	arrowColor         = "#888888"
	selectedArrowColor = "#ff8800"
	previewArrowColor  = "#ff0000"
	borderColor        = "#555555"
	selectedColor      = "#000000"
	editingColor       = "#0055ff"
	textColor          = "#000000"
)

// renderCanvas draws arrows, then notes on top, then the arrow being drawn.
func (m model) renderCanvas() []string {
	s := m.surface
	g := newGrid(s.cols, s.rows)
	t := m.view.Transform()

	selectedArrow, _ := m.board.SelectedArrow()
	for _, a := range m.board.Rendered() {
		color := arrowColor
		if a.ID == selectedArrow {
			color = selectedArrowColor
		}
		m.drawSegment(g, t, a.Segment(), color)
	}

	selectedNote, _ := m.board.SelectedNote()
	showText := t.Zoom >= hideTextBelowZoom
	for _, n := range m.board.Notes() {
		if !n.Valid() {
			continue
		}
		m.drawNote(g, t, n, n.ID == selectedNote, showText)
	}

	if temp, ok := m.arrows.TempArrow(); ok {
		m.drawSegment(g, t, temp.Segment(), previewArrowColor)
	}

	if m.mode != ModeFileInput {
		if c := g.at(m.cursorX, m.cursorY); c != nil {
			if c.r == ' ' && c.bg == "" {
				c.r = '█'
			} else {
				c.reverse = true
			}
		}
	}
	return g.lines()
}

func (m model) drawNote(g *grid, t viewport.Transform, n board.Note, selected, showText bool) {
	r := m.surface.noteCells(t, n)
	if r.c1 < 0 || r.r1 < 0 || r.c0 >= g.cols || r.r0 >= g.rows {
		return
	}
	bg := n.Color
	if bg == "" {
		bg = board.DefaultColor
	}

	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	fg := borderColor
	switch {
	case n.IsEditing:
		h, v, tl, tr, bl, br = '═', '║', '╔', '╗', '╚', '╝'
		fg = editingColor
	case selected:
		h, v, tl, tr, bl, br = '━', '┃', '┏', '┓', '┗', '┛'
		fg = selectedColor
	}

	for row := r.r0; row <= r.r1; row++ {
		for col := r.c0; col <= r.c1; col++ {
			c := g.at(col, row)
			if c == nil {
				continue
			}
			c.bg = bg
			c.fg = fg
			c.bold = selected || n.IsEditing
			c.r = ' '
			switch {
			case r.c0 == r.c1 || r.r0 == r.r1:
				c.r = '▪'
			case col == r.c0 && row == r.r0:
				c.r = tl
			case col == r.c1 && row == r.r0:
				c.r = tr
			case col == r.c0 && row == r.r1:
				c.r = bl
			case col == r.c1 && row == r.r1:
				c.r = br
			case row == r.r0 || row == r.r1:
				c.r = h
			case col == r.c0 || col == r.c1:
				c.r = v
			}
		}
	}

	innerW := r.c1 - r.c0 - 1
	innerH := r.r1 - r.r0 - 1
	if !showText || innerW < 1 || innerH < 1 {
		return
	}
	text := n.Text
	if n.IsEditing && m.mode == ModeEditing && n.ID == m.editNoteID {
		text = withCursor(m.editText, m.editCursorPos)
	}
	for i, line := range wrapLines(text, innerW) {
		if i >= innerH {
			break
		}
		g.text(r.c0+1, r.r0+1+i, innerW, line, textColor)
	}
}

// drawSegment rasterises a canvas-space segment and puts a head on its end.
func (m model) drawSegment(g *grid, t viewport.Transform, seg geom.Segment, color string) {
	from := t.SurfaceToScreen(m.surface, seg.A)
	to := t.SurfaceToScreen(m.surface, seg.B)
	if !from.Finite() || !to.Finite() {
		return
	}
	c0, r0 := m.surface.cellAt(from)
	c1, r1 := m.surface.cellAt(to)

	glyph := lineGlyph(c1-c0, r1-r0)
	bresenham(c0, r0, c1, r1, func(col, row int) {
		g.set(col, row, glyph, color)
	})
	if c0 != c1 || r0 != r1 {
		g.set(c1, r1, headGlyph(to.Sub(from)), color)
	}
}

// bresenham visits every cell on the line between two cells. Off-grid cells
// are visited too; the grid clips them.
func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	// keep pathological zooms from spinning for ever
	if dx > 1<<14 || -dy > 1<<14 {
		return
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// lineGlyph picks a line character for a run of dx columns and dy rows. Cells
// are about twice as tall as wide.
func lineGlyph(dx, dy int) rune {
	adx, ady := abs(dx), abs(dy)
	switch {
	case ady*3 <= adx:
		return '─'
	case adx <= ady:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// headGlyph points along d, in screen pixels.
func headGlyph(d geom.Point) rune {
	heads := []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}
	angle := math.Atan2(d.Y, d.X)
	sector := int(math.Round(angle/(math.Pi/4))+8) % 8
	return heads[sector]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// wrapLines splits text into lines no wider than width cells, breaking long
// lines hard.
func wrapLines(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			out = append(out, "")
			continue
		}
		for runewidth.StringWidth(line) > width {
			cut := runewidth.Truncate(line, width, "")
			if cut == "" {
				break
			}
			out = append(out, cut)
			line = line[len(cut):]
		}
		out = append(out, line)
	}
	return out
}

// withCursor inserts a block cursor at byte offset pos.
func withCursor(text string, pos int) string {
	pos = min(max(pos, 0), len(text))
	return text[:pos] + "█" + text[pos:]
}
