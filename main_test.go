package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/board"
	"postboard/internal/config"
	"postboard/internal/geom"
	"postboard/internal/store"
)

// testModel is a 100x40 canvas at the default zoom of 0.5 with 8x16 cells,
// so screen cell (c, r) covers canvas ((c+0.5)*16, (r+0.5)*32) at its centre.
func testModel(t *testing.T) model {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Storage.SaveDirectory = t.TempDir()
	cfg.UI.Confirmations = false
	m, err := newModel(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	m.surface.resize(100, 40)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m
}

func addNote(t *testing.T, m model, x, y float64) board.Note {
	t.Helper()
	n, err := m.board.AddNote(geom.Pt(x, y), "")
	require.NoError(t, err)
	m.board.StopEditing()
	return n
}

func mouse(col, row int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: action, Button: button}
}

func update(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWindowSizeLeavesRoomForStatusLine(t *testing.T) {
	m := testModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})

	assert.Equal(t, 60, m.surface.cols)
	assert.Equal(t, 19, m.surface.rows)
	assert.Equal(t, geom.Rect{W: 480, H: 304}, m.surface.Bounds())
}

func TestDoubleClickOnEmptyCanvasCreatesNote(t *testing.T) {
	m := testModel(t)
	m = update(t, m,
		mouse(10, 5, tea.MouseActionPress, tea.MouseButtonLeft),
		mouse(10, 5, tea.MouseActionRelease, tea.MouseButtonNone),
		mouse(10, 5, tea.MouseActionPress, tea.MouseButtonLeft),
	)

	notes := m.board.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, geom.Pt(168, 176), notes[0].Position())
	assert.Equal(t, ModeEditing, m.mode)
	assert.Equal(t, notes[0].ID, m.editNoteID)
}

func TestClicksOnDifferentCellsAreNotDoubleClicks(t *testing.T) {
	m := testModel(t)
	m = update(t, m,
		mouse(10, 5, tea.MouseActionPress, tea.MouseButtonLeft),
		mouse(10, 5, tea.MouseActionRelease, tea.MouseButtonNone),
		mouse(11, 5, tea.MouseActionPress, tea.MouseButtonLeft),
	)
	assert.True(t, m.board.Empty())
}

func TestDragNoteScalesByZoom(t *testing.T) {
	m := testModel(t)
	n := addNote(t, m, 0, 0)

	m = update(t, m,
		mouse(5, 2, tea.MouseActionPress, tea.MouseButtonLeft),
		mouse(7, 2, tea.MouseActionMotion, tea.MouseButtonLeft),
		mouse(7, 2, tea.MouseActionRelease, tea.MouseButtonNone),
	)

	moved, ok := m.board.Note(n.ID)
	require.True(t, ok)
	assert.Equal(t, geom.Pt(32, 0), moved.Position())
	sel, _ := m.board.SelectedNote()
	assert.Equal(t, n.ID, sel)
	assert.Empty(t, m.dragNote)
}

func TestDragBackgroundPans(t *testing.T) {
	m := testModel(t)
	m = update(t, m,
		mouse(50, 20, tea.MouseActionPress, tea.MouseButtonLeft),
		mouse(52, 21, tea.MouseActionMotion, tea.MouseButtonLeft),
		mouse(52, 21, tea.MouseActionRelease, tea.MouseButtonNone),
	)
	assert.Equal(t, geom.Pt(16, 16), m.view.Position())
	assert.False(t, m.view.Dragging())
}

func TestWheelZoomKeepsPointUnderPointer(t *testing.T) {
	m := testModel(t)
	at := m.surface.cellCenter(20, 10)
	before := m.view.Transform().SurfaceToCanvas(m.surface, at)

	m = update(t, m, mouse(20, 10, tea.MouseActionPress, tea.MouseButtonWheelUp))

	assert.InDelta(t, 0.55, m.view.Zoom(), 1e-9)
	after := m.view.Transform().SurfaceToCanvas(m.surface, at)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestArrowBetweenNotesWithMouse(t *testing.T) {
	m := testModel(t)
	a := addNote(t, m, 0, 0)
	b := addNote(t, m, 400, 0)

	m = update(t, m, mouse(5, 2, tea.MouseActionPress, tea.MouseButtonRight))
	require.True(t, m.arrows.Drawing())
	assert.Equal(t, 2, m.events.Subscribers())

	m = update(t, m, mouse(30, 2, tea.MouseActionMotion, tea.MouseButtonNone))
	temp, ok := m.arrows.TempArrow()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(488, 80), geom.Pt(temp.EndX, temp.EndY))

	m = update(t, m, mouse(30, 2, tea.MouseActionPress, tea.MouseButtonLeft))
	assert.False(t, m.arrows.Drawing())
	assert.Zero(t, m.events.Subscribers())

	arrows := m.board.Arrows()
	require.Len(t, arrows, 1)
	assert.Equal(t, a.ID, arrows[0].StartID)
	assert.Equal(t, b.ID, arrows[0].EndID)
	assert.Equal(t, board.Right, arrows[0].StartPosition)
	assert.Equal(t, board.Top, arrows[0].EndPosition)
}

func TestArrowToEmptyCanvasSpawnsNote(t *testing.T) {
	m := testModel(t)
	a := addNote(t, m, 0, 0)

	m = update(t, m,
		mouse(5, 2, tea.MouseActionPress, tea.MouseButtonRight),
		mouse(60, 20, tea.MouseActionPress, tea.MouseButtonLeft),
	)

	notes := m.board.Notes()
	require.Len(t, notes, 2)
	created := notes[1]
	assert.Equal(t, geom.Pt(968, 656), created.Position())

	arrows := m.board.Arrows()
	require.Len(t, arrows, 1)
	assert.Equal(t, a.ID, arrows[0].StartID)
	assert.Equal(t, created.ID, arrows[0].EndID)
	assert.Equal(t, ModeEditing, m.mode)
	assert.Equal(t, created.ID, m.editNoteID)
}

func TestEscapeCancelsArrow(t *testing.T) {
	m := testModel(t)
	addNote(t, m, 0, 0)

	m = update(t, m, mouse(5, 2, tea.MouseActionPress, tea.MouseButtonRight))
	require.True(t, m.arrows.Drawing())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.arrows.Drawing())
	_, ok := m.arrows.TempArrow()
	assert.False(t, ok)
	assert.Zero(t, m.events.Subscribers())
	assert.Empty(t, m.board.Arrows())
}

func TestClickOnOriginNoteKeepsDrawing(t *testing.T) {
	m := testModel(t)
	addNote(t, m, 0, 0)

	m = update(t, m,
		mouse(5, 2, tea.MouseActionPress, tea.MouseButtonRight),
		mouse(6, 3, tea.MouseActionPress, tea.MouseButtonLeft),
	)
	assert.True(t, m.arrows.Drawing())
	assert.Empty(t, m.board.Arrows())
}

func TestKeyboardArrowFollowsCursor(t *testing.T) {
	m := testModel(t)
	a := addNote(t, m, 0, 0)
	b := addNote(t, m, 400, 0)
	m.board.SelectNote(a.ID)
	m.cursorX, m.cursorY = 30, 2

	m = update(t, m, keys("a"))
	require.True(t, m.arrows.Drawing())
	m = update(t, m, keys("l"))
	temp, ok := m.arrows.TempArrow()
	require.True(t, ok)
	assert.Equal(t, 504.0, temp.EndX)

	m = update(t, m, keys("a"))
	assert.False(t, m.arrows.Drawing())
	require.Len(t, m.board.Arrows(), 1)
	assert.Equal(t, b.ID, m.board.Arrows()[0].EndID)
}

func TestNewNoteAndEditText(t *testing.T) {
	m := testModel(t)
	m.cursorX, m.cursorY = 2, 1

	m = update(t, m, keys("n"))
	require.Equal(t, ModeEditing, m.mode)

	m = update(t, m,
		keys("hé"),
		tea.KeyMsg{Type: tea.KeyEnter},
		keys("yo"),
		tea.KeyMsg{Type: tea.KeyLeft},
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyEsc},
	)

	assert.Equal(t, ModeNormal, m.mode)
	notes := m.board.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "hé\no", notes[0].Text)
	assert.False(t, notes[0].IsEditing)
	assert.Equal(t, geom.Pt(40, 48), notes[0].Position())
}

func TestCycleColorAndDelete(t *testing.T) {
	m := testModel(t)
	n := addNote(t, m, 0, 0)
	m.board.SelectNote(n.ID)

	m = update(t, m, keys("c"))
	got, _ := m.board.Note(n.ID)
	assert.Equal(t, board.Palette[1], got.Color)

	m = update(t, m, keys("d"))
	assert.True(t, m.board.Empty())
}

func TestDeleteAsksFirstWhenConfirmationsOn(t *testing.T) {
	m := testModel(t)
	m.config.UI.Confirmations = true
	n := addNote(t, m, 0, 0)
	m.board.SelectNote(n.ID)

	m = update(t, m, keys("d"))
	require.Equal(t, ModeConfirm, m.mode)
	m = update(t, m, keys("n"))
	assert.Len(t, m.board.Notes(), 1)

	m = update(t, m, keys("d"), keys("y"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.True(t, m.board.Empty())
}

func TestPanAndZoomKeys(t *testing.T) {
	m := testModel(t)
	m = update(t, m, keys("z"), keys("h"), keys("J"))
	assert.Equal(t, geom.Pt(40, -160), m.view.Position())

	m = update(t, m, keys("+"))
	assert.InDelta(t, 0.55, m.view.Zoom(), 1e-9)

	m = update(t, m, keys("0"))
	assert.Equal(t, 0.5, m.view.Zoom())
	assert.Equal(t, geom.Point{}, m.view.Position())
}

func TestSaveThenOwnWriteIsIgnored(t *testing.T) {
	m := testModel(t)
	addNote(t, m, 10, 20)
	path := filepath.Join(m.config.Storage.SaveDirectory, "board.json")
	require.NoError(t, m.saveBoard(path))
	rev := m.board.Revision()

	m.fileChanged(path)
	assert.Equal(t, rev, m.board.Revision())
	assert.Empty(t, m.successMessage)
	assert.False(t, m.board.Dirty())
}

func TestExternalChangeReloads(t *testing.T) {
	m := testModel(t)
	addNote(t, m, 10, 20)
	path := filepath.Join(m.config.Storage.SaveDirectory, "board.json")
	require.NoError(t, m.saveBoard(path))

	other := board.Document{
		Postits: []board.Note{{ID: "x", X: 1, Y: 2, Color: "#ffffff"}},
		Arrows:  []board.Arrow{},
	}
	require.NoError(t, store.Save(path, other))

	m.fileChanged(path)
	notes := m.board.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "x", notes[0].ID)
	assert.Contains(t, m.successMessage, "Reloaded")
}

func TestExternalChangeWithLocalEditsAsks(t *testing.T) {
	m := testModel(t)
	path := filepath.Join(m.config.Storage.SaveDirectory, "board.json")
	require.NoError(t, m.saveBoard(path))
	addNote(t, m, 10, 20)

	require.NoError(t, store.Save(path, board.Document{
		Postits: []board.Note{{ID: "x", X: 1, Y: 2}},
		Arrows:  []board.Arrow{},
	}))

	m.fileChanged(path)
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Equal(t, ConfirmReload, m.confirmAction)
	assert.Len(t, m.board.Notes(), 1)
}

func TestAutosaveOnlyWhenChanged(t *testing.T) {
	m := testModel(t)
	m.autosave()
	assert.Zero(t, m.autosaver.Index())

	addNote(t, m, 0, 0)
	m.autosave()
	assert.Equal(t, 1, m.autosaver.Index())
	assert.FileExists(t, filepath.Join(m.config.Storage.SaveDirectory, "auto-untitled-00.json"))

	m.autosave()
	assert.Equal(t, 1, m.autosaver.Index())
}

func TestSaveAndOpenThroughPrompt(t *testing.T) {
	m := testModel(t)
	addNote(t, m, 0, 0)

	m = update(t, m, keys("s"), keys("plan"), tea.KeyMsg{Type: tea.KeyEnter})
	path := filepath.Join(m.config.Storage.SaveDirectory, "plan.json")
	assert.Equal(t, path, m.filename)
	assert.FileExists(t, path)
	assert.False(t, m.board.Dirty())

	m = update(t, m, keys("d"))
	require.True(t, m.board.Empty())

	m = update(t, m, keys("o"))
	require.Equal(t, []string{"plan.json"}, m.fileList)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, m.board.Notes(), 1)
	assert.Contains(t, m.successMessage, "Opened")
}

func TestExternalChangeWhileTypingKeepsText(t *testing.T) {
	m := testModel(t)
	n := addNote(t, m, 10, 20)
	path := filepath.Join(m.config.Storage.SaveDirectory, "board.json")
	require.NoError(t, m.saveBoard(path))

	m.startEditing(n.ID)
	m = update(t, m, keys("important"))
	require.False(t, m.board.Dirty())

	require.NoError(t, store.Save(path, board.Document{
		Postits: []board.Note{{ID: "x", X: 1, Y: 2}},
		Arrows:  []board.Arrow{},
	}))
	m.fileChanged(path)
	assert.Equal(t, ModeEditing, m.mode)
	assert.Equal(t, "important", m.editText)
	assert.Contains(t, m.errorMessage, "Ctrl+R")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	got, ok := m.board.Note(n.ID)
	require.True(t, ok)
	assert.Equal(t, "important", got.Text)
	assert.True(t, m.board.Dirty())
}

func TestOwnSaveEchoWhileEditingIsIgnored(t *testing.T) {
	m := testModel(t)
	n := addNote(t, m, 10, 20)
	path := filepath.Join(m.config.Storage.SaveDirectory, "board.json")
	require.NoError(t, m.saveBoard(path))

	m.startEditing(n.ID)
	m = update(t, m, keys("abc"))
	rev := m.board.Revision()

	m.fileChanged(path)
	assert.Equal(t, ModeEditing, m.mode)
	assert.Equal(t, "abc", m.editText)
	assert.Equal(t, rev, m.board.Revision())
	assert.Empty(t, m.successMessage)
	assert.Empty(t, m.errorMessage)
}

func TestSameContentIgnoresEditingFlag(t *testing.T) {
	a := board.Document{Postits: []board.Note{{ID: "n", X: 1, Y: 2, IsEditing: true}}}
	b := board.Document{Postits: []board.Note{{ID: "n", X: 1, Y: 2}}}
	same, err := sameContent(a, b)
	require.NoError(t, err)
	assert.True(t, same)
	assert.True(t, a.Postits[0].IsEditing)

	b.Postits[0].Text = "changed"
	same, err = sameContent(a, b)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestClickNearArrowSelectsIt(t *testing.T) {
	m := testModel(t)
	a := addNote(t, m, 0, 0)
	b := addNote(t, m, 400, 0)
	require.NoError(t, m.board.AddArrow(board.Arrow{
		ID: "1", StartID: a.ID, EndID: b.ID, StartPosition: board.Right, EndPosition: board.Left,
	}))

	// cell (19, 2) is canvas (312, 80), 7 units above the arrow
	m = update(t, m, mouse(19, 2, tea.MouseActionPress, tea.MouseButtonLeft))
	sel, ok := m.board.SelectedArrow()
	require.True(t, ok)
	assert.Equal(t, "1", sel)
	_, ok = m.board.SelectedNote()
	assert.False(t, ok)

	m = update(t, m, mouse(2, 2, tea.MouseActionPress, tea.MouseButtonLeft))
	note, ok := m.board.SelectedNote()
	require.True(t, ok)
	assert.Equal(t, a.ID, note)
	_, ok = m.board.SelectedArrow()
	assert.False(t, ok)
}

func TestLockPanAndZoom(t *testing.T) {
	m := testModel(t)
	m.width = 200
	m = update(t, m, keys("Z"))
	require.False(t, m.view.Enabled())
	assert.Contains(t, m.statusLine(), "(locked)")

	m = update(t, m, keys("+"), keys("z"), keys("h"),
		mouse(20, 10, tea.MouseActionPress, tea.MouseButtonWheelUp))
	assert.Equal(t, 0.5, m.view.Zoom())
	assert.Equal(t, geom.Point{}, m.view.Position())

	m = update(t, m, keys("Z"), keys("h"))
	assert.True(t, m.view.Enabled())
	assert.Equal(t, geom.Pt(40, 0), m.view.Position())
}
