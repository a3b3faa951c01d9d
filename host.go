package main

import (
	"log/slog"

	"postboard/internal/board"
	"postboard/internal/geom"
	"postboard/internal/input"
)

// boardHost lets the arrow session read notes and hand back what it creates
// without touching the board directly.
type boardHost struct {
	board  *board.Board
	color  string
	logger *slog.Logger
}

var (
	_ board.Host     = (*boardHost)(nil)
	_ board.Notifier = (*boardHost)(nil)
)

func (h *boardHost) Notes() []board.Note {
	return h.board.Notes()
}

func (h *boardHost) CreateNote(at geom.Point) (board.Note, bool) {
	n, err := h.board.AddNote(at, h.color)
	if err != nil {
		h.logger.Warn("note creation failed", slog.String("error", err.Error()))
		return board.Note{}, false
	}
	h.logger.Info("note created", slog.String("note_id", n.ID))
	return n, true
}

func (h *boardHost) ArrowCreated(a board.Arrow) {
	if err := h.board.AddArrow(a); err != nil {
		h.logger.Warn("arrow rejected", slog.String("arrow_id", a.ID), slog.String("error", err.Error()))
		return
	}
	h.logger.Info("arrow created",
		slog.String("arrow_id", a.ID),
		slog.String("start_id", a.StartID),
		slog.String("end_id", a.EndID))
}

// NoteClicked selects the note; dragging is up to the caller.
func (h *boardHost) NoteClicked(ev input.PointerEvent, noteID string) {
	h.board.SelectNote(noteID)
	h.logger.Debug("note clicked", slog.String("note_id", noteID), slog.Bool("shift", ev.Shift))
}

func (h *boardHost) ArrowClicked(arrowID string) {
	h.board.SelectArrow(arrowID)
	h.logger.Debug("arrow clicked", slog.String("arrow_id", arrowID))
}
