package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"postboard/internal/apperr"
	"postboard/internal/board"
	"postboard/internal/export"
	"postboard/internal/store"
)

// resolvePath adds the extension the operation expects and places relative
// names in the save directory.
func (m *model) resolvePath(name string, op FileOperation) string {
	name = strings.TrimSpace(name)
	if m.filename != "" && samePath(name, m.filename) {
		return m.filename
	}
	ext := ".json"
	switch op {
	case FileOpSavePNG:
		ext = ".png"
	case FileOpSaveSVG:
		ext = ".svg"
	}
	if !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return m.config.Storage.SavePath(name)
}

func (m *model) saveBoard(path string) error {
	if err := store.Save(path, m.board.Document()); err != nil {
		return err
	}
	m.board.MarkClean()
	m.filename = path
	m.logger.Info("board saved", slog.String("path", path))
	return nil
}

func (m *model) openBoard(path string) error {
	doc, err := store.Load(path)
	if err != nil {
		return err
	}
	m.replaceBoard(path, doc)
	m.logger.Info("board opened",
		slog.String("path", path),
		slog.Int("notes", len(doc.Postits)),
		slog.Int("arrows", len(doc.Arrows)))
	return nil
}

func (m *model) exportImage(path string, op FileOperation) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export %s: %w", path, cerr)
		}
	}()

	notes, arrows := m.board.Notes(), m.board.Arrows()
	if op == FileOpSaveSVG {
		err = export.SVG(f, notes, arrows)
	} else {
		err = export.PNG(f, notes, arrows)
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	m.logger.Info("board exported", slog.String("path", path))
	return nil
}

// runFileOp performs the pending file operation on path and reports the result
// in the status line.
func (m *model) runFileOp(path string) {
	var err error
	var done string
	switch m.fileOp {
	case FileOpSave:
		err = m.saveBoard(path)
		done = "Saved to " + path
	case FileOpOpen:
		err = m.openBoard(path)
		done = "Opened " + path
	case FileOpSavePNG, FileOpSaveSVG:
		err = m.exportImage(path, m.fileOp)
		done = "Exported to " + path
	}
	m.mode = ModeNormal
	m.textInput = ""
	if err != nil {
		m.errorMessage = describeError(err)
		m.logger.Warn("file operation failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	m.successMessage = done
}

func describeError(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNothingToExport):
		return "Nothing to export"
	case errors.Is(err, apperr.ErrInvalidDocument):
		return "Not a board file"
	case errors.Is(err, os.ErrNotExist):
		return "File not found"
	default:
		return err.Error()
	}
}

func (m model) scheduleAutosave() tea.Cmd {
	if !m.config.Storage.Autosave || m.autosaver == nil {
		return nil
	}
	return tea.Tick(m.config.Storage.AutosaveInterval, func(time.Time) tea.Msg {
		return autosaveMsg{}
	})
}

// autosave snapshots the board when it changed since the last snapshot.
func (m *model) autosave() {
	rev := m.board.Revision()
	if rev == m.autosavedRev || m.board.Empty() {
		return
	}
	var name string
	if m.filename != "" {
		name = strings.TrimSuffix(filepath.Base(m.filename), filepath.Ext(m.filename))
	}
	if _, err := m.autosaver.Save(name, m.board.Document()); err != nil {
		m.logger.Error("autosave failed", slog.String("error", err.Error()))
		return
	}
	m.autosavedRev = rev
}

// fileChanged reacts to the open file changing on disk. Our own saves come
// back through the watcher too; those match the board and are ignored.
func (m *model) fileChanged(path string) {
	if m.filename == "" || !samePath(path, m.filename) {
		return
	}
	doc, err := store.Load(path)
	if err != nil {
		m.logger.Warn("reload failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	same, err := sameContent(doc, m.board.Document())
	if err != nil || same {
		return
	}
	if m.mode == ModeEditing {
		// text being typed is not on the board yet
		m.errorMessage = "File changed on disk, Ctrl+R to reload"
		return
	}
	if m.board.Dirty() && m.mode == ModeNormal {
		m.mode = ModeConfirm
		m.confirmAction = ConfirmReload
		return
	}
	if m.board.Dirty() {
		m.errorMessage = "File changed on disk, Ctrl+R to reload"
		return
	}
	m.replaceBoard(path, doc)
	m.successMessage = "Reloaded " + filepath.Base(path)
	m.logger.Info("board reloaded", slog.String("path", path))
}

// sameContent compares two documents ignoring which note is open for editing.
func sameContent(a, b board.Document) (bool, error) {
	x, err := store.Encode(withoutEditing(a))
	if err != nil {
		return false, err
	}
	y, err := store.Encode(withoutEditing(b))
	if err != nil {
		return false, err
	}
	return bytes.Equal(x, y), nil
}

func withoutEditing(doc board.Document) board.Document {
	doc.Postits = lo.Map(doc.Postits, func(n board.Note, _ int) board.Note {
		n.IsEditing = false
		return n
	})
	return doc
}

func (m *model) reload() {
	if m.filename == "" {
		m.errorMessage = "No file to reload"
		return
	}
	if err := m.openBoard(m.filename); err != nil {
		m.errorMessage = describeError(err)
		return
	}
	m.successMessage = "Reloaded " + filepath.Base(m.filename)
}

// replaceBoard swaps in a loaded document, abandoning any transient state
// that referred to the old notes.
func (m *model) replaceBoard(path string, doc board.Document) {
	m.arrows.Cancel()
	m.endDrags()
	if m.mode == ModeEditing {
		m.mode = ModeNormal
	}
	m.editNoteID = ""
	m.board.Replace(doc)
	m.board.StopEditing()
	m.filename = path
	m.autosavedRev = m.board.Revision()
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}
