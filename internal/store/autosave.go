package store

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"postboard/internal/board"
)

// Autosaver rotates snapshots through auto-<name>-NN.json slots.
type Autosaver struct {
	dir    string
	slots  int
	index  int
	logger *slog.Logger
}

func NewAutosaver(dir string, slots int, logger *slog.Logger) *Autosaver {
	if slots < 1 {
		slots = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{dir: dir, slots: slots, logger: logger}
}

// Index is the slot the next snapshot goes to.
func (a *Autosaver) Index() int { return a.index }

// SlotPath names the file for a given slot.
func (a *Autosaver) SlotPath(name string, index int) string {
	return filepath.Join(a.dir, fmt.Sprintf("auto-%s-%02d.json", name, index))
}

// Save writes doc to the current slot and advances. If the slot cannot be
// written, the snapshot goes to a uniquely named file instead.
func (a *Autosaver) Save(name string, doc board.Document) (string, error) {
	if name == "" {
		name = "untitled"
	}
	data, err := Encode(doc)
	if err != nil {
		return "", err
	}
	path := a.SlotPath(name, a.index)
	if err := writeAtomic(path, data); err != nil {
		a.logger.Warn("autosave: slot write failed, using unique name",
			slog.String("path", path),
			slog.String("error", err.Error()))
		path = filepath.Join(a.dir, fmt.Sprintf("auto-%s.json", uuid.NewString()[:6]))
		if err := writeAtomic(path, data); err != nil {
			return "", fmt.Errorf("autosave: %w", err)
		}
	}
	a.index = (a.index + 1) % a.slots
	a.logger.Info("autosave: saved", slog.String("path", path))
	return path, nil
}
