// Package store reads and writes board documents as JSON files.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"

	"postboard/internal/apperr"
	"postboard/internal/board"
)

var topLevelKeys = []string{"postits", "arrows"}

// wireNote keeps positions loosely typed so a file with a missing or
// non-numeric coordinate still loads; such notes are skipped when drawn.
type wireNote struct {
	ID        string `json:"id"`
	X         any    `json:"x"`
	Y         any    `json:"y"`
	Text      string `json:"text"`
	IsEditing bool   `json:"isEditing"`
	Color     string `json:"color"`
}

type wireDocument struct {
	Postits []wireNote    `json:"postits"`
	Arrows  []board.Arrow `json:"arrows"`
}

// Encode renders doc as indented JSON.
func Encode(doc board.Document) ([]byte, error) {
	wire := wireDocument{
		Postits: lo.Map(doc.Postits, func(n board.Note, _ int) wireNote {
			return wireNote{
				ID:        n.ID,
				X:         coordOut(n.X),
				Y:         coordOut(n.Y),
				Text:      n.Text,
				IsEditing: n.IsEditing,
				Color:     n.Color,
			}
		}),
		Arrows: lo.Ternary(doc.Arrows == nil, []board.Arrow{}, doc.Arrows),
	}
	if wire.Postits == nil {
		wire.Postits = []wireNote{}
	}
	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a document. Unknown top-level keys are rejected.
func Decode(data []byte) (board.Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return board.Document{}, fmt.Errorf("store: decode: %w: %v", apperr.ErrInvalidDocument, err)
	}
	extra := lo.Without(lo.Keys(top), topLevelKeys...)
	if len(extra) > 0 {
		sort.Strings(extra)
		return board.Document{}, fmt.Errorf("store: decode: %w: unexpected keys %v", apperr.ErrInvalidDocument, extra)
	}

	var wire wireDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&wire); err != nil {
		return board.Document{}, fmt.Errorf("store: decode: %w: %v", apperr.ErrInvalidDocument, err)
	}

	doc := board.Document{
		Postits: make([]board.Note, 0, len(wire.Postits)),
		Arrows:  lo.Ternary(wire.Arrows == nil, []board.Arrow{}, wire.Arrows),
	}
	for _, w := range wire.Postits {
		n := board.Note{
			ID:        w.ID,
			X:         coordIn(w.X),
			Y:         coordIn(w.Y),
			Text:      w.Text,
			IsEditing: w.IsEditing,
			Color:     w.Color,
		}
		if !n.Valid() {
			slog.Warn("store: note without a numeric position", slog.String("note_id", n.ID))
		}
		doc.Postits = append(doc.Postits, n)
	}
	if stale := board.Dangling(doc.Postits, doc.Arrows); len(stale) > 0 {
		slog.Info("store: document has arrows to missing notes", slog.Int("count", len(stale)))
	}
	return doc, nil
}

func coordIn(v any) float64 {
	f, ok := v.(float64)
	if !ok {
		return math.NaN()
	}
	return f
}

func coordOut(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// Load reads a document from path.
func Load(path string) (board.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return board.Document{}, fmt.Errorf("store: read %s: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return board.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save atomically writes doc to path: tmp file, fsync, rename.
func Save(path string, doc board.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".postboard-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}
