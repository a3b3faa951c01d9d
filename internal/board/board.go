package board

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"postboard/internal/apperr"
	"postboard/internal/geom"
)

// Document is the persisted shape of a board: two ordered sequences and
// nothing else.
type Document struct {
	Postits []Note  `json:"postits"`
	Arrows  []Arrow `json:"arrows"`
}

// Board owns the notes, arrows and selection of one canvas. All mutation goes
// through its methods; geometry helpers only read snapshots.
type Board struct {
	notes  []Note
	arrows []Arrow
	ids    *IDGen

	selectedNote  string
	selectedArrow string
	dirty         bool
	revision      uint64
}

func New() *Board {
	return &Board{ids: NewIDGen()}
}

// FromDocument rebuilds a board from a loaded document.
func FromDocument(doc Document) *Board {
	b := New()
	b.notes = slices.Clone(doc.Postits)
	b.arrows = slices.Clone(doc.Arrows)
	return b
}

func (b *Board) Document() Document {
	return Document{
		Postits: lo.Ternary(b.notes == nil, []Note{}, slices.Clone(b.notes)),
		Arrows:  lo.Ternary(b.arrows == nil, []Arrow{}, slices.Clone(b.arrows)),
	}
}

func (b *Board) IDs() *IDGen { return b.ids }

// Notes returns a snapshot of the notes in stable order.
func (b *Board) Notes() []Note { return slices.Clone(b.notes) }

func (b *Board) Arrows() []Arrow { return slices.Clone(b.arrows) }

func (b *Board) Empty() bool { return len(b.notes) == 0 && len(b.arrows) == 0 }

func (b *Board) Dirty() bool { return b.dirty }

func (b *Board) MarkClean() { b.dirty = false }

// Revision increases on every mutation.
func (b *Board) Revision() uint64 { return b.revision }

func (b *Board) touch() {
	b.dirty = true
	b.revision++
}

// Replace swaps in a freshly loaded document and clears selection.
func (b *Board) Replace(doc Document) {
	b.notes = slices.Clone(doc.Postits)
	b.arrows = slices.Clone(doc.Arrows)
	b.selectedNote = ""
	b.selectedArrow = ""
	b.dirty = false
	b.revision++
}

func (b *Board) Note(id string) (Note, bool) {
	return lo.Find(b.notes, func(n Note) bool { return n.ID == id })
}

func (b *Board) note(id string) (*Note, error) {
	i := slices.IndexFunc(b.notes, func(n Note) bool { return n.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
	}
	return &b.notes[i], nil
}

// AddNote places a new note with its top-left corner at p and opens it for
// editing.
func (b *Board) AddNote(p geom.Point, color string) (Note, error) {
	if !p.Finite() {
		return Note{}, fmt.Errorf("add note at %v: position is not finite", p)
	}
	if color == "" {
		color = DefaultColor
	}
	b.stopEditing()
	n := Note{ID: b.ids.NoteID(), X: p.X, Y: p.Y, Color: color, IsEditing: true}
	b.notes = append(b.notes, n)
	b.selectedNote = n.ID
	b.selectedArrow = ""
	b.touch()
	return n, nil
}

func (b *Board) MoveNote(id string, to geom.Point) error {
	n, err := b.note(id)
	if err != nil {
		return err
	}
	if !to.Finite() {
		return fmt.Errorf("move note %s: position is not finite", id)
	}
	n.X, n.Y = to.X, to.Y
	b.touch()
	return nil
}

func (b *Board) SetText(id, text string) error {
	n, err := b.note(id)
	if err != nil {
		return err
	}
	n.Text = text
	b.touch()
	return nil
}

func (b *Board) SetColor(id, color string) error {
	n, err := b.note(id)
	if err != nil {
		return err
	}
	n.Color = color
	b.touch()
	return nil
}

// StartEditing marks id as the note being edited and clears the flag on every
// other note.
func (b *Board) StartEditing(id string) error {
	if _, err := b.note(id); err != nil {
		return err
	}
	for i := range b.notes {
		b.notes[i].IsEditing = b.notes[i].ID == id
	}
	return nil
}

func (b *Board) StopEditing() {
	b.stopEditing()
}

func (b *Board) stopEditing() {
	for i := range b.notes {
		b.notes[i].IsEditing = false
	}
}

// Editing returns the note currently flagged as editing, if any.
func (b *Board) Editing() (Note, bool) {
	return lo.Find(b.notes, func(n Note) bool { return n.IsEditing })
}

// DeleteNote removes the note. Arrows pointing at it stay in the document and
// are skipped when rendering.
func (b *Board) DeleteNote(id string) error {
	i := slices.IndexFunc(b.notes, func(n Note) bool { return n.ID == id })
	if i < 0 {
		return fmt.Errorf("delete note %s: %w", id, apperr.ErrNotFound)
	}
	b.notes = slices.Delete(b.notes, i, i+1)
	if b.selectedNote == id {
		b.selectedNote = ""
	}
	b.touch()
	return nil
}

// AddArrow merges an arrow produced by the drawing session.
func (b *Board) AddArrow(a Arrow) error {
	if slices.ContainsFunc(b.arrows, func(x Arrow) bool { return x.ID == a.ID }) {
		return fmt.Errorf("arrow %s: %w", a.ID, apperr.ErrAlreadyExists)
	}
	for _, id := range []string{a.StartID, a.EndID} {
		if _, err := b.note(id); err != nil {
			return fmt.Errorf("arrow %s: %w", a.ID, err)
		}
	}
	b.arrows = append(b.arrows, a)
	b.touch()
	return nil
}

func (b *Board) DeleteArrow(id string) error {
	i := slices.IndexFunc(b.arrows, func(a Arrow) bool { return a.ID == id })
	if i < 0 {
		return fmt.Errorf("delete arrow %s: %w", id, apperr.ErrNotFound)
	}
	b.arrows = slices.Delete(b.arrows, i, i+1)
	if b.selectedArrow == id {
		b.selectedArrow = ""
	}
	b.touch()
	return nil
}

// PruneArrows drops arrows with a dangling endpoint and returns how many went.
func (b *Board) PruneArrows() int {
	stale := Dangling(b.notes, b.arrows)
	if len(stale) == 0 {
		return 0
	}
	b.arrows = lo.Without(b.arrows, stale...)
	b.touch()
	return len(stale)
}

// Rendered resolves the geometry of every drawable arrow.
func (b *Board) Rendered() []RenderedArrow {
	return RenderArrows(b.notes, b.arrows)
}

// SelectNote selects a note and clears any arrow selection.
func (b *Board) SelectNote(id string) {
	b.selectedNote = id
	b.selectedArrow = ""
}

func (b *Board) SelectArrow(id string) {
	b.selectedArrow = id
	b.selectedNote = ""
}

func (b *Board) ClearSelection() {
	b.selectedNote = ""
	b.selectedArrow = ""
}

func (b *Board) SelectedNote() (string, bool) {
	return b.selectedNote, b.selectedNote != ""
}

func (b *Board) SelectedArrow() (string, bool) {
	return b.selectedArrow, b.selectedArrow != ""
}
