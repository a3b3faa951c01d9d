package board

import (
	"log/slog"

	"github.com/samber/lo"

	"postboard/internal/geom"
	"postboard/internal/input"
	"postboard/internal/viewport"
)

// Host is the owner of the note set as seen by the drawing session. The
// session reads notes and hands back new entities; it never mutates them.
type Host interface {
	Notes() []Note
	// CreateNote may decline by returning false.
	CreateNote(at geom.Point) (Note, bool)
	ArrowCreated(a Arrow)
}

// Notifier receives clicks on existing notes and arrows made while no arrow
// is being drawn.
type Notifier interface {
	NoteClicked(ev input.PointerEvent, noteID string)
	ArrowClicked(arrowID string)
}

// View supplies the current transform.
type View interface {
	Transform() viewport.Transform
}

// ClickRouter splits clicks between note-local handling and the global scan
// over the canvas.
type ClickRouter interface {
	HandleNoteClick(ev input.PointerEvent, noteID string) bool
	HandleCanvasClick(ev input.PointerEvent) bool
}

// ArrowStart is the note anchoring an arrow that is being drawn.
type ArrowStart struct {
	ID       string
	Position Position
}

// Session is the arrow-draw state machine. It is idle until Begin and
// returns to idle, with all transient state cleared, on completion or Cancel.
type Session struct {
	host    Host
	view    View
	surface viewport.Surface
	events  *input.Dispatcher
	ids     *IDGen
	logger  *slog.Logger

	start *ArrowStart
	temp  *TempArrow
	subs  []input.Handle
}

var _ ClickRouter = (*Session)(nil)

func NewSession(host Host, view View, surface viewport.Surface, events *input.Dispatcher, ids *IDGen, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if ids == nil {
		ids = NewIDGen()
	}
	return &Session{
		host:    host,
		view:    view,
		surface: surface,
		events:  events,
		ids:     ids,
		logger:  logger,
	}
}

func (s *Session) Drawing() bool { return s.start != nil }

func (s *Session) ArrowStart() (ArrowStart, bool) {
	if s.start == nil {
		return ArrowStart{}, false
	}
	return *s.start, true
}

func (s *Session) TempArrow() (TempArrow, bool) {
	if s.temp == nil {
		return TempArrow{}, false
	}
	return *s.temp, true
}

// Begin starts drawing from the given anchor of noteID. Pointer-move and key
// subscriptions live exactly as long as the drawing does.
func (s *Session) Begin(noteID string, pos Position) bool {
	if _, ok := s.findNote(noteID); !ok {
		s.logger.Warn("arrow: start note not found", slog.String("note_id", noteID))
		return false
	}
	s.reset()
	s.start = &ArrowStart{ID: noteID, Position: pos}
	if s.events != nil {
		s.subs = append(s.subs,
			s.events.OnPointerMove(func(ev input.PointerEvent) { s.Move(ev.Screen) }),
			s.events.OnKey(func(ev input.KeyEvent) bool {
				if ev.Key != "esc" || !s.Drawing() {
					return false
				}
				s.Cancel()
				return true
			}),
		)
	}
	s.logger.Debug("arrow: drawing started", slog.String("note_id", noteID), slog.String("position", string(pos)))
	return true
}

// Move updates the preview arrow for a pointer at screen point p.
func (s *Session) Move(p geom.Point) {
	if s.start == nil {
		return
	}
	start, ok := s.findNote(s.start.ID)
	if !ok {
		return
	}
	at := s.toCanvas(p)
	if t, ok := PreviewArrow(&start, at); ok {
		s.temp = &t
	}
}

// Cancel abandons the current drawing, if any.
func (s *Session) Cancel() {
	if s.start != nil {
		s.logger.Debug("arrow: drawing cancelled", slog.String("note_id", s.start.ID))
	}
	s.reset()
}

// HandleNoteClick completes the arrow on noteID. Clicking the note the arrow
// started from is ignored and leaves the drawing untouched.
func (s *Session) HandleNoteClick(ev input.PointerEvent, noteID string) bool {
	if s.start == nil || s.start.ID == noteID {
		return false
	}
	start, okStart := s.findNote(s.start.ID)
	if !okStart {
		s.logger.Warn("arrow: start note disappeared while drawing", slog.String("note_id", s.start.ID))
		s.reset()
		return false
	}
	end, okEnd := s.findNote(noteID)
	if !okEnd {
		return false
	}
	at := s.toCanvas(ev.Screen)
	a, ok := ArrowToward(s.ids.ArrowID(), &start, &end, at)
	if !ok {
		return false
	}
	s.reset()
	s.host.ArrowCreated(a)
	return true
}

// HandleCanvasClick routes a click that landed on the overlay. A note under
// the pointer completes the arrow on it; empty canvas asks the host for a new
// note there and connects to it.
func (s *Session) HandleCanvasClick(ev input.PointerEvent) bool {
	if s.start == nil {
		return false
	}
	at := s.toCanvas(ev.Screen)
	if id, ok := HitTest(s.host.Notes(), at); ok {
		return s.HandleNoteClick(ev, id)
	}

	startID := s.start.ID
	s.reset()

	created, ok := s.host.CreateNote(at)
	if !ok {
		s.logger.Info("arrow: note creation declined", slog.Float64("x", at.X), slog.Float64("y", at.Y))
		return true
	}
	start, ok := s.findNote(startID)
	if !ok {
		return true
	}
	if a, ok := ArrowBetween(s.ids.ArrowID(), &start, &created); ok {
		s.host.ArrowCreated(a)
	}
	return true
}

func (s *Session) reset() {
	for _, h := range s.subs {
		h.Remove()
	}
	s.subs = nil
	s.start = nil
	s.temp = nil
}

func (s *Session) toCanvas(p geom.Point) geom.Point {
	return s.view.Transform().SurfaceToCanvas(s.surface, p)
}

func (s *Session) findNote(id string) (Note, bool) {
	return lo.Find(s.host.Notes(), func(n Note) bool { return n.ID == id })
}
