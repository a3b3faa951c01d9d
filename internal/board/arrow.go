package board

import (
	"github.com/samber/lo"

	"postboard/internal/geom"
)

// Arrow connects two notes by ID. The endpoints are fixed at creation; the
// drawn geometry is recomputed from the notes every frame.
type Arrow struct {
	ID            string   `json:"id"`
	StartID       string   `json:"startId"`
	EndID         string   `json:"endId"`
	StartPosition Position `json:"startPosition"`
	EndPosition   Position `json:"endPosition"`
}

// RenderedArrow is an arrow with anchors resolved against current note positions.
type RenderedArrow struct {
	Arrow
	Start ConnectionPoint
	End   ConnectionPoint
}

func (r RenderedArrow) Segment() geom.Segment {
	return geom.Segment{A: r.Start.Point(), B: r.End.Point()}
}

// TempArrow is the live preview drawn while an arrow is being dragged out.
type TempArrow struct {
	StartX float64
	StartY float64
	EndX   float64
	EndY   float64
}

func (t TempArrow) Segment() geom.Segment {
	return geom.Segment{A: geom.Pt(t.StartX, t.StartY), B: geom.Pt(t.EndX, t.EndY)}
}

// ResolveAnchors gives the anchors for a persisted arrow: each end takes the
// anchor on its own note closest to the other note's position.
func ResolveAnchors(start, end *Note) (from, to ConnectionPoint, ok bool) {
	if start == nil || end == nil {
		return from, to, false
	}
	from, okFrom := ClosestPoint(start, end.Position())
	to, okTo := ClosestPoint(end, start.Position())
	return from, to, okFrom && okTo
}

// PreviewArrow starts at the anchor of start closest to the pointer and ends
// exactly at the pointer.
func PreviewArrow(start *Note, pointer geom.Point) (TempArrow, bool) {
	from, ok := ClosestPoint(start, pointer)
	if !ok {
		return TempArrow{}, false
	}
	return TempArrow{StartX: from.X, StartY: from.Y, EndX: pointer.X, EndY: pointer.Y}, true
}

// ArrowToward builds an arrow between two notes with both anchors resolved
// against the same bridging point, typically where the user clicked.
func ArrowToward(id string, start, end *Note, target geom.Point) (Arrow, bool) {
	from, okFrom := ClosestPoint(start, target)
	to, okTo := ClosestPoint(end, target)
	if !okFrom || !okTo {
		return Arrow{}, false
	}
	return Arrow{
		ID:            id,
		StartID:       start.ID,
		EndID:         end.ID,
		StartPosition: from.Position,
		EndPosition:   to.Position,
	}, true
}

// ArrowBetween builds an arrow using the persisted-arrow anchor rule.
func ArrowBetween(id string, start, end *Note) (Arrow, bool) {
	from, to, ok := ResolveAnchors(start, end)
	if !ok {
		return Arrow{}, false
	}
	return Arrow{
		ID:            id,
		StartID:       start.ID,
		EndID:         end.ID,
		StartPosition: from.Position,
		EndPosition:   to.Position,
	}, true
}

// RenderArrows resolves every arrow whose endpoints exist in notes. Arrows
// with a dangling reference or an unusable note are left out.
func RenderArrows(notes []Note, arrows []Arrow) []RenderedArrow {
	byID := lo.KeyBy(notes, func(n Note) string { return n.ID })
	out := make([]RenderedArrow, 0, len(arrows))
	for _, a := range arrows {
		start, okStart := byID[a.StartID]
		end, okEnd := byID[a.EndID]
		if !okStart || !okEnd {
			continue
		}
		from, to, ok := ResolveAnchors(&start, &end)
		if !ok {
			continue
		}
		out = append(out, RenderedArrow{Arrow: a, Start: from, End: to})
	}
	return out
}

// Dangling returns the arrows that reference a note not present in notes.
func Dangling(notes []Note, arrows []Arrow) []Arrow {
	ids := lo.SliceToMap(notes, func(n Note) (string, struct{}) { return n.ID, struct{}{} })
	return lo.Filter(arrows, func(a Arrow, _ int) bool {
		_, okStart := ids[a.StartID]
		_, okEnd := ids[a.EndID]
		return !okStart || !okEnd
	})
}
