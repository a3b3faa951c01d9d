package board

import (
	"math"

	"github.com/samber/lo"

	"postboard/internal/geom"
)

// HitTest returns the first note, in slice order, whose footprint contains p.
// Overlapping notes resolve to whichever comes first.
func HitTest(notes []Note, p geom.Point) (string, bool) {
	n, ok := lo.Find(notes, func(n Note) bool {
		return n.Valid() && n.Bounds().Contains(p)
	})
	if !ok {
		return "", false
	}
	return n.ID, true
}

// ArrowAt returns the rendered arrow whose segment passes closest to p, as
// long as it is within tolerance canvas units.
func ArrowAt(arrows []RenderedArrow, p geom.Point, tolerance float64) (string, bool) {
	bestID := ""
	bestDist := math.Inf(1)
	for _, a := range arrows {
		if d := a.Segment().DistanceTo(p); d < bestDist {
			bestID, bestDist = a.ID, d
		}
	}
	if bestID == "" || bestDist > tolerance {
		return "", false
	}
	return bestID, true
}
