// Package board is the diagram model: notes, arrows and the geometry that
// anchors arrows to notes.
package board

import (
	"strings"

	"postboard/internal/geom"
)

// Logical note size. The rendered footprint adds padding and border on every
// side and is what anchors and hit tests are measured against.
const (
	NoteWidth   = 200.0
	NoteHeight  = 150.0
	NotePadding = 10.0
	NoteBorder  = 2.0

	FootprintWidth  = NoteWidth + 2*(NotePadding+NoteBorder)
	FootprintHeight = NoteHeight + 2*(NotePadding+NoteBorder)
)

const DefaultColor = "#ffff88"

// Palette is the set of colours cycled through by the colour picker.
var Palette = []string{
	"#ffff88",
	"#ffb3ba",
	"#baffc9",
	"#bae1ff",
	"#ffdfba",
	"#e0bbff",
	"#ffffff",
	"#c9c9c9",
}

type Note struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Text      string  `json:"text"`
	IsEditing bool    `json:"isEditing"`
	Color     string  `json:"color"`
}

func (n Note) Position() geom.Point {
	return geom.Point{X: n.X, Y: n.Y}
}

// Bounds is the rendered footprint in canvas space.
func (n Note) Bounds() geom.Rect {
	return geom.Rect{X: n.X, Y: n.Y, W: FootprintWidth, H: FootprintHeight}
}

// Content is the text box inside padding and border.
func (n Note) Content() geom.Rect {
	inset := NotePadding + NoteBorder
	return geom.Rect{X: n.X + inset, Y: n.Y + inset, W: NoteWidth, H: NoteHeight}
}

// Valid reports whether the note has a usable position.
func (n Note) Valid() bool {
	return n.Position().Finite()
}

func (n Note) Lines() []string {
	return strings.Split(n.Text, "\n")
}

// NextColor returns the palette entry after c, wrapping around.
func NextColor(c string) string {
	for i, p := range Palette {
		if strings.EqualFold(p, c) {
			return Palette[(i+1)%len(Palette)]
		}
	}
	return Palette[0]
}
