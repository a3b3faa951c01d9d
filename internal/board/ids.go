package board

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// IDGen hands out arrow IDs as a millisecond timestamp plus a monotonic
// counter, so two arrows created in the same millisecond still differ.
type IDGen struct {
	now func() time.Time
	seq uint64
}

func NewIDGen() *IDGen {
	return &IDGen{now: time.Now}
}

func (g *IDGen) ArrowID() string {
	g.seq++
	return strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + strconv.FormatUint(g.seq, 10)
}

func (g *IDGen) NoteID() string {
	return uuid.NewString()
}
