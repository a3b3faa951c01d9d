package store

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/apperr"
	"postboard/internal/board"
)

func sampleDocument() board.Document {
	return board.Document{
		Postits: []board.Note{
			{ID: "a", X: 0, Y: 0, Text: "start", Color: "#ffff88"},
			{ID: "b", X: 400.5, Y: -20, Text: "next\nline", Color: "#bae1ff", IsEditing: true},
		},
		Arrows: []board.Arrow{
			{ID: "1", StartID: "a", EndID: "b", StartPosition: board.Right, EndPosition: board.Left},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "board.json")
	doc := sampleDocument()

	require.NoError(t, Save(path, doc))
	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, doc, got)
}

func TestEncodedShapeHasOnlyTwoSequences(t *testing.T) {
	data, err := Encode(sampleDocument())
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Len(t, top, 2)
	assert.Contains(t, top, "postits")
	assert.Contains(t, top, "arrows")
	assert.Contains(t, string(data), `"startId": "a"`)
	assert.Contains(t, string(data), `"isEditing": true`)
}

func TestEncodeEmptyDocument(t *testing.T) {
	data, err := Encode(board.Document{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"postits": [], "arrows": []}`, string(data))
}

func TestDecodeToleratesBadPositions(t *testing.T) {
	doc, err := Decode([]byte(`{
		"postits": [
			{"id": "ok", "x": 1, "y": 2},
			{"id": "nox", "y": 2},
			{"id": "str", "x": "left", "y": 2}
		],
		"arrows": []
	}`))
	require.NoError(t, err)
	require.Len(t, doc.Postits, 3)

	assert.True(t, doc.Postits[0].Valid())
	assert.True(t, math.IsNaN(doc.Postits[1].X))
	assert.True(t, math.IsNaN(doc.Postits[2].X))

	data, err := Encode(doc)
	require.NoError(t, err, "invalid positions are written as null")
	assert.Contains(t, string(data), `"x": null`)
}

func TestDecodeRejectsUnknownTopLevelKeys(t *testing.T) {
	_, err := Decode([]byte(`{"postits": [], "arrows": [], "zoom": 2}`))
	assert.ErrorIs(t, err, apperr.ErrInvalidDocument)

	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, apperr.ErrInvalidDocument)
}

func TestDecodeMissingSequences(t *testing.T) {
	doc, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Postits)
	assert.NotNil(t, doc.Arrows)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAutosaveRotatesSlots(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, 3, nil)
	doc := sampleDocument()

	var paths []string
	for i := 0; i < 4; i++ {
		p, err := a.Save("plan", doc)
		require.NoError(t, err)
		paths = append(paths, filepath.Base(p))
	}

	assert.Equal(t, []string{"auto-plan-00.json", "auto-plan-01.json", "auto-plan-02.json", "auto-plan-00.json"}, paths)
	assert.Equal(t, 1, a.Index())

	got, err := Load(filepath.Join(dir, "auto-plan-01.json"))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestAutosaveFallsBackToUniqueName(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, 10, nil)
	// a directory squatting on the slot path makes the rename fail
	require.NoError(t, os.Mkdir(a.SlotPath("plan", 0), 0o755))

	p, err := a.Save("plan", sampleDocument())
	require.NoError(t, err)

	assert.Regexp(t, `^auto-[0-9a-f-]{6}\.json$`, filepath.Base(p))
	assert.FileExists(t, p)
	assert.Equal(t, 1, a.Index())
}

func TestAutosaveDefaultName(t *testing.T) {
	a := NewAutosaver(t.TempDir(), 0, nil)
	p, err := a.Save("", board.Document{})
	require.NoError(t, err)
	assert.Equal(t, "auto-untitled-00.json", filepath.Base(p))
	assert.Zero(t, a.Index())
}

func TestWatchReportsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, Save(path, board.Document{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, discardLogger(), func() { changes.Add(1) })
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, Save(path, sampleDocument()))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("{}"), 0o644))

	assert.Eventually(t, func() bool { return changes.Load() == 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
