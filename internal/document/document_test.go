package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinity/internal/codec"
	"infinity/internal/geom"
	"infinity/internal/history"
	"infinity/internal/model"
	"infinity/internal/view"
)

func sampleState(t *testing.T) history.State {
	t.Helper()
	c := model.NewCanvas()
	a := c.CreateNote(geom.Pt(10, 20))
	c.SetNoteText(a.ID, "hello")
	b := c.CreateCode(geom.Pt(300, 0))
	c.Connect(a, b, geom.SideRight, geom.SideLeft, model.DefaultConnectionColor)

	h := history.New(model.EmptySnapshot(), 0)
	current := c.Snapshot(view.Transform{Zoom: 1.5, Offset: geom.Pt(3, 4)})
	h.Record(current)
	return h.Export(current)
}

func TestRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "board.infinity")
	repo := NewRepository(nil)

	exists, err := repo.Exists(ctx, location)
	require.NoError(t, err)
	assert.False(t, exists)

	in := sampleState(t)
	require.NoError(t, repo.Save(ctx, location, in))

	out, err := repo.Load(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, in.Current, out.Current)
	assert.Len(t, out.Undo, 2)
	assert.Empty(t, out.Redo)
}

func TestRepository_LoadRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "bad.infinity")
	require.NoError(t, os.WriteFile(location, []byte(`{"format":"something-else"}`), 0o644))

	_, err := NewRepository(nil).Load(ctx, location)
	assert.ErrorIs(t, err, codec.ErrInvalidDocument)

	_, err = NewRepository(nil).Load(ctx, filepath.Join(t.TempDir(), "missing.infinity"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	s := sampleState(t).Current
	a, err := Fingerprint(s)
	require.NoError(t, err)
	b, err := Fingerprint(s.Clone())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	moved := s.Clone()
	moved.Notes[0].Pos = geom.Pt(11, 20)
	c, err := Fingerprint(moved)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
