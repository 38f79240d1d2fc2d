package gallery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldraw/moldraw/pkg/layout"
)

func testSnapshot(id, source, formula string) *layout.Snapshot {
	return &layout.Snapshot{
		ID:      id,
		Version: layout.SnapshotVersion,
		Meta:    layout.Metadata{Source: source, Formula: formula},
	}
}

func TestNormalize(t *testing.T) {
	d := &Drawing{Snapshot: testSnapshot("snap-1", "CCO", "C2H6O")}
	require.NoError(t, normalize(d))

	assert.Equal(t, "snap-1", d.ID, "ID should come from the snapshot")
	assert.Equal(t, "CCO", d.Source)
	assert.Equal(t, "C2H6O", d.Formula)
	assert.False(t, d.CreatedAt.IsZero(), "CreatedAt should be filled")
}

func TestNormalizeKeepsExplicitFields(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &Drawing{
		ID:        "custom",
		Source:    "custom-source",
		Snapshot:  testSnapshot("snap-1", "CCO", "C2H6O"),
		CreatedAt: at,
	}
	require.NoError(t, normalize(d))

	assert.Equal(t, "custom", d.ID)
	assert.Equal(t, "custom-source", d.Source)
	assert.Equal(t, at, d.CreatedAt)
}

func TestNormalizeGeneratesID(t *testing.T) {
	d := &Drawing{Snapshot: testSnapshot("", "CCO", "C2H6O")}
	require.NoError(t, normalize(d))
	assert.NotEmpty(t, d.ID, "ID should be generated when the snapshot has none")
}

func TestNormalizeRequiresSnapshot(t *testing.T) {
	assert.ErrorIs(t, normalize(&Drawing{}), ErrNoSnapshot)
	assert.ErrorIs(t, normalize(nil), ErrNoSnapshot)
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	defer store.Close(ctx)

	d := &Drawing{Snapshot: testSnapshot("snap-1", "CCO", "C2H6O")}
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Get(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "CCO", got.Source)
	assert.Equal(t, "C2H6O", got.Formula)
	require.NotNil(t, got.Snapshot)
	assert.Equal(t, layout.SnapshotVersion, got.Snapshot.Version)
}

func TestMemoryNotFound(t *testing.T) {
	store := NewMemory()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDuplicateSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Save(ctx, &Drawing{Snapshot: testSnapshot("dup", "C", "CH4")}))
	err := store.Save(ctx, &Drawing{Snapshot: testSnapshot("dup", "C", "CH4")})
	assert.ErrorIs(t, err, ErrExists)
}

func TestMemoryListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		err := store.Save(ctx, &Drawing{
			Snapshot:  testSnapshot(id, "CCO", "C2H6O"),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].ID, "newest first")
	assert.Equal(t, "a", entries[2].ID)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
	assert.Equal(t, "b", limited[1].ID)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultListLimit},
		{-5, DefaultListLimit},
		{10, 10},
		{MaxListLimit, MaxListLimit},
		{MaxListLimit + 1, MaxListLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.in), "clampLimit(%d)", tt.in)
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrExists))
	assert.False(t, errors.Is(ErrExists, ErrNoSnapshot))
}
