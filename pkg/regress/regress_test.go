package regress

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHarness(t *testing.T) (*Harness, *BaselineStore) {
	t.Helper()
	store := testBaselineStore(t)
	return NewHarness(store, log.New(io.Discard)), store
}

func TestHarnessRunNewCases(t *testing.T) {
	h, _ := testHarness(t)
	cases := []Case{
		{Name: "benzene", SMILES: "c1ccccc1"},
		{Name: "ethanol", SMILES: "CCO"},
	}

	summary, err := h.Run(context.Background(), cases, RunOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	assert.Equal(t, 2, summary.New)
	assert.Equal(t, 0, summary.OK)
	assert.True(t, summary.Clean(), "unbaselined cases must not fail a run")
	for _, r := range summary.Results {
		assert.Equal(t, StatusNew, r.Status)
		assert.NotEmpty(t, r.PositionHash)
	}
}

func TestHarnessRunUpdateThenOK(t *testing.T) {
	h, store := testHarness(t)
	ctx := context.Background()
	cases := []Case{
		{Name: "benzene", SMILES: "c1ccccc1"},
		{Name: "aspirin", SMILES: "CC(=O)Oc1ccccc1C(=O)O"},
	}

	seeded, err := h.Run(ctx, cases, RunOptions{Update: true})
	require.NoError(t, err)
	assert.Equal(t, 2, seeded.New)

	base, err := store.Get(ctx, "benzene")
	require.NoError(t, err)
	assert.Equal(t, 6, base.Atoms)
	assert.NotEmpty(t, base.PositionHash)

	// Layout is deterministic, so a second run matches its baselines.
	summary, err := h.Run(ctx, cases, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.OK)
	assert.Equal(t, 0, summary.Changed)
	assert.True(t, summary.Clean())
	for _, r := range summary.Results {
		assert.Equal(t, StatusOK, r.Status)
		assert.Zero(t, r.OverlapDelta)
	}
}

func TestHarnessRunDetectsChange(t *testing.T) {
	h, store := testHarness(t)
	ctx := context.Background()
	cases := []Case{{Name: "benzene", SMILES: "c1ccccc1"}}

	_, err := h.Run(ctx, cases, RunOptions{Update: true})
	require.NoError(t, err)

	seeded, err := store.Get(ctx, "benzene")
	require.NoError(t, err)

	// Tamper with the stored fingerprint to simulate drifted geometry
	// with a better overlap score than the current code produces.
	require.NoError(t, store.Put(ctx, Baseline{
		Name:         "benzene",
		PositionHash: "deadbeef",
		Overlap:      seeded.Overlap - 5,
		Atoms:        seeded.Atoms,
	}))

	summary, err := h.Run(ctx, cases, RunOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	r := summary.Results[0]
	assert.Equal(t, StatusChanged, r.Status)
	assert.InDelta(t, 5.0, r.OverlapDelta, 1e-9)
	assert.True(t, r.Worse)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 1, summary.WorseOverlaps)
	assert.False(t, summary.Clean())
}

func TestHarnessRunParseError(t *testing.T) {
	h, _ := testHarness(t)
	cases := []Case{
		{Name: "broken", SMILES: "C(C"},
		{Name: "ethanol", SMILES: "CCO"},
	}

	summary, err := h.Run(context.Background(), cases, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, summary.New)
	assert.False(t, summary.Clean())

	broken := summary.Results[0]
	assert.Equal(t, StatusError, broken.Status)
	require.Error(t, broken.Err)
	assert.Contains(t, broken.Err.Error(), "broken")
}

func TestHarnessRunTagFilter(t *testing.T) {
	h, _ := testHarness(t)
	cases := []Case{
		{Name: "benzene", SMILES: "c1ccccc1", Tags: []string{"ring"}},
		{Name: "ethanol", SMILES: "CCO", Tags: []string{"chain"}},
	}

	summary, err := h.Run(context.Background(), cases, RunOptions{Tags: []string{"ring"}})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "benzene", summary.Results[0].Case.Name)
}

func TestHarnessRunOverlapStats(t *testing.T) {
	h, _ := testHarness(t)

	summary, err := h.Run(context.Background(), DefaultCases(), RunOptions{})
	require.NoError(t, err)
	assert.Zero(t, summary.Errors)

	assert.GreaterOrEqual(t, summary.MeanOverlap, 0.0)
	assert.GreaterOrEqual(t, summary.P90Overlap, 0.0)
	assert.GreaterOrEqual(t, summary.MaxOverlap, summary.MeanOverlap)
}

func TestHarnessRunCancelled(t *testing.T) {
	h, _ := testHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Run(ctx, DefaultCases(), RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
