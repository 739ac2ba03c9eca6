package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solrift/statfx/internal/effect"
)

func TestExportEntityCapturesPersistentStateOnly(t *testing.T) {
	g, _ := newTestEngine(t, nil)
	ent := spawnTestEntity(t, g)

	blessing := persistentAdd("blessing", 50)
	blessing.Duration = effect.PersistentFor(10)
	g.AddEffect(ent.ID, blessing)
	g.AddEffect(ent.ID, effect.Marker[attr]("stunned", 0))
	g.AddEffect(ent.ID, effect.Effect[attr]{
		Identity:    "poison",
		Target:      health,
		Calculation: effect.CalcAdditive,
		Magnitude:   effect.Fixed[attr](-1),
		Duration:    effect.Continuous(),
	})

	g.Tick(2)

	snap, ok := g.ExportEntity(ent.ID)
	require.True(t, ok)
	assert.Equal(t, ent.ID, snap.ID)
	assert.Equal(t, []float32{100, 5, 100, 10}, snap.Bases)

	require.Len(t, snap.Effects, 2)
	byIdentity := map[string]int{}
	for i, row := range snap.Effects {
		byIdentity[row.Identity] = i
	}
	require.Contains(t, byIdentity, "blessing")
	require.Contains(t, byIdentity, "stunned")
	assert.NotContains(t, byIdentity, "poison")

	b := snap.Effects[byIdentity["blessing"]]
	assert.InDelta(t, 50, b.Applied, 1e-4)
	require.NotNil(t, b.Remaining)
	assert.InDelta(t, 8, *b.Remaining, 1e-4)

	s := snap.Effects[byIdentity["stunned"]]
	assert.Nil(t, s.Remaining)
}

func TestExportUnknownEntity(t *testing.T) {
	g, _ := newTestEngine(t, nil)
	_, ok := g.ExportEntity(42)
	assert.False(t, ok)
}

func TestRestoreEntityRoundTrip(t *testing.T) {
	source, _ := newTestEngine(t, nil)
	ent := spawnTestEntity(t, source)

	blessing := persistentAdd("blessing", 50)
	blessing.Duration = effect.PersistentFor(10)
	source.AddEffect(ent.ID, blessing)
	source.AddEffect(ent.ID, effect.Marker[attr]("stunned", 0))
	source.Tick(2)

	snap, ok := source.ExportEntity(ent.ID)
	require.True(t, ok)

	restored, _ := newTestEngine(t, nil)
	require.NoError(t, restored.RestoreEntity(snap))

	got, ok := restored.World().Get(ent.ID)
	require.True(t, ok)
	assert.InDelta(t, 150, got.Stats.ModifiedBase(health), 1e-4)
	assert.InDelta(t, 150, got.Stats.Current(health), 1e-4)
	assert.True(t, restored.HasEffect(ent.ID, "blessing"))
	assert.True(t, restored.HasEffect(ent.ID, "stunned"))

	// Instance identity survives the round trip.
	assert.Equal(t, ent.Effects.All()[0].Instance, got.Effects.All()[0].Instance)

	// The remaining expiry was preserved: the blessing runs out 8 seconds in
	// and reverses.
	for i := 0; i < 8; i++ {
		restored.Tick(1)
	}
	assert.False(t, restored.HasEffect(ent.ID, "blessing"))
	assert.True(t, restored.HasEffect(ent.ID, "stunned"))
	assert.InDelta(t, 100, got.Stats.Current(health), 1e-4)
}

func TestRestoreEntityRejectsDuplicateID(t *testing.T) {
	g, _ := newTestEngine(t, nil)
	ent := spawnTestEntity(t, g)

	snap, ok := g.ExportEntity(ent.ID)
	require.True(t, ok)

	err := g.RestoreEntity(snap)
	assert.Error(t, err)
}
