package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solrift/statfx/internal/snapshot"
)

func floatPtr(v float32) *float32 { return &v }

func testSnapshot(id uint32) snapshot.Entity {
	return snapshot.Entity{
		ID:    id,
		Bases: []float32{100, 5, 100, 10},
		Effects: []snapshot.Effect{
			{
				Instance:    uuid.New(),
				Identity:    "blessing",
				Target:      0,
				Calculation: 1,
				Applied:     50,
				Remaining:   floatPtr(7.5),
			},
			{
				Instance:    uuid.New(),
				Identity:    "stunned",
				Target:      0,
				Calculation: 0,
				Applied:     0,
			},
		},
	}
}

func TestSaveLoadEntityRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewSnapshotRepository(pool)
	ctx := context.Background()

	want := testSnapshot(7)
	require.NoError(t, repo.SaveEntity(ctx, want))

	got, found, err := repo.LoadEntity(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Bases, got.Bases)
	require.Len(t, got.Effects, 2)

	byIdentity := map[string]snapshot.Effect{}
	for _, e := range got.Effects {
		byIdentity[e.Identity] = e
	}
	b := byIdentity["blessing"]
	assert.Equal(t, want.Effects[0].Instance, b.Instance)
	assert.Equal(t, uint8(1), b.Calculation)
	assert.InDelta(t, 50, b.Applied, 1e-4)
	require.NotNil(t, b.Remaining)
	assert.InDelta(t, 7.5, *b.Remaining, 1e-4)

	s := byIdentity["stunned"]
	assert.Nil(t, s.Remaining)
}

func TestSaveEntityReplacesPrevious(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewSnapshotRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.SaveEntity(ctx, testSnapshot(3)))

	updated := snapshot.Entity{
		ID:    3,
		Bases: []float32{200, 5, 100, 10},
	}
	require.NoError(t, repo.SaveEntity(ctx, updated))

	got, found, err := repo.LoadEntity(ctx, 3)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, updated.Bases, got.Bases)
	assert.Empty(t, got.Effects)
}

func TestLoadEntityMissing(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewSnapshotRepository(pool)

	_, found, err := repo.LoadEntity(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteEntity(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewSnapshotRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.SaveEntity(ctx, testSnapshot(5)))
	require.NoError(t, repo.DeleteEntity(ctx, 5))

	_, found, err := repo.LoadEntity(ctx, 5)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListEntityIDsAscending(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewSnapshotRepository(pool)
	ctx := context.Background()

	for _, id := range []uint32{9, 2, 5} {
		require.NoError(t, repo.SaveEntity(ctx, testSnapshot(id)))
	}

	ids, err := repo.ListEntityIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 5, 9}, ids)
}
