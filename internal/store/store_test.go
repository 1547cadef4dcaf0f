package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelab/shoefit/internal/types"
)

func seedShoes() []types.Shoe {
	return []types.Shoe{
		{
			Name:            "Alpha One",
			Brand:           "Alpha",
			Model:           "One",
			Price:           130,
			WeightOunces:    9.2,
			OffsetMM:        8,
			Roles:           []types.Role{types.RoleDaily, types.RoleTempo},
			SupportLevel:    types.SupportNeutral,
			CushioningScale: 6,
			PaceRange:       types.PaceStrings{MinPacePerKm: "4:00", MaxPacePerKm: "6:30"},
			Terrain:         []types.Terrain{types.TerrainRoad},
			DurabilityKm:    650,
			PriceTier:       types.TierMid,
			WidthOptions:    []types.Width{types.WidthStandard},
			ReleaseYear:     2025,
		},
		{
			Name:            "Beta Trail",
			Brand:           "Beta",
			Price:           170,
			Roles:           []types.Role{types.RoleTrail},
			SupportLevel:    types.SupportNeutral,
			CushioningScale: 7,
			PaceRange:       types.PaceStrings{MinPacePerKm: "5:00", MaxPacePerKm: "7:30"},
			Terrain:         []types.Terrain{types.TerrainTrail},
			DurabilityKm:    900,
			PriceTier:       types.TierMid,
			WidthOptions:    []types.Width{types.WidthStandard, types.WidthWide},
		},
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSeedAndListRoundTrip(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Seed(seedShoes()))

	shoes, err := db.ListShoes()
	require.NoError(t, err)
	require.Len(t, shoes, 2)

	// Name-ordered read-back.
	first := shoes[0]
	assert.Equal(t, "Alpha One", first.Name)
	assert.Equal(t, "Alpha", first.Brand)
	assert.Equal(t, []types.Role{types.RoleDaily, types.RoleTempo}, first.Roles)
	assert.Equal(t, types.PaceStrings{MinPacePerKm: "4:00", MaxPacePerKm: "6:30"}, first.PaceRange)
	assert.Equal(t, types.TierMid, first.PriceTier)
	assert.InDelta(t, 9.2, first.WeightOunces, 0.001)
	assert.Equal(t, 2025, first.ReleaseYear)
}

func TestSeedUpsertsExistingRows(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Seed(seedShoes()))

	updated := seedShoes()
	updated[0].Price = 99

	require.NoError(t, db.Seed(updated))

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	shoes, err := db.ListShoes()
	require.NoError(t, err)
	assert.InDelta(t, 99, shoes[0].Price, 0.001)
}

func TestCountAndLastUpdated(t *testing.T) {
	db := newTestDB(t)

	count, err := db.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	ts, err := db.LastUpdated()
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	require.NoError(t, db.Seed(seedShoes()))

	count, err = db.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	ts, err = db.LastUpdated()
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}
