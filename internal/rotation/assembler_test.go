package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelab/shoefit/internal/types"
)

func scored(name string, score float64, price float64, roles ...types.Role) types.ScoredShoe {
	return types.ScoredShoe{
		Shoe: types.Shoe{
			Name:  name,
			Brand: "Test",
			Price: price,
			Roles: roles,
		},
		Score: score,
		Breakdown: types.SimilarityBreakdown{
			Pace:        0.8,
			Support:     0.8,
			Cushioning:  0.8,
			RoleFit:     0.8,
			Versatility: 0.8,
		},
	}
}

func userNeeding(roles ...types.Role) types.UserVector {
	return types.UserVector{
		RolesNeeded: roles,
		PriceTier:   types.TierMid,
	}
}

func names(rotation []types.ScoredShoe) []string {
	out := make([]string, 0, len(rotation))
	for _, item := range rotation {
		out = append(out, item.Shoe.Name)
	}
	return out
}

func TestAssembleCoversNeededRoles(t *testing.T) {
	assembler := NewDefaultAssembler()
	user := userNeeding(types.RoleDaily, types.RoleLongRun, types.RoleTempo)

	pool := []types.ScoredShoe{
		scored("daily-ace", 14, 130, types.RoleDaily),
		scored("long-hauler", 13, 150, types.RoleLongRun),
		scored("speedster", 12, 160, types.RoleTempo),
		scored("bench-warmer", 11, 120, types.RoleRecovery),
	}

	rotation := assembler.Assemble(user, pool)

	assert.ElementsMatch(t, []string{"daily-ace", "long-hauler", "speedster"}, names(rotation))
	assert.Empty(t, UncoveredRoles(user, rotation))
}

func TestAssembleRespectsCaps(t *testing.T) {
	manyRoles := []types.Role{
		types.RoleDaily, types.RoleLongRun, types.RoleTempo, types.RoleRace,
		types.RoleTrail, types.RoleRecovery, types.RoleStability,
	}

	pool := make([]types.ScoredShoe, 0, len(manyRoles))
	for i, role := range manyRoles {
		pool = append(pool, scored(string(role)+"-shoe", float64(20-i), 140, role))
	}

	assembler := NewDefaultAssembler()

	user := userNeeding(manyRoles...)
	rotation := assembler.Assemble(user, pool)
	assert.LessOrEqual(t, len(rotation), 5)

	user.PreferVersatile = true
	rotation = assembler.Assemble(user, pool)
	assert.LessOrEqual(t, len(rotation), 3)
}

func TestAssembleNeverDuplicatesOrPicksZeroScores(t *testing.T) {
	assembler := NewDefaultAssembler()
	user := userNeeding(types.RoleDaily, types.RoleTempo)

	excluded := scored("excluded", 0, 100, types.RoleDaily, types.RoleTempo)
	generalist := scored("generalist", 10, 140, types.RoleDaily, types.RoleTempo)

	rotation := assembler.Assemble(user, []types.ScoredShoe{excluded, generalist})

	assert.Equal(t, []string{"generalist"}, names(rotation))

	seen := map[string]bool{}
	for _, item := range rotation {
		assert.False(t, seen[item.Shoe.Name])
		seen[item.Shoe.Name] = true
	}
}

func TestAssembleAnchorsEssentialRolesFirst(t *testing.T) {
	assembler := NewDefaultAssembler()
	user := userNeeding(types.RoleDaily, types.RoleStability)

	pool := []types.ScoredShoe{
		scored("stability-pick", 9, 140, types.RoleStability),
		scored("daily-pick", 15, 140, types.RoleDaily),
	}

	rotation := assembler.Assemble(user, pool)

	// Daily anchors before stability regardless of raw score order.
	require.Len(t, rotation, 2)
	assert.Equal(t, "daily-pick", rotation[0].Shoe.Name)
	assert.Equal(t, "stability-pick", rotation[1].Shoe.Name)
}

func TestAssembleStopsWhenCoverageCannotImprove(t *testing.T) {
	assembler := NewDefaultAssembler()
	user := userNeeding(types.RoleDaily, types.RoleTrail)

	// Nothing in the pool covers trail; the coverage loop must not pad
	// the rotation with irrelevant shoes.
	pool := []types.ScoredShoe{
		scored("daily-pick", 14, 140, types.RoleDaily),
		scored("recovery-one", 13, 140, types.RoleRecovery),
		scored("recovery-two", 12, 140, types.RoleRecovery),
	}

	rotation := assembler.Assemble(user, pool)

	assert.Equal(t, []string{"daily-pick"}, names(rotation))
	assert.Equal(t, []types.Role{types.RoleTrail}, UncoveredRoles(user, rotation))
}

func TestAssembleFlexPickFillsThinRotation(t *testing.T) {
	assembler := NewDefaultAssembler()
	user := userNeeding(types.RoleDaily)

	pool := []types.ScoredShoe{
		scored("daily-pick", 14, 140, types.RoleDaily),
		scored("focused-extra", 13, 140, types.RoleRace),
		scored("generalist", 12, 140, types.RoleTempo, types.RoleRace),
	}

	rotation := assembler.Assemble(user, pool)

	// One anchor plus the multi-role flex pick; the single-role extra is
	// skipped even though it outscores the generalist.
	assert.Equal(t, []string{"daily-pick", "generalist"}, names(rotation))
}

func TestPriceFactor(t *testing.T) {
	assembler := NewDefaultAssembler()

	budgetUser := types.UserVector{PriceTier: types.TierBudget}
	midUser := types.UserVector{PriceTier: types.TierMid}
	premiumUser := types.UserVector{PriceTier: types.TierPremium}

	empty := []types.ScoredShoe{}
	started := []types.ScoredShoe{scored("first", 10, 100, types.RoleDaily)}

	tests := []struct {
		name     string
		user     *types.UserVector
		price    float64
		rotation []types.ScoredShoe
		expected float64
	}{
		{name: "premium never discounts", user: &premiumUser, price: 260, rotation: empty, expected: 1},
		{name: "budget first pick over threshold", user: &budgetUser, price: 160, rotation: empty, expected: 0.8},
		{name: "budget first pick under threshold", user: &budgetUser, price: 140, rotation: empty, expected: 1},
		{name: "mid first pick over threshold", user: &midUser, price: 220, rotation: empty, expected: 0.9},
		{name: "budget over tolerance", user: &budgetUser, price: 120, rotation: started, expected: 0.75},
		{name: "budget within tolerance boosts", user: &budgetUser, price: 110, rotation: started, expected: 1.05},
		{name: "mid over tolerance", user: &midUser, price: 140, rotation: started, expected: 0.85},
		{name: "mid within tolerance boosts", user: &midUser, price: 125, rotation: started, expected: 1.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := scored("candidate", 10, tt.price, types.RoleDaily)
			assert.InDelta(t, tt.expected, assembler.priceFactor(candidate, tt.user, tt.rotation), 0.001)
		})
	}
}

func TestAssembleSpecializedPrefersFocusedShoes(t *testing.T) {
	assembler := NewDefaultAssembler()
	user := userNeeding(types.RoleDaily, types.RoleTempo)

	pool := []types.ScoredShoe{
		scored("do-everything", 15, 140, types.RoleDaily, types.RoleTempo, types.RoleLongRun),
		scored("daily-only", 10, 140, types.RoleDaily),
		scored("tempo-only", 9, 140, types.RoleTempo),
	}

	rotation := assembler.AssembleSpecialized(user, pool)

	// One specialist per role, never the generalist.
	assert.Equal(t, []string{"daily-only", "tempo-only"}, names(rotation))
}

func TestAssembleSpecializedScoreBreaksTies(t *testing.T) {
	assembler := NewDefaultAssembler()
	user := userNeeding(types.RoleDaily)

	pool := []types.ScoredShoe{
		scored("weak-specialist", 8, 140, types.RoleDaily),
		scored("strong-specialist", 12, 140, types.RoleDaily),
	}

	rotation := assembler.AssembleSpecialized(user, pool)
	assert.Equal(t, []string{"strong-specialist"}, names(rotation))
}

func TestCoveredAndUncoveredRoles(t *testing.T) {
	rotation := []types.ScoredShoe{
		scored("a", 10, 140, types.RoleTempo, types.RoleDaily),
		scored("b", 9, 140, types.RoleTrail),
	}

	// Canonical role order, not insertion order.
	assert.Equal(t,
		[]types.Role{types.RoleDaily, types.RoleTempo, types.RoleTrail},
		CoveredRoles(rotation))

	user := userNeeding(types.RoleDaily, types.RoleLongRun, types.RoleRecovery)
	assert.Equal(t,
		[]types.Role{types.RoleLongRun, types.RoleRecovery},
		UncoveredRoles(user, rotation))
}

func TestValidate(t *testing.T) {
	assembler := NewDefaultAssembler()

	t.Run("empty rotation is flagged", func(t *testing.T) {
		user := userNeeding(types.RoleDaily)
		report := assembler.Validate(user, nil)

		assert.False(t, report.IsValid)
		assert.Contains(t, report.Issues, "No shoes selected")
		assert.Zero(t, report.Coverage)
	})

	t.Run("full coverage is valid", func(t *testing.T) {
		user := userNeeding(types.RoleDaily, types.RoleTempo)
		rotation := []types.ScoredShoe{scored("a", 10, 120, types.RoleDaily, types.RoleTempo)}

		report := assembler.Validate(user, rotation)

		assert.True(t, report.IsValid)
		assert.Empty(t, report.Issues)
		assert.InDelta(t, 100, report.Coverage, 0.001)
	})

	t.Run("partial coverage is flagged", func(t *testing.T) {
		user := userNeeding(types.RoleDaily, types.RoleTempo, types.RoleTrail)
		rotation := []types.ScoredShoe{scored("a", 10, 120, types.RoleDaily)}

		report := assembler.Validate(user, rotation)

		assert.False(t, report.IsValid)
		assert.InDelta(t, 100.0/3, report.Coverage, 0.1)
	})

	t.Run("budget users get an average price ceiling", func(t *testing.T) {
		user := userNeeding(types.RoleDaily)
		user.PriceTier = types.TierBudget
		rotation := []types.ScoredShoe{scored("a", 10, 180, types.RoleDaily)}

		report := assembler.Validate(user, rotation)

		assert.False(t, report.IsValid)
		assert.Contains(t, report.Issues, "Average shoe price exceeds budget preference")
	})

	t.Run("coverage never exceeds 100 with extra roles", func(t *testing.T) {
		user := userNeeding(types.RoleDaily)
		rotation := []types.ScoredShoe{
			scored("a", 10, 120, types.RoleDaily, types.RoleTempo, types.RoleTrail),
		}

		report := assembler.Validate(user, rotation)
		assert.InDelta(t, 100, report.Coverage, 0.001)
	})
}

func TestCoverageMonotonicUnderCommits(t *testing.T) {
	assembler := NewDefaultAssembler()
	user := userNeeding(types.RoleDaily, types.RoleTempo, types.RoleTrail)

	items := []types.ScoredShoe{
		scored("a", 10, 120, types.RoleDaily),
		scored("b", 9, 120, types.RoleTempo),
		scored("c", 8, 120, types.RoleTrail),
	}

	previous := 0.0
	rotation := []types.ScoredShoe{}
	for _, item := range items {
		rotation = append(rotation, item)
		report := assembler.Validate(user, rotation)
		assert.GreaterOrEqual(t, report.Coverage, previous)
		assert.LessOrEqual(t, report.Coverage, 100.0)
		previous = report.Coverage
	}
	assert.InDelta(t, 100, previous, 0.001)
}
