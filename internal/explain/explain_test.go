package explain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stridelab/shoefit/internal/types"
)

func stabilityUser() types.UserVector {
	return types.UserVector{
		RolesNeeded:  []types.Role{types.RoleDaily, types.RoleStability},
		SupportLevel: types.SupportStability,
		Cushioning:   5,
		Surfaces:     types.Surfaces{Road: 90, Treadmill: 10},
	}
}

func strongMatch() types.ScoredShoe {
	return types.ScoredShoe{
		Shoe: types.Shoe{
			Name:  "Steady State 3",
			Brand: "Test",
			Price: 140,
			Roles: []types.Role{types.RoleDaily},
		},
		Score: 12,
		Breakdown: types.SimilarityBreakdown{
			Support:    1,
			Cushioning: 1,
			Pace:       1,
			Terrain:    1,
			Price:      1,
			Durability: 1,
		},
	}
}

func TestBuildExplanationPicksTopThreeReasons(t *testing.T) {
	explanation := BuildExplanation(stabilityUser(), strongMatch())

	assert.True(t, strings.HasPrefix(explanation, "**Steady State 3** (daily)"))
	assert.Contains(t, explanation, "provides the stability support you need")
	assert.Contains(t, explanation, "hits your balanced cushioning preference")
	assert.Contains(t, explanation, "works well for your typical training paces")

	// Later reasons fell off the top-3 cut.
	assert.NotContains(t, explanation, "road-focused")
	assert.NotContains(t, explanation, "budget")

	assert.True(t, strings.HasSuffix(explanation, " $140"))
}

func TestBuildExplanationPhrasesBySupportNeed(t *testing.T) {
	scoredShoe := strongMatch()
	scoredShoe.Breakdown = types.SimilarityBreakdown{Support: 1}

	tests := []struct {
		name     string
		support  types.SupportLevel
		expected string
	}{
		{name: "stability", support: types.SupportStability, expected: "provides the stability support you need"},
		{name: "motion control", support: types.SupportMotionControl, expected: "offers motion control for your running style"},
		{name: "neutral", support: types.SupportNeutral, expected: "matches your neutral foot strike"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := stabilityUser()
			user.SupportLevel = tt.support
			assert.Contains(t, BuildExplanation(user, scoredShoe), tt.expected)
		})
	}
}

func TestBuildExplanationPartialSupportAndPace(t *testing.T) {
	scoredShoe := strongMatch()
	scoredShoe.Breakdown = types.SimilarityBreakdown{Support: 0.7, Pace: 0.65}

	explanation := BuildExplanation(stabilityUser(), scoredShoe)

	assert.Contains(t, explanation, "offers compatible support for your needs")
	assert.Contains(t, explanation, "suitable for your pace range")
}

func TestBuildExplanationWidthOnlyWhenNonStandard(t *testing.T) {
	scoredShoe := strongMatch()
	scoredShoe.Breakdown = types.SimilarityBreakdown{Width: 1}

	user := stabilityUser()
	user.PreferredWidth = types.WidthWide
	assert.Contains(t, BuildExplanation(user, scoredShoe), "available in wide width")

	user.PreferredWidth = types.WidthStandard
	assert.NotContains(t, BuildExplanation(user, scoredShoe), "width")
}

func TestBuildExplanationRolePhrases(t *testing.T) {
	user := types.UserVector{RolesNeeded: []types.Role{types.RoleTempo, types.RoleRace}}

	single := types.ScoredShoe{
		Shoe: types.Shoe{Name: "Fast One", Price: 180, Roles: []types.Role{types.RoleRace}},
	}
	assert.Contains(t, BuildExplanation(user, single), "designed for race day performance")

	multi := types.ScoredShoe{
		Shoe: types.Shoe{Name: "Do Both", Price: 170, Roles: []types.Role{types.RoleTempo, types.RoleRace}},
	}
	assert.Contains(t, BuildExplanation(user, multi), "covers multiple needs: tempo and race")
}

func TestBuildExplanationGenericFallback(t *testing.T) {
	user := types.UserVector{RolesNeeded: []types.Role{types.RoleDaily}}
	scoredShoe := types.ScoredShoe{
		Shoe: types.Shoe{Name: "Mystery Shoe", Price: 99.95, Roles: []types.Role{types.RoleRecovery}},
	}

	explanation := BuildExplanation(user, scoredShoe)

	assert.Contains(t, explanation, "provides a solid option for your rotation.")
	assert.True(t, strings.HasSuffix(explanation, " $99.95"))
}

func TestBuildRotationSummary(t *testing.T) {
	user := stabilityUser()
	rotation := []types.ScoredShoe{strongMatch()}
	uncovered := []types.Role{types.RoleStability}

	summary := BuildRotationSummary(user, rotation, uncovered)

	assert.True(t, strings.HasPrefix(summary, "## Your 1-shoe rotation\n\n"))
	assert.Contains(t, summary, "1. **Steady State 3**")
	assert.Contains(t, summary, "**Coverage**: 50% of your running needs covered, missing: stability")
	assert.Contains(t, summary, "**Total investment**: $140")
	assert.NotContains(t, summary, "prioritizes versatile shoes")
}

func TestBuildRotationSummaryVersatilityNote(t *testing.T) {
	user := stabilityUser()
	user.PreferVersatile = true

	summary := BuildRotationSummary(user, []types.ScoredShoe{strongMatch()}, nil)

	assert.Contains(t, summary, "*This rotation prioritizes versatile shoes that can handle multiple types of runs.*")
	assert.Contains(t, summary, "**Coverage**: 100%")
}

func TestExplainMissingRoles(t *testing.T) {
	assert.Empty(t, ExplainMissingRoles(nil))

	text := ExplainMissingRoles([]types.Role{types.RoleTrail, types.RoleRace, types.RoleLongRun})

	assert.Contains(t, text, "Consider adding a dedicated trail shoe")
	assert.Contains(t, text, "A lightweight race shoe could help with your time goals")
	assert.Contains(t, text, "- long-run needs weren't fully addressed in this rotation")
}

func TestFormatShoeDetails(t *testing.T) {
	shoe := types.Shoe{WeightOunces: 9.5, OffsetMM: 8, CushioningScale: 6}
	assert.Equal(t, "(9.5oz, 8mm drop, cushioning: 6/10)", FormatShoeDetails(shoe))

	assert.Equal(t, "(0mm drop)", FormatShoeDetails(types.Shoe{}))
}
