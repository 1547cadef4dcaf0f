// Package scoring computes per-attribute similarity between a runner's
// preference vector and a catalog shoe, combining the attributes into a
// weighted composite score. All similarity values live in [0,1]; the
// composite is bounded by the weight total.
package scoring

import (
	"math"
	"strings"

	"github.com/stridelab/shoefit/internal/types"
)

const (
	// paceBufferSec is the linear decay window applied when the runner's
	// pace interval falls outside a shoe's usable range.
	paceBufferSec = 90

	// Durability sweet spot: a shoe should last 8-20 weeks at the
	// runner's mileage. Faster wear-out scales toward 0, slower decays
	// gently (overbuilt shoes are a waste, not a hazard).
	durabilityMinWeeks = 8
	durabilityMaxWeeks = 20

	// assumedWeeklyKm stands in when the profile reports zero mileage.
	assumedWeeklyKm = 20

	supportFloor = 0.2
	roleFitFloor = 0.15

	mixedTerrainBonus  = 0.15
	mixedTerrainCutoff = 20

	specializedMaxRoles  = 2
	specializationFactor = 1.1
	coverageRoleCountCap = 3
)

// Scorer scores shoes against user vectors using a fixed weight table and
// role-priority map. A Scorer is immutable and safe for concurrent use.
type Scorer struct {
	weights    Weights
	priorities map[types.Role]float64
}

// NewScorer builds a scorer from a weight table, falling back to the
// default role priorities.
func NewScorer(weights Weights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		weights:    weights,
		priorities: DefaultRolePriorities(),
	}, nil
}

// NewDefaultScorer builds a scorer with the production weight table.
func NewDefaultScorer() *Scorer {
	s, _ := NewScorer(DefaultWeights())
	return s
}

// Weights returns the scorer's weight table.
func (s *Scorer) Weights() Weights { return s.weights }

// ComputeScore scores one shoe against one user vector. Excluded brands
// short-circuit to a zero score with an all-zero breakdown; that pair of
// zeros is the only way exclusion is signalled downstream.
func (s *Scorer) ComputeScore(user types.UserVector, shoe types.Shoe) types.ScoredShoe {
	if brandExcluded(user.ExcludedBrands, shoe.Brand) {
		return types.ScoredShoe{Shoe: shoe}
	}

	breakdown := types.SimilarityBreakdown{
		Support:     supportSimilarity(user.SupportLevel, shoe.SupportLevel),
		Cushioning:  cushioningSimilarity(user.Cushioning, shoe.CushioningScale),
		Pace:        paceSimilarity(user.PacesSecPerKm, shoe.PaceRangeSecPerKm),
		Terrain:     terrainSimilarity(user.Surfaces, &shoe),
		Width:       widthSimilarity(user.PreferredWidth, &shoe),
		Price:       priceSimilarity(user.PriceTier, shoe.PriceTier),
		Durability:  durabilitySimilarity(user.MileageKmPerWeek, shoe.DurabilityKm),
		RoleFit:     s.roleFitSimilarity(&user, &shoe),
		Versatility: versatilitySimilarity(user.PreferVersatile, len(shoe.Roles)),
	}

	score := s.weights.Support*breakdown.Support +
		s.weights.Cushioning*breakdown.Cushioning +
		s.weights.Pace*breakdown.Pace +
		s.weights.Terrain*breakdown.Terrain +
		s.weights.Width*breakdown.Width +
		s.weights.Price*breakdown.Price +
		s.weights.Durability*breakdown.Durability +
		s.weights.RoleFit*breakdown.RoleFit +
		s.weights.Versatility*breakdown.Versatility

	return types.ScoredShoe{Shoe: shoe, Score: score, Breakdown: breakdown}
}

// ScoreAll scores every shoe in catalog order. Output order matches input
// order so downstream stable sorts stay deterministic.
func (s *Scorer) ScoreAll(user types.UserVector, shoes []types.Shoe) []types.ScoredShoe {
	scored := make([]types.ScoredShoe, 0, len(shoes))
	for _, shoe := range shoes {
		scored = append(scored, s.ComputeScore(user, shoe))
	}
	return scored
}

func brandExcluded(excluded []string, brand string) bool {
	normalized := strings.ToLower(brand)
	for _, e := range excluded {
		if strings.Contains(normalized, e) {
			return true
		}
	}
	return false
}

// supportSimilarity encodes the gait-support compatibility matrix. The
// asymmetry is deliberate: a neutral runner tolerates a stability shoe far
// better than a stability runner tolerates a neutral one.
func supportSimilarity(user, shoe types.SupportLevel) float64 {
	if user == shoe {
		return 1
	}
	switch {
	case user == types.SupportNeutral && shoe == types.SupportStability:
		return 0.7
	case user == types.SupportStability && shoe == types.SupportNeutral:
		return 0.45
	case user == types.SupportMotionControl && shoe == types.SupportStability,
		user == types.SupportStability && shoe == types.SupportMotionControl:
		return 0.75
	}
	return supportFloor
}

func cushioningSimilarity(user, shoe float64) float64 {
	return clamp01(1 - math.Abs(user-shoe)/8)
}

// paceSimilarity treats the runner's [tempo, easy] span as an interval.
// Full credit when the shoe's usable range contains it; otherwise a linear
// decay over a 90s buffer from the worst-exceeded boundary.
func paceSimilarity(paces types.Paces, shoeRange types.PaceRange) float64 {
	fast, slow := paces.Tempo, paces.Easy
	if fast > slow {
		fast, slow = slow, fast
	}

	if fast >= shoeRange.Min && slow <= shoeRange.Max {
		return 1
	}

	exceed := 0.0
	if fast < shoeRange.Min {
		exceed = float64(shoeRange.Min - fast)
	}
	if slow > shoeRange.Max {
		exceed = math.Max(exceed, float64(slow-shoeRange.Max))
	}
	return clamp01(1 - exceed/paceBufferSec)
}

// terrainSimilarity credits the shoe for each surface share it serves.
// Road and treadmill count as one surface for shoe purposes. Multi-terrain
// shoes get a bonus when the runner's mix is genuinely mixed.
func terrainSimilarity(surfaces types.Surfaces, shoe *types.Shoe) float64 {
	roadShare := float64(surfaces.Road+surfaces.Treadmill) / 100
	trailShare := float64(surfaces.Trail) / 100

	score := 0.0
	if shoe.HasTerrain(types.TerrainRoad) {
		score += roadShare
	}
	if shoe.HasTerrain(types.TerrainTrail) {
		score += trailShare
	}

	if shoe.HasTerrain(types.TerrainRoad) && shoe.HasTerrain(types.TerrainTrail) &&
		surfaces.Trail > mixedTerrainCutoff && surfaces.Road+surfaces.Treadmill > mixedTerrainCutoff {
		score += mixedTerrainBonus
	}
	return clamp01(score)
}

func widthSimilarity(user types.Width, shoe *types.Shoe) float64 {
	if shoe.OffersWidth(user) {
		return 1
	}
	if user != types.WidthStandard && shoe.OffersWidth(types.WidthStandard) {
		return 0.55
	}
	return 0.25
}

func priceSimilarity(user, shoe types.PriceTier) float64 {
	if user == shoe {
		return 1
	}
	userIdx, shoeIdx := tierIndex(user), tierIndex(shoe)
	if userIdx < 0 || shoeIdx < 0 {
		return 0.5
	}
	switch int(math.Abs(float64(userIdx - shoeIdx))) {
	case 1:
		return 0.7
	case 2:
		return 0.35
	}
	return 1
}

func tierIndex(tier types.PriceTier) int {
	for i, t := range types.TierOrder {
		if t == tier {
			return i
		}
	}
	return -1
}

func durabilitySimilarity(weeklyKm, durabilityKm float64) float64 {
	if weeklyKm <= 0 {
		weeklyKm = assumedWeeklyKm
	}
	weeks := durabilityKm / weeklyKm

	switch {
	case weeks >= durabilityMinWeeks && weeks <= durabilityMaxWeeks:
		return 1
	case weeks < durabilityMinWeeks:
		return clamp01(weeks / durabilityMinWeeks)
	}
	return clamp01(durabilityMaxWeeks / weeks)
}

// roleFitSimilarity rates how well the shoe's roles serve the roles the
// runner actually needs: the average priority of the overlapping roles,
// scaled by how much of the need it covers, with a small reward for
// specialists over broad generalists.
func (s *Scorer) roleFitSimilarity(user *types.UserVector, shoe *types.Shoe) float64 {
	var overlap []types.Role
	for _, role := range shoe.Roles {
		if user.NeedsRole(role) {
			overlap = append(overlap, role)
		}
	}
	if len(overlap) == 0 {
		return roleFitFloor
	}

	prioritySum := 0.0
	for _, role := range overlap {
		prioritySum += s.priorities[role]
	}
	avgPriority := prioritySum / float64(len(overlap))

	denom := len(user.RolesNeeded)
	if denom > coverageRoleCountCap {
		denom = coverageRoleCountCap
	}
	coverageRatio := math.Min(1, float64(len(overlap))/float64(denom))

	fit := avgPriority * (0.5 + 0.5*coverageRatio)
	if len(shoe.Roles) <= specializedMaxRoles {
		fit *= specializationFactor
	}
	return clamp01(fit)
}

// versatilitySimilarity rewards role breadth when the runner wants fewer,
// more versatile shoes and rewards focus when they want a full rotation.
func versatilitySimilarity(preferVersatile bool, roleCount int) float64 {
	if roleCount <= 1 {
		if preferVersatile {
			return 0.5
		}
		return 1
	}
	if preferVersatile {
		return clamp01(0.6 + 0.1*float64(roleCount))
	}
	return math.Max(0.6, 1-0.1*float64(roleCount-1))
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
