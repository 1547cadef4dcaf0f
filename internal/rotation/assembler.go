// Package rotation selects a small, non-redundant set of scored shoes that
// covers the runner's needed roles under budget discipline. Selection is a
// three-stage greedy pass over an immutable candidate view: a taken-set
// tracks committed shoes instead of mutating the pool, so every stage is
// independently testable.
package rotation

import (
	"fmt"
	"sort"

	"github.com/stridelab/shoefit/internal/types"
)

// Assembler builds rotations from scored candidates. An Assembler is
// immutable and safe for concurrent use.
type Assembler struct {
	cfg Config
}

// NewAssembler builds an assembler from a config.
func NewAssembler(cfg Config) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{cfg: cfg}, nil
}

// NewDefaultAssembler builds an assembler with the production tuning.
func NewDefaultAssembler() *Assembler {
	a, _ := NewAssembler(DefaultConfig())
	return a
}

// ValidationReport is the outcome of checking a rotation against a user's
// needs: overall verdict, human-readable issues, and coverage percent.
type ValidationReport struct {
	IsValid  bool     `json:"isValid"`
	Issues   []string `json:"issues"`
	Coverage float64  `json:"coverage"`
}

// selection tracks the mutable state of one assembly run.
type selection struct {
	rotation       []types.ScoredShoe
	rolesRemaining map[types.Role]bool
	taken          map[string]bool
}

// Assemble picks at most 3 shoes for versatility seekers and at most 5
// otherwise, in three stages: anchors for the essential roles, a coverage
// loop for whatever roles remain, then one generalist flex pick when the
// rotation is still thin.
func (a *Assembler) Assemble(user types.UserVector, scored []types.ScoredShoe) []types.ScoredShoe {
	maxPairs := a.cfg.MaxPairsDefault
	if user.PreferVersatile {
		maxPairs = a.cfg.MaxPairsVersatile
	}

	pool := buildCandidatePool(scored)
	sel := newSelection(user)

	// Stage 1: lock in one anchor per essential role.
	for _, role := range types.EssentialRoleOrder {
		if len(sel.rotation) >= maxPairs || !sel.rolesRemaining[role] {
			continue
		}
		if candidate, ok := a.selectBest(pool, &user, sel, role); ok {
			sel.commit(candidate)
		}
	}

	// Stage 2: cover remaining roles until nothing on offer improves
	// coverage.
	for len(sel.rotation) < maxPairs && len(sel.rolesRemaining) > 0 {
		candidate, ok := a.selectBest(pool, &user, sel, "")
		if !ok || !coversAny(candidate.Shoe, sel.rolesRemaining) {
			break
		}
		sel.commit(candidate)
	}

	// Stage 3: a thin rotation gets one high-scoring generalist.
	if len(sel.rotation) < maxPairs && len(sel.rotation) < 2 {
		if candidate, ok := selectGeneralist(pool, sel.taken); ok {
			sel.commit(candidate)
		}
	}

	return sel.rotation
}

// AssembleSpecialized is the alternative strategy: one focused pick per
// needed role, preferring shoes with fewer total roles, raw score as the
// tie-break. No cross-role synergy, no price smoothing.
func (a *Assembler) AssembleSpecialized(user types.UserVector, scored []types.ScoredShoe) []types.ScoredShoe {
	pool := buildCandidatePool(scored)
	sel := newSelection(user)

	for _, role := range user.RolesNeeded {
		if len(sel.rotation) >= a.cfg.MaxPairsDefault {
			break
		}
		if candidate, ok := selectMostSpecialized(pool, sel.taken, role); ok {
			sel.commit(candidate)
		}
	}
	return sel.rotation
}

// CoveredRoles returns the union of roles covered by a rotation, in
// canonical role order.
func CoveredRoles(rotation []types.ScoredShoe) []types.Role {
	covered := map[types.Role]bool{}
	for _, scored := range rotation {
		for _, role := range scored.Shoe.Roles {
			covered[role] = true
		}
	}

	ordered := make([]types.Role, 0, len(covered))
	for _, role := range types.RoleOrder {
		if covered[role] {
			ordered = append(ordered, role)
		}
	}
	return ordered
}

// UncoveredRoles returns the user's needed roles a rotation fails to
// cover, preserving the needed-role order. Always non-nil.
func UncoveredRoles(user types.UserVector, rotation []types.ScoredShoe) []types.Role {
	covered := map[types.Role]bool{}
	for _, role := range CoveredRoles(rotation) {
		covered[role] = true
	}

	uncovered := make([]types.Role, 0, len(user.RolesNeeded))
	for _, role := range user.RolesNeeded {
		if !covered[role] {
			uncovered = append(uncovered, role)
		}
	}
	return uncovered
}

// Validate checks a rotation against the user's needs. Coverage counts
// only needed roles, so it always lands in [0,100].
func (a *Assembler) Validate(user types.UserVector, rotation []types.ScoredShoe) ValidationReport {
	issues := []string{}

	coverage := 0.0
	if len(user.RolesNeeded) > 0 {
		uncovered := UncoveredRoles(user, rotation)
		covered := len(user.RolesNeeded) - len(uncovered)
		coverage = float64(covered) / float64(len(user.RolesNeeded)) * 100
	}

	if len(rotation) == 0 {
		issues = append(issues, "No shoes selected")
	}
	if coverage < a.cfg.MinCoveragePercent {
		issues = append(issues, fmt.Sprintf("Low role coverage: %.1f%%", coverage))
	}
	if len(rotation) > a.cfg.MaxRotationSize {
		issues = append(issues, "Too many shoes in rotation")
	}

	if user.PriceTier == types.TierBudget && len(rotation) > 0 {
		total := 0.0
		for _, scored := range rotation {
			total += scored.Shoe.Price
		}
		if total/float64(len(rotation)) > a.cfg.BudgetAvgCeiling {
			issues = append(issues, "Average shoe price exceeds budget preference")
		}
	}

	return ValidationReport{
		IsValid:  len(issues) == 0,
		Issues:   issues,
		Coverage: coverage,
	}
}

func newSelection(user types.UserVector) *selection {
	remaining := make(map[types.Role]bool, len(user.RolesNeeded))
	for _, role := range user.RolesNeeded {
		remaining[role] = true
	}
	return &selection{
		rotation:       []types.ScoredShoe{},
		rolesRemaining: remaining,
		taken:          map[string]bool{},
	}
}

func (s *selection) commit(candidate types.ScoredShoe) {
	s.rotation = append(s.rotation, candidate)
	s.taken[candidate.Shoe.Name] = true
	for _, role := range candidate.Shoe.Roles {
		delete(s.rolesRemaining, role)
	}
}

// buildCandidatePool filters to positive scores and orders by score
// descending. The stable sort keeps catalog order as the tie-break, which
// is what makes assembly deterministic.
func buildCandidatePool(scored []types.ScoredShoe) []types.ScoredShoe {
	pool := make([]types.ScoredShoe, 0, len(scored))
	for _, candidate := range scored {
		if candidate.Score > 0 {
			pool = append(pool, candidate)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})
	return pool
}

// selectBest returns the untaken candidate maximizing the evaluation
// score, restricted to shoes carrying focusRole when one is given. Ties
// keep the earlier (higher raw score) candidate.
func (a *Assembler) selectBest(pool []types.ScoredShoe, user *types.UserVector, sel *selection, focusRole types.Role) (types.ScoredShoe, bool) {
	var best types.ScoredShoe
	bestEval := 0.0
	found := false

	for _, candidate := range pool {
		if sel.taken[candidate.Shoe.Name] {
			continue
		}
		if focusRole != "" && !candidate.Shoe.HasRole(focusRole) {
			continue
		}
		eval := a.evaluate(candidate, user, sel, focusRole)
		if !found || eval > bestEval {
			best = candidate
			bestEval = eval
			found = true
		}
	}
	return best, found
}

// evaluate is the stage-shared composite: the raw similarity score plus
// coverage, role-fit, pace/support, versatility, cushioning and focus
// bonuses, all scaled by the budget price factor.
func (a *Assembler) evaluate(candidate types.ScoredShoe, user *types.UserVector, sel *selection, focusRole types.Role) float64 {
	overlapping := 0
	for _, role := range candidate.Shoe.Roles {
		if sel.rolesRemaining[role] {
			overlapping++
		}
	}

	coverageBonus := a.cfg.NoCoverageBonus
	if overlapping > 0 {
		coverageBonus = a.cfg.CoverageBonusPerRole * float64(overlapping)
	}

	versatilityWeight := a.cfg.VersatilityDefault
	if user.PreferVersatile {
		versatilityWeight = a.cfg.VersatilityPreferred
	}

	focusBonus := 0.0
	if focusRole != "" && candidate.Shoe.HasRole(focusRole) {
		focusBonus = a.cfg.FocusBonus
	}

	composite := candidate.Score +
		coverageBonus +
		candidate.Breakdown.RoleFit*a.cfg.RoleFitMultiplier +
		(candidate.Breakdown.Pace+candidate.Breakdown.Support)*a.cfg.PaceSupportWeight +
		candidate.Breakdown.Versatility*versatilityWeight +
		candidate.Breakdown.Cushioning*a.cfg.CushioningWeight +
		focusBonus

	return composite * a.priceFactor(candidate, user, sel.rotation)
}

// priceFactor keeps budget- and mid-tier rotations from drifting
// expensive. The first pick is judged against an absolute threshold;
// later picks against a tolerance band around the running average, with a
// small boost for staying inside it. Premium users pay what they pay.
func (a *Assembler) priceFactor(candidate types.ScoredShoe, user *types.UserVector, rotation []types.ScoredShoe) float64 {
	if user.PriceTier == types.TierPremium {
		return 1
	}

	budget := user.PriceTier == types.TierBudget
	price := candidate.Shoe.Price

	if len(rotation) == 0 {
		threshold := a.cfg.MidBaseThreshold
		if budget {
			threshold = a.cfg.BudgetBaseThreshold
		}
		if price > threshold {
			if budget {
				return a.cfg.BudgetBaseDiscount
			}
			return a.cfg.MidBaseDiscount
		}
		return 1
	}

	total := 0.0
	for _, item := range rotation {
		total += item.Shoe.Price
	}
	average := total / float64(len(rotation))

	tolerance := average * a.cfg.MidTolerance
	if budget {
		tolerance = average * a.cfg.BudgetTolerance
	}

	if price > tolerance {
		if budget {
			return a.cfg.BudgetOverDiscount
		}
		return a.cfg.MidOverDiscount
	}
	return a.cfg.OnBudgetBoost
}

// selectMostSpecialized picks the best focused candidate for one role:
// fewest total roles first, raw score as the tie-break.
func selectMostSpecialized(pool []types.ScoredShoe, taken map[string]bool, role types.Role) (types.ScoredShoe, bool) {
	var best types.ScoredShoe
	found := false

	for _, candidate := range pool {
		if taken[candidate.Shoe.Name] || !candidate.Shoe.HasRole(role) {
			continue
		}
		if !found ||
			len(candidate.Shoe.Roles) < len(best.Shoe.Roles) ||
			(len(candidate.Shoe.Roles) == len(best.Shoe.Roles) && candidate.Score > best.Score) {
			best = candidate
			found = true
		}
	}
	return best, found
}

// selectGeneralist returns the highest-scoring untaken multi-role shoe.
func selectGeneralist(pool []types.ScoredShoe, taken map[string]bool) (types.ScoredShoe, bool) {
	for _, candidate := range pool {
		if taken[candidate.Shoe.Name] {
			continue
		}
		if len(candidate.Shoe.Roles) >= 2 {
			return candidate, true
		}
	}
	return types.ScoredShoe{}, false
}

func coversAny(shoe types.Shoe, remaining map[types.Role]bool) bool {
	for _, role := range shoe.Roles {
		if remaining[role] {
			return true
		}
	}
	return false
}
