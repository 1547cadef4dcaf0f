// Package engine wires the recommendation pipeline end to end: quiz
// validation, budget filtering, scoring, assembly, and explanation. It is
// the only package HTTP handlers talk to.
package engine

import (
	"sort"
	"strings"

	"github.com/stridelab/shoefit/internal/apperrors"
	"github.com/stridelab/shoefit/internal/catalog"
	"github.com/stridelab/shoefit/internal/explain"
	"github.com/stridelab/shoefit/internal/profile"
	"github.com/stridelab/shoefit/internal/rotation"
	"github.com/stridelab/shoefit/internal/scoring"
	"github.com/stridelab/shoefit/internal/types"
)

const emptyBudgetSummary = "No shoes found within your budget range. Please consider increasing your budget."

const debugTopScores = 5

// Engine runs the full recommendation pipeline against one catalog.
// Engines are immutable and safe for concurrent use.
type Engine struct {
	catalog   *catalog.Catalog
	scorer    *scoring.Scorer
	assembler *rotation.Assembler
	debug     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebug attaches the debug block (user vector, candidate counts, top
// scores) to every response.
func WithDebug(enabled bool) Option {
	return func(e *Engine) { e.debug = enabled }
}

// WithScorer overrides the default scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithAssembler overrides the default assembler.
func WithAssembler(a *rotation.Assembler) Option {
	return func(e *Engine) { e.assembler = a }
}

// New builds an engine over a loaded catalog.
func New(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   c,
		scorer:    scoring.NewDefaultScorer(),
		assembler: rotation.NewDefaultAssembler(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend maps one quiz submission to a rotation response. Missing
// required fields are the only caller error; an empty budget-filtered
// catalog is a valid advisory outcome, not a failure.
func (e *Engine) Recommend(quiz types.QuizPayload) (types.RotationResponse, error) {
	if err := validateQuiz(quiz); err != nil {
		return types.RotationResponse{}, err
	}
	if e.catalog.Len() == 0 {
		return types.RotationResponse{}, apperrors.NewDataIntegrityError("no shoe data available", nil)
	}

	user := profile.BuildUserVector(quiz)

	filtered := scoring.FilterByBudget(e.catalog.Shoes(), quiz.Budget)
	if len(filtered) == 0 {
		response := types.RotationResponse{
			Rotation:       []types.RecommendationResult{},
			UncoveredRoles: user.RolesNeeded,
			Summary:        emptyBudgetSummary,
		}
		if e.debug {
			response.Debug = &types.DebugInfo{
				UserVector:   user,
				CatalogCount: e.catalog.Len(),
				TopScores:    []types.TopScore{},
			}
		}
		return response, nil
	}

	scored := e.scorer.ScoreAll(user, filtered)
	picked := e.assembler.Assemble(user, scored)
	uncovered := rotation.UncoveredRoles(user, picked)

	results := make([]types.RecommendationResult, 0, len(picked))
	totalScore := 0.0
	for _, item := range picked {
		results = append(results, types.RecommendationResult{
			Shoe:         item.Shoe,
			Score:        item.Score,
			Explanation:  explain.BuildExplanation(user, item),
			RolesCovered: coveredNeeds(item.Shoe, user),
		})
		totalScore += item.Score
	}

	response := types.RotationResponse{
		Rotation:       results,
		UncoveredRoles: uncovered,
		TotalScore:     totalScore,
		Summary:        explain.BuildRotationSummary(user, picked, uncovered),
	}

	if e.debug {
		response.Debug = &types.DebugInfo{
			UserVector:    user,
			CatalogCount:  e.catalog.Len(),
			FilteredCount: len(filtered),
			TopScores:     topScores(scored),
		}
	}
	return response, nil
}

// Validate checks an assembled response's rotation against the user it
// was built for. Exposed for diagnostics endpoints.
func (e *Engine) Validate(user types.UserVector, picked []types.ScoredShoe) rotation.ValidationReport {
	return e.assembler.Validate(user, picked)
}

// CatalogStats surfaces catalog summary data for health endpoints.
func (e *Engine) CatalogStats() catalog.Stats {
	return e.catalog.Stats()
}

func validateQuiz(quiz types.QuizPayload) error {
	missing := map[string]string{}
	if strings.TrimSpace(quiz.RunningGoal) == "" {
		missing["runningGoal"] = "required field is missing"
	}
	if strings.TrimSpace(quiz.WeeklyMileage) == "" {
		missing["weeklyMileage"] = "required field is missing"
	}
	if strings.TrimSpace(quiz.Budget) == "" {
		missing["budget"] = "required field is missing"
	}

	if len(missing) == 0 {
		return nil
	}
	if len(missing) == 1 {
		for field := range missing {
			return apperrors.NewValidationError("Missing required quiz field", field)
		}
	}
	return apperrors.NewValidationErrorWithMap(missing)
}

func coveredNeeds(shoe types.Shoe, user types.UserVector) []types.Role {
	covered := make([]types.Role, 0, len(shoe.Roles))
	for _, role := range shoe.Roles {
		if user.NeedsRole(role) {
			covered = append(covered, role)
		}
	}
	return covered
}

func topScores(scored []types.ScoredShoe) []types.TopScore {
	sorted := make([]types.ScoredShoe, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	limit := debugTopScores
	if len(sorted) < limit {
		limit = len(sorted)
	}
	top := make([]types.TopScore, 0, limit)
	for _, item := range sorted[:limit] {
		top = append(top, types.TopScore{Name: item.Shoe.Name, Score: item.Score})
	}
	return top
}
