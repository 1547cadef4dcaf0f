// Package profile maps raw questionnaire answers onto the normalized,
// strongly-typed preference vector the scoring engine consumes. Every
// mapper in this package is total: unparseable free text degrades to a
// documented default instead of returning an error.
package profile

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/stridelab/shoefit/internal/types"
)

const (
	defaultMileageMiles = 15

	// Role-inference thresholds, in miles.
	longRunMileageMiles  = 25
	highMileageMiles     = 30
	longRunFurthestMiles = 12

	// Minimum trail share before a dedicated trail shoe is worth a slot.
	trailSharePercent = 30
)

var defaultSurfaces = types.Surfaces{Road: 70, Treadmill: 20, Trail: 10}

var (
	speedGoalRe    = regexp.MustCompile(`improve|faster|time|race|pr|pb`)
	raceGoalRe     = regexp.MustCompile(`5k|10k|half|marathon|ultra`)
	distanceGoalRe = regexp.MustCompile(`half|marathon|ultra`)
	rangeRe        = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	plusRe         = regexp.MustCompile(`(\d+)\s*\+`)
	numberRe       = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// BuildUserVector turns one quiz submission into a UserVector. It never
// fails: every field has a defaulting rule for missing or malformed input.
func BuildUserVector(quiz types.QuizPayload) types.UserVector {
	easy, tempo := buildPaceProfile(quiz.EasyPace, quiz.TempoWorkoutPace)

	return types.UserVector{
		RolesNeeded:      inferRoles(quiz),
		SupportLevel:     MapSupportLevel(quiz.SupportLevel),
		Cushioning:       MapCushioningPreference(quiz.CushioningPreference),
		PreferredWidth:   MapWidthNeeds(quiz.WidthNeeds),
		PriceTier:        MapBudgetToPriceTier(quiz.Budget),
		PacesSecPerKm:    types.Paces{Easy: easy, Tempo: tempo},
		MileageKmPerWeek: mileageToKm(quiz.WeeklyMileage),
		Surfaces:         normalizeSurfaceMix(quiz.RoadPercentage, quiz.TreadmillPercentage, quiz.TrailPercentage),
		ExcludedBrands:   ParseExcludedBrands(quiz.ExcludedBrands),
		PreferVersatile:  strings.Contains(strings.ToLower(quiz.VersatilityPreference), "versatile"),
	}
}

// inferRoles derives the set of roles a runner's rotation must cover.
// Everyone gets daily; the rest are triggered by mileage, goals, surfaces,
// support needs and injury history. The result is filtered through
// types.RoleOrder so output order never depends on trigger order.
func inferRoles(quiz types.QuizPayload) []types.Role {
	roles := map[types.Role]bool{types.RoleDaily: true}

	weeklyMiles := extractMileageMiles(quiz.WeeklyMileage)
	furthestMiles := parseDistanceMiles(quiz.FurthestRunDistance)
	goal := strings.ToLower(quiz.RunningGoal)
	support := strings.ToLower(quiz.SupportLevel)
	injuries := strings.ToLower(quiz.InjuryHistory)

	wantsSpeed := speedGoalRe.MatchString(goal)
	racesNamed := raceGoalRe.MatchString(goal)
	longDistanceGoal := distanceGoalRe.MatchString(goal)
	tempoProvided := strings.TrimSpace(quiz.TempoWorkoutPace) != ""
	prefersPlush := strings.Contains(strings.ToLower(quiz.CushioningPreference), "plush")

	if tempoProvided || wantsSpeed {
		roles[types.RoleTempo] = true
	}
	if furthestMiles >= longRunFurthestMiles || longDistanceGoal || weeklyMiles >= longRunMileageMiles {
		roles[types.RoleLongRun] = true
	}
	if quiz.TrailPercentage >= trailSharePercent {
		roles[types.RoleTrail] = true
	}
	if wantsSpeed || racesNamed {
		roles[types.RoleRace] = true
	}
	if strings.Contains(support, "stability") || strings.Contains(support, "motion") {
		roles[types.RoleStability] = true
	}
	if weeklyMiles >= highMileageMiles || prefersPlush ||
		strings.Contains(injuries, "injur") || strings.Contains(injuries, "recovery") {
		roles[types.RoleRecovery] = true
	}

	ordered := make([]types.Role, 0, len(roles))
	for _, role := range types.RoleOrder {
		if roles[role] {
			ordered = append(ordered, role)
		}
	}
	return ordered
}

// MapSupportLevel maps a free-text support answer onto the closed
// enumeration, defaulting to neutral.
func MapSupportLevel(answer string) types.SupportLevel {
	normalized := strings.ToLower(answer)
	switch {
	case strings.Contains(normalized, "motion"):
		return types.SupportMotionControl
	case strings.Contains(normalized, "stability"):
		return types.SupportStability
	}
	return types.SupportNeutral
}

// MapCushioningPreference maps a cushioning answer to the 0-10 scale.
// Numeric ranges ("4-6") become their midpoint; qualitative keywords map
// to fixed anchors; anything else defaults to the balanced 5.
func MapCushioningPreference(answer string) float64 {
	if answer == "" {
		return 5
	}
	normalized := strings.ToLower(answer)

	if match := rangeRe.FindStringSubmatch(normalized); match != nil {
		start, err1 := strconv.ParseFloat(match[1], 64)
		end, err2 := strconv.ParseFloat(match[2], 64)
		if err1 == nil && err2 == nil {
			return clamp((start+end)/2, 0, 10)
		}
	}

	switch {
	case strings.Contains(normalized, "minimal"), strings.Contains(normalized, "firm"):
		return 3
	case strings.Contains(normalized, "plush"), strings.Contains(normalized, "max"):
		return 8
	}
	return 5
}

// MapWidthNeeds maps a width answer onto the closed enumeration,
// defaulting to standard.
func MapWidthNeeds(answer string) types.Width {
	normalized := strings.ToLower(answer)
	switch {
	case strings.Contains(normalized, "narrow"):
		return types.WidthNarrow
	case strings.Contains(normalized, "wide"):
		return types.WidthWide
	}
	return types.WidthStandard
}

// MapBudgetToPriceTier maps the budget answer onto a price tier,
// defaulting to mid.
func MapBudgetToPriceTier(budget string) types.PriceTier {
	normalized := strings.ToLower(budget)
	switch {
	case strings.Contains(normalized, "under"), strings.Contains(normalized, "$100-150"):
		return types.TierBudget
	case strings.Contains(normalized, "$200+"):
		return types.TierPremium
	}
	return types.TierMid
}

// ParseExcludedBrands splits a comma-separated brand list into trimmed,
// lower-cased entries, dropping empties.
func ParseExcludedBrands(answer string) []string {
	if strings.TrimSpace(answer) == "" {
		return nil
	}
	brands := make([]string, 0, 2)
	for _, part := range strings.Split(answer, ",") {
		brand := strings.ToLower(strings.TrimSpace(part))
		if brand != "" {
			brands = append(brands, brand)
		}
	}
	return brands
}

// buildPaceProfile resolves the easy and tempo paces in seconds per km.
// A missing tempo defaults to max(easy*0.85, easy-45); either way the
// tempo is clamped to sit at least 15s under the easy pace.
func buildPaceProfile(easyAnswer, tempoAnswer string) (easy, tempo int) {
	easy = PaceToSecondsPerKm(easyAnswer, DefaultPaceSecPerKm, true)

	defaultTempo := int(math.Round(float64(easy) * 0.85))
	if easy-45 > defaultTempo {
		defaultTempo = easy - 45
	}

	tempo = PaceToSecondsPerKm(tempoAnswer, defaultTempo, true)
	if tempo > easy-15 {
		tempo = easy - 15
	}
	if tempo <= 0 {
		tempo = defaultTempo
	}
	return easy, tempo
}

// normalizeSurfaceMix sanitizes the three surface percentages so they
// always sum to exactly 100. A zero total gets the default 70/20/10
// split; any other total rescales road and treadmill proportionally and
// computes trail as the remainder, so rounding drift has nowhere to
// escape. Road and treadmill together overshoot 100 by at most 1, so a
// negative remainder folds back into road without going below zero.
func normalizeSurfaceMix(road, treadmill, trail float64) types.Surfaces {
	raw := types.Surfaces{
		Road:      sanitizePercentage(road),
		Treadmill: sanitizePercentage(treadmill),
		Trail:     sanitizePercentage(trail),
	}

	total := raw.Road + raw.Treadmill + raw.Trail
	if total == 100 {
		return raw
	}
	if total == 0 {
		return defaultSurfaces
	}

	ratio := 100 / float64(total)
	scaled := types.Surfaces{
		Road:      int(math.Round(float64(raw.Road) * ratio)),
		Treadmill: int(math.Round(float64(raw.Treadmill) * ratio)),
	}
	scaled.Trail = 100 - scaled.Road - scaled.Treadmill
	if scaled.Trail < 0 {
		scaled.Road += scaled.Trail
		scaled.Trail = 0
	}
	return scaled
}

func sanitizePercentage(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return clampInt(int(math.Round(v)), 0, 100)
}

func mileageToKm(answer string) float64 {
	return math.Round(extractMileageMiles(answer) * kmPerMile)
}

// extractMileageMiles pulls a weekly-mileage figure out of quiz answers
// like "21-30 miles", "40+", or a bare number. Ranges become their
// midpoint; open-ended buckets use their base; default is 15.
func extractMileageMiles(answer string) float64 {
	if answer == "" {
		return defaultMileageMiles
	}

	if v, err := strconv.ParseFloat(strings.TrimSpace(answer), 64); err == nil && v > 0 {
		return v
	}

	if match := rangeRe.FindStringSubmatch(answer); match != nil {
		start, err1 := strconv.ParseFloat(match[1], 64)
		end, err2 := strconv.ParseFloat(match[2], 64)
		if err1 == nil && err2 == nil {
			return (start + end) / 2
		}
	}

	if match := plusRe.FindStringSubmatch(answer); match != nil {
		if base, err := strconv.ParseFloat(match[1], 64); err == nil {
			return base
		}
	}

	return defaultMileageMiles
}

func parseDistanceMiles(answer string) float64 {
	if answer == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(answer), 64); err == nil {
		return v
	}
	if match := numberRe.FindStringSubmatch(answer); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			return v
		}
	}
	return 0
}

func clamp(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
