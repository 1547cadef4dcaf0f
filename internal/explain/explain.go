// Package explain turns score breakdowns into the human-readable reasons
// and markdown summaries shown to the runner. Everything here is a
// deterministic rule cascade over fixed phrase tables; no templating, no
// randomness.
package explain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/stridelab/shoefit/internal/types"
)

const maxReasons = 3

var rolePhrases = map[types.Role]string{
	types.RoleDaily:     "perfect for daily training runs",
	types.RoleLongRun:   "ideal for your long runs",
	types.RoleTempo:     "excellent for tempo and workout days",
	types.RoleRace:      "designed for race day performance",
	types.RoleTrail:     "built for trail adventures",
	types.RoleRecovery:  "great for easy recovery runs",
	types.RoleStability: "provides motion control support",
}

var missingRoleAdvice = map[types.Role]string{
	types.RoleTrail:     "Consider adding a dedicated trail shoe if you run trails frequently",
	types.RoleRace:      "A lightweight race shoe could help with your time goals",
	types.RoleRecovery:  "A max-cushioned recovery shoe might help on easy days",
	types.RoleStability: "You might need a more supportive shoe for stability",
}

// BuildExplanation produces the one-line justification for a selected
// shoe: its name and roles, the top three reasons that cleared their
// thresholds, and the price.
func BuildExplanation(user types.UserVector, scored types.ScoredShoe) string {
	shoe := scored.Shoe
	sim := scored.Breakdown
	reasons := make([]string, 0, 8)

	if sim.Support >= 0.9 {
		switch user.SupportLevel {
		case types.SupportStability:
			reasons = append(reasons, "provides the stability support you need")
		case types.SupportMotionControl:
			reasons = append(reasons, "offers motion control for your running style")
		default:
			reasons = append(reasons, "matches your neutral foot strike")
		}
	} else if sim.Support >= 0.6 {
		reasons = append(reasons, "offers compatible support for your needs")
	}

	if sim.Cushioning >= 0.8 {
		switch {
		case user.Cushioning <= 3:
			reasons = append(reasons, "provides the firm, responsive feel you prefer")
		case user.Cushioning >= 7:
			reasons = append(reasons, "delivers the plush cushioning you want")
		default:
			reasons = append(reasons, "hits your balanced cushioning preference")
		}
	}

	if sim.Pace >= 0.8 {
		reasons = append(reasons, "works well for your typical training paces")
	} else if sim.Pace >= 0.6 {
		reasons = append(reasons, "suitable for your pace range")
	}

	if sim.Terrain >= 0.8 {
		if user.Surfaces.Trail >= 30 {
			reasons = append(reasons, "handles both road and trail running")
		} else {
			reasons = append(reasons, "perfect for your road-focused training")
		}
	}

	if sim.Width >= 0.9 && user.PreferredWidth != types.WidthStandard {
		reasons = append(reasons, fmt.Sprintf("available in %s width", user.PreferredWidth))
	}

	if sim.Price >= 0.9 {
		reasons = append(reasons, "fits your budget perfectly")
	} else if sim.Price >= 0.6 {
		reasons = append(reasons, "offers good value for your budget")
	}

	reasons = append(reasons, roleReasons(shoe.Roles, user.RolesNeeded)...)

	if sim.Durability >= 0.8 {
		reasons = append(reasons, "should last well with your weekly mileage")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s** (%s)", shoe.Name, joinRoles(shoe.Roles, " and ")))

	if len(reasons) > 0 {
		if len(reasons) > maxReasons {
			reasons = reasons[:maxReasons]
		}
		sb.WriteString(fmt.Sprintf(" was selected because it %s.", strings.Join(reasons, ", ")))
	} else {
		sb.WriteString(" provides a solid option for your rotation.")
	}

	sb.WriteString(" $" + formatNumber(shoe.Price))
	return sb.String()
}

// roleReasons phrases which of the runner's needs the shoe fills: a
// combined phrase when it covers several, a per-role phrase for one.
func roleReasons(shoeRoles, needed []types.Role) []string {
	covered := make([]types.Role, 0, len(shoeRoles))
	for _, role := range shoeRoles {
		for _, need := range needed {
			if role == need {
				covered = append(covered, role)
				break
			}
		}
	}

	switch {
	case len(covered) > 1:
		return []string{"covers multiple needs: " + joinRoles(covered, " and ")}
	case len(covered) == 1:
		if phrase, ok := rolePhrases[covered[0]]; ok {
			return []string{phrase}
		}
	}
	return nil
}

// BuildRotationSummary renders the markdown block returned to the runner:
// numbered explanations, role coverage, total cost, and a versatility note
// when they asked for a lean rotation.
func BuildRotationSummary(user types.UserVector, rotation []types.ScoredShoe, uncoveredRoles []types.Role) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Your %d-shoe rotation\n\n", len(rotation)))

	for i, scored := range rotation {
		sb.WriteString(fmt.Sprintf("%d. %s\n\n", i+1, BuildExplanation(user, scored)))
	}

	coveragePercent := 0
	if len(user.RolesNeeded) > 0 {
		covered := len(user.RolesNeeded) - len(uncoveredRoles)
		coveragePercent = int(math.Round(float64(covered) / float64(len(user.RolesNeeded)) * 100))
	}
	sb.WriteString(fmt.Sprintf("**Coverage**: %d%% of your running needs covered", coveragePercent))

	if len(uncoveredRoles) > 0 {
		sb.WriteString(", missing: " + joinRoles(uncoveredRoles, ", "))
	}

	total := 0.0
	for _, scored := range rotation {
		total += scored.Shoe.Price
	}
	sb.WriteString("\n\n**Total investment**: $" + formatNumber(total))

	if user.PreferVersatile {
		sb.WriteString("\n\n*This rotation prioritizes versatile shoes that can handle multiple types of runs.*")
	}

	return sb.String()
}

// ExplainMissingRoles emits one advisory line per uncovered role from a
// fixed per-role table, with a generic fallback. Empty input yields an
// empty string.
func ExplainMissingRoles(uncoveredRoles []types.Role) string {
	if len(uncoveredRoles) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n**Note**: Some running needs weren't fully covered:\n")
	for _, role := range uncoveredRoles {
		if advice, ok := missingRoleAdvice[role]; ok {
			sb.WriteString("- " + advice + "\n")
		} else {
			sb.WriteString(fmt.Sprintf("- %s needs weren't fully addressed in this rotation\n", role))
		}
	}
	return sb.String()
}

// FormatShoeDetails renders the compact detail line shown next to a shoe:
// weight, drop and cushioning, skipping whatever is unset.
func FormatShoeDetails(shoe types.Shoe) string {
	details := make([]string, 0, 3)

	if shoe.WeightOunces > 0 {
		details = append(details, formatNumber(shoe.WeightOunces)+"oz")
	}
	if shoe.OffsetMM >= 0 {
		details = append(details, formatNumber(shoe.OffsetMM)+"mm drop")
	}
	if shoe.CushioningScale > 0 {
		details = append(details, "cushioning: "+formatNumber(shoe.CushioningScale)+"/10")
	}

	if len(details) == 0 {
		return ""
	}
	return "(" + strings.Join(details, ", ") + ")"
}

// formatNumber prints a float the way a product sheet reads: no trailing
// zeros, no exponent.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinRoles(roles []types.Role, sep string) string {
	parts := make([]string, len(roles))
	for i, role := range roles {
		parts[i] = string(role)
	}
	return strings.Join(parts, sep)
}
