package profile

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/stridelab/shoefit/internal/types"
)

const (
	kmPerMile = 1.60934

	// DefaultPaceSecPerKm is the 5:00/km fallback used when a pace answer
	// is missing or unparseable.
	DefaultPaceSecPerKm = 300

	// perMileCutoffSec: an unlabeled pace slower than this is almost
	// certainly quoted per mile, not per km.
	perMileCutoffSec = 420
)

var paceRe = regexp.MustCompile(`(\d+):(\d{1,2})`)

// ParsePaceString extracts an mm:ss pace as raw seconds, unit-agnostic.
// Returns (0, false) when no pace pattern is present.
func ParsePaceString(s string) (int, bool) {
	match := paceRe.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0, false
	}
	// Both captures are digit-only, so Atoi can only fail on overflow.
	minutes, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	seconds, _ := strconv.Atoi(match[2])
	return minutes*60 + seconds, true
}

// PaceToSecondsPerKm converts a pace answer to seconds per km.
//
// Unit resolution: an explicit "km" marker keeps the value as-is, an
// explicit "mile"/"mi" marker converts from per-mile. Without a marker,
// assumePerMile treats values above 420s as per-mile figures; nobody
// types a 7:00+/km easy pace without meaning minutes per mile.
func PaceToSecondsPerKm(s string, fallback int, assumePerMile bool) int {
	parsed, ok := ParsePaceString(s)
	if !ok {
		return fallback
	}

	normalized := strings.ToLower(s)
	switch {
	case strings.Contains(normalized, "km"):
		return parsed
	case strings.Contains(normalized, "mile"), strings.Contains(normalized, "mi"):
		return secondsPerMileToPerKm(parsed)
	case assumePerMile && parsed > perMileCutoffSec:
		return secondsPerMileToPerKm(parsed)
	}
	return parsed
}

// ConvertPaceRange resolves a catalog pace window from its string form.
// Catalog pace strings are always quoted per km, so no per-mile heuristic.
func ConvertPaceRange(pr types.PaceStrings) types.PaceRange {
	return types.PaceRange{
		Min: PaceToSecondsPerKm(pr.MinPacePerKm, DefaultPaceSecPerKm, false),
		Max: PaceToSecondsPerKm(pr.MaxPacePerKm, DefaultPaceSecPerKm, false),
	}
}

func secondsPerMileToPerKm(secPerMile int) int {
	return int(math.Round(float64(secPerMile) / kmPerMile))
}
