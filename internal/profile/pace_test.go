package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stridelab/shoefit/internal/types"
)

func TestParsePaceString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		ok       bool
	}{
		{
			name:     "parses plain mm:ss",
			input:    "8:30",
			expected: 510,
			ok:       true,
		},
		{
			name:     "parses pace embedded in free text",
			input:    "around 7:15 per mile on good days",
			expected: 435,
			ok:       true,
		},
		{
			name:     "parses single-digit seconds",
			input:    "5:5",
			expected: 305,
			ok:       true,
		},
		{
			name:  "rejects text without a pace",
			input: "pretty slow honestly",
			ok:    false,
		},
		{
			name:  "rejects empty string",
			input: "",
			ok:    false,
		},
		{
			name:  "rejects a minute figure that overflows int",
			input: "99999999999999999999:30",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParsePaceString(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestPaceToSecondsPerKm(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		fallback      int
		assumePerMile bool
		expected      int
	}{
		{
			name:          "explicit km marker keeps value",
			input:         "5:00 /km",
			fallback:      300,
			assumePerMile: true,
			expected:      300,
		},
		{
			name:          "explicit mile marker converts",
			input:         "8:00 per mile",
			fallback:      300,
			assumePerMile: true,
			expected:      298,
		},
		{
			name:          "unlabeled slow pace assumed per mile",
			input:         "8:30",
			fallback:      300,
			assumePerMile: true,
			expected:      317,
		},
		{
			name:          "unlabeled pace at the cutoff stays per km",
			input:         "7:00",
			fallback:      300,
			assumePerMile: true,
			expected:      420,
		},
		{
			name:          "unlabeled fast pace stays per km",
			input:         "4:45",
			fallback:      300,
			assumePerMile: true,
			expected:      285,
		},
		{
			name:          "heuristic disabled keeps slow pace as-is",
			input:         "8:30",
			fallback:      300,
			assumePerMile: false,
			expected:      510,
		},
		{
			name:          "unparseable falls back",
			input:         "no idea",
			fallback:      330,
			assumePerMile: true,
			expected:      330,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PaceToSecondsPerKm(tt.input, tt.fallback, tt.assumePerMile)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConvertPaceRange(t *testing.T) {
	result := ConvertPaceRange(types.PaceStrings{MinPacePerKm: "4:30", MaxPacePerKm: "6:00"})
	assert.Equal(t, types.PaceRange{Min: 270, Max: 360}, result)

	// Missing endpoints fall back to the default pace.
	result = ConvertPaceRange(types.PaceStrings{})
	assert.Equal(t, types.PaceRange{Min: 300, Max: 300}, result)
}
