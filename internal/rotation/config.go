package rotation

import "fmt"

// Config holds every tunable of the assembler: rotation caps, the bonus
// terms of the candidate evaluation, the budget price-factor thresholds
// and the validation limits. Tests override single fields; production uses
// DefaultConfig.
type Config struct {
	// Rotation size caps. Versatility seekers want fewer, broader shoes.
	MaxPairsVersatile int
	MaxPairsDefault   int

	// Evaluation bonus terms.
	CoverageBonusPerRole float64
	NoCoverageBonus      float64
	RoleFitMultiplier    float64
	PaceSupportWeight    float64
	VersatilityPreferred float64
	VersatilityDefault   float64
	CushioningWeight     float64
	FocusBonus           float64

	// Price factor: first-pick absolute thresholds per tier, then
	// running-average tolerances once the rotation has members.
	BudgetBaseThreshold   float64
	MidBaseThreshold      float64
	BudgetBaseDiscount    float64
	MidBaseDiscount       float64
	BudgetTolerance       float64
	MidTolerance          float64
	BudgetOverDiscount    float64
	MidOverDiscount       float64
	OnBudgetBoost         float64

	// Validation limits.
	MinCoveragePercent float64
	MaxRotationSize    int
	BudgetAvgCeiling   float64
}

// DefaultConfig returns the production assembler tuning.
func DefaultConfig() Config {
	return Config{
		MaxPairsVersatile: 3,
		MaxPairsDefault:   5,

		CoverageBonusPerRole: 1.2,
		NoCoverageBonus:      0.3,
		RoleFitMultiplier:    3,
		PaceSupportWeight:    1.25,
		VersatilityPreferred: 1.8,
		VersatilityDefault:   0.9,
		CushioningWeight:     0.8,
		FocusBonus:           2,

		BudgetBaseThreshold: 150,
		MidBaseThreshold:    210,
		BudgetBaseDiscount:  0.8,
		MidBaseDiscount:     0.9,
		BudgetTolerance:     1.15,
		MidTolerance:        1.3,
		BudgetOverDiscount:  0.75,
		MidOverDiscount:     0.85,
		OnBudgetBoost:       1.05,

		MinCoveragePercent: 80,
		MaxRotationSize:    5,
		BudgetAvgCeiling:   140,
	}
}

// Validate rejects configurations that cannot produce a rotation.
func (c Config) Validate() error {
	if c.MaxPairsVersatile <= 0 || c.MaxPairsDefault <= 0 {
		return fmt.Errorf("rotation caps must be positive")
	}
	if c.MaxPairsVersatile > c.MaxPairsDefault {
		return fmt.Errorf("versatile cap %d exceeds default cap %d",
			c.MaxPairsVersatile, c.MaxPairsDefault)
	}
	if c.MinCoveragePercent < 0 || c.MinCoveragePercent > 100 {
		return fmt.Errorf("minimum coverage must be a percentage, got %v", c.MinCoveragePercent)
	}
	return nil
}
