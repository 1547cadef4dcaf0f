package scoring

import (
	"fmt"

	"github.com/stridelab/shoefit/internal/types"
)

// Weights is the tunable attribute-weight table for the composite score.
// Tests override individual fields to isolate one attribute; production
// uses DefaultWeights.
type Weights struct {
	Support     float64 `json:"support"`
	Cushioning  float64 `json:"cushioning"`
	Pace        float64 `json:"pace"`
	Terrain     float64 `json:"terrain"`
	Width       float64 `json:"width"`
	Price       float64 `json:"price"`
	Durability  float64 `json:"durability"`
	RoleFit     float64 `json:"roleFit"`
	Versatility float64 `json:"versatility"`
}

// DefaultWeights returns the production weight table. Support and role fit
// dominate: a shoe that fights the runner's gait or covers none of their
// roles should not be rescued by price or durability.
func DefaultWeights() Weights {
	return Weights{
		Support:     2.5,
		Cushioning:  2,
		Pace:        2,
		Terrain:     1.5,
		Width:       1.5,
		Price:       1.75,
		Durability:  1,
		RoleFit:     2.5,
		Versatility: 1,
	}
}

// Validate rejects weight tables that would make every score zero or
// negative-weight an attribute.
func (w Weights) Validate() error {
	fields := map[string]float64{
		"support":     w.Support,
		"cushioning":  w.Cushioning,
		"pace":        w.Pace,
		"terrain":     w.Terrain,
		"width":       w.Width,
		"price":       w.Price,
		"durability":  w.Durability,
		"roleFit":     w.RoleFit,
		"versatility": w.Versatility,
	}

	total := 0.0
	for name, v := range fields {
		if v < 0 {
			return fmt.Errorf("weight %q is negative: %v", name, v)
		}
		total += v
	}
	if total == 0 {
		return fmt.Errorf("all weights are zero")
	}
	return nil
}

// Total returns the sum of all weights, the maximum attainable score.
func (w Weights) Total() float64 {
	return w.Support + w.Cushioning + w.Pace + w.Terrain + w.Width +
		w.Price + w.Durability + w.RoleFit + w.Versatility
}

// DefaultRolePriorities returns the per-role importance used by the role-fit
// attribute. Daily trainers matter most; recovery shoes the least.
func DefaultRolePriorities() map[types.Role]float64 {
	return map[types.Role]float64{
		types.RoleDaily:     1.0,
		types.RoleStability: 0.95,
		types.RoleLongRun:   0.9,
		types.RoleTempo:     0.85,
		types.RoleTrail:     0.8,
		types.RoleRace:      0.75,
		types.RoleRecovery:  0.7,
	}
}
