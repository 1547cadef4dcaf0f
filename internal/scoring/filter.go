package scoring

import (
	"strings"

	"github.com/stridelab/shoefit/internal/types"
)

// FilterByBudget narrows the catalog to shoes a runner's stated budget can
// actually buy, before any scoring happens. "Under $100" is a strict upper
// bound; the bounded ranges are inclusive at the top; "$200+" and anything
// unrecognized admit the whole catalog.
func FilterByBudget(shoes []types.Shoe, budget string) []types.Shoe {
	limit, strict := budgetCeiling(budget)
	if limit == 0 {
		out := make([]types.Shoe, len(shoes))
		copy(out, shoes)
		return out
	}

	out := make([]types.Shoe, 0, len(shoes))
	for _, shoe := range shoes {
		if strict && shoe.Price >= limit {
			continue
		}
		if !strict && shoe.Price > limit {
			continue
		}
		out = append(out, shoe)
	}
	return out
}

// budgetCeiling returns the price ceiling for a budget answer and whether
// the bound is strict. A zero ceiling means no limit.
func budgetCeiling(budget string) (limit float64, strict bool) {
	switch {
	case strings.Contains(budget, "Under $100"):
		return 100, true
	case strings.Contains(budget, "$100-150"):
		return 150, false
	case strings.Contains(budget, "$150-200"):
		return 200, false
	}
	return 0, false
}
