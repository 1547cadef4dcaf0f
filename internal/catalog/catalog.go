// Package catalog loads, validates and indexes the shoe catalog. The
// catalog is built once at startup and shared read-only by every request;
// nothing here mutates after construction.
package catalog

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/stridelab/shoefit/internal/profile"
	"github.com/stridelab/shoefit/internal/types"
)

// Default pace window substituted in lenient mode when a catalog entry
// carries no usable pace data: 4:00-7:00 per km covers most trainers.
var defaultPaceRange = types.PaceRange{Min: 240, Max: 420}

// Catalog is an immutable, name-indexed set of shoes.
type Catalog struct {
	shoes  []types.Shoe
	byName map[string]int
}

// Stats summarizes the loaded catalog for health endpoints and logs.
type Stats struct {
	Total      int          `json:"total"`
	Brands     int          `json:"brands"`
	AvgPrice   float64      `json:"avgPrice"`
	PriceRange PriceRange   `json:"priceRange"`
	Roles      []types.Role `json:"rolesCovered"`
}

// PriceRange is the min/max price across the catalog.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Report aggregates every integrity problem found in a catalog instead of
// stopping at the first.
type Report struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Load reads a catalog JSON file. In strict mode any malformed entry
// fails the load; in lenient mode missing pace windows get a default and
// everything else still fails.
func Load(path string, strict bool) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var shoes []types.Shoe
	if err := json.Unmarshal(data, &shoes); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(shoes, strict)
}

// New builds a catalog from already-decoded shoes, deriving each shoe's
// numeric pace window from its string form.
func New(shoes []types.Shoe, strict bool) (*Catalog, error) {
	validate := validator.New()
	byName := make(map[string]int, len(shoes))
	out := make([]types.Shoe, 0, len(shoes))

	for i, shoe := range shoes {
		shoe.PaceRangeSecPerKm = profile.ConvertPaceRange(shoe.PaceRange)

		if shoe.PaceRangeSecPerKm.Min >= shoe.PaceRangeSecPerKm.Max {
			if strict {
				return nil, fmt.Errorf("catalog entry %d (%q): invalid pace range", i, shoe.Name)
			}
			shoe.PaceRangeSecPerKm = defaultPaceRange
		}

		if err := validate.Struct(shoe); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, shoe.Name, err)
		}
		if _, dup := byName[shoe.Name]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate name %q", i, shoe.Name)
		}

		byName[shoe.Name] = len(out)
		out = append(out, shoe)
	}

	return &Catalog{shoes: out, byName: byName}, nil
}

// Shoes returns the catalog in load order. Callers must not mutate the
// returned slice.
func (c *Catalog) Shoes() []types.Shoe { return c.shoes }

// Len returns the number of shoes in the catalog.
func (c *Catalog) Len() int { return len(c.shoes) }

// ByName looks a shoe up by its unique name.
func (c *Catalog) ByName(name string) (types.Shoe, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return types.Shoe{}, false
	}
	return c.shoes[idx], true
}

// ByBrand returns every shoe of a brand, case-insensitive.
func (c *Catalog) ByBrand(brand string) []types.Shoe {
	normalized := strings.ToLower(brand)
	out := []types.Shoe{}
	for _, shoe := range c.shoes {
		if strings.ToLower(shoe.Brand) == normalized {
			out = append(out, shoe)
		}
	}
	return out
}

// ByRole returns every shoe built for a role.
func (c *Catalog) ByRole(role types.Role) []types.Shoe {
	out := []types.Shoe{}
	for _, shoe := range c.shoes {
		if shoe.HasRole(role) {
			out = append(out, shoe)
		}
	}
	return out
}

// ByPriceRange returns every shoe priced within [min, max], inclusive.
func (c *Catalog) ByPriceRange(min, max float64) []types.Shoe {
	out := []types.Shoe{}
	for _, shoe := range c.shoes {
		if shoe.Price >= min && shoe.Price <= max {
			out = append(out, shoe)
		}
	}
	return out
}

// Stats computes summary statistics over the catalog.
func (c *Catalog) Stats() Stats {
	stats := Stats{Total: len(c.shoes), Roles: []types.Role{}}
	if len(c.shoes) == 0 {
		return stats
	}

	brands := map[string]bool{}
	roles := map[types.Role]bool{}
	total := 0.0
	stats.PriceRange = PriceRange{Min: c.shoes[0].Price, Max: c.shoes[0].Price}

	for _, shoe := range c.shoes {
		brands[shoe.Brand] = true
		total += shoe.Price
		if shoe.Price < stats.PriceRange.Min {
			stats.PriceRange.Min = shoe.Price
		}
		if shoe.Price > stats.PriceRange.Max {
			stats.PriceRange.Max = shoe.Price
		}
		for _, role := range shoe.Roles {
			roles[role] = true
		}
	}

	stats.Brands = len(brands)
	stats.AvgPrice = math.Round(total / float64(len(c.shoes)))
	for _, role := range types.RoleOrder {
		if roles[role] {
			stats.Roles = append(stats.Roles, role)
		}
	}
	return stats
}

// ValidateAll re-checks every entry and aggregates all problems into one
// report rather than halting on the first.
func (c *Catalog) ValidateAll() Report {
	errs := []string{}

	for i, shoe := range c.shoes {
		if strings.TrimSpace(shoe.Name) == "" {
			errs = append(errs, fmt.Sprintf("Shoe at index %d missing name", i))
		}
		if strings.TrimSpace(shoe.Brand) == "" {
			errs = append(errs, fmt.Sprintf("Shoe %q missing brand", shoe.Name))
		}
		if len(shoe.Roles) == 0 {
			errs = append(errs, fmt.Sprintf("Shoe %q missing roles", shoe.Name))
		}
		if shoe.CushioningScale < 0 || shoe.CushioningScale > 10 {
			errs = append(errs, fmt.Sprintf("Shoe %q has invalid cushioning scale: %v", shoe.Name, shoe.CushioningScale))
		}
		if shoe.Price <= 0 {
			errs = append(errs, fmt.Sprintf("Shoe %q has invalid price: %v", shoe.Name, shoe.Price))
		}
		if shoe.PaceRangeSecPerKm.Min >= shoe.PaceRangeSecPerKm.Max {
			errs = append(errs, fmt.Sprintf("Shoe %q has invalid pace range", shoe.Name))
		}
	}

	return Report{Valid: len(errs) == 0, Errors: errs}
}
