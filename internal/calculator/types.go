package calculator

import "sort"

// EaterType is one category of diner. Factor expresses appetite relative to a
// normal eater (1.0), Count is the number of people of this type.
type EaterType struct {
	Name   string  `json:"name" yaml:"name"`
	Factor float64 `json:"factor" yaml:"factor"`
	Count  int     `json:"count,omitempty" yaml:"count,omitempty"`
}

// Recipe holds the per-kilogram parameters of a standard pizza dough.
// ReferencePizzaWeightG is informational and only echoed in results.
type Recipe struct {
	PizzasPerKg           float64 `json:"pizzasPerKg" yaml:"pizzasPerKg"`
	YeastPerKg            float64 `json:"yeastPerKg" yaml:"yeastPerKg"`
	SaltPerKg             float64 `json:"saltPerKg" yaml:"saltPerKg"`
	ReferencePizzaWeightG float64 `json:"referencePizzaWeightG" yaml:"referencePizzaWeightG"`
}

// Result is the outcome of a single calculation.
type Result struct {
	NeededEquivalentPizzas float64
	PizzasToMake           int
	LeftoverPizzas         float64
	FlourG                 float64
	WaterMl                float64
	YeastG                 float64
	SaltG                  float64
	DoughG                 float64

	HydrationPercent      int
	ReferencePizzaWeightG float64
}

// Calculator describes the behaviour required from a dough calculator.
type Calculator interface {
	Compute(eaters []EaterType, hydrationPercent int, noLeftovers bool, recipe Recipe) (Result, error)
}

// DefaultRecipe returns the recipe the application starts with.
func DefaultRecipe() Recipe {
	return Recipe{
		PizzasPerKg:           6,
		YeastPerKg:            7,
		SaltPerKg:             32,
		ReferencePizzaWeightG: 273.1667,
	}
}

// DefaultEaterTypes returns the three built-in eater categories with zero counts.
func DefaultEaterTypes() []EaterType {
	return []EaterType{
		{Name: "Weak-Eater", Factor: 0.5},
		{Name: "Normal-Eater", Factor: 1.0},
		{Name: "Heavy-Eater", Factor: 1.5},
	}
}

// ApplyCounts copies the configured eater types and sets their counts. Names
// in counts that match no configured type are returned sorted.
func ApplyCounts(known []EaterType, counts map[string]int) ([]EaterType, []string) {
	eaters := make([]EaterType, len(known))
	index := make(map[string]int, len(known))
	for i, e := range known {
		eaters[i] = EaterType{Name: e.Name, Factor: e.Factor}
		index[e.Name] = i
	}

	var unknown []string
	for name, count := range counts {
		i, ok := index[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		eaters[i].Count = count
	}
	sort.Strings(unknown)
	return eaters, unknown
}
