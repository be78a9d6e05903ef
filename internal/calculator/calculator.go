package calculator

import (
	"fmt"
	"math"
	"strings"
)

const (
	gramsPerKg          = 1000.0
	minHydrationPercent = 0
	maxHydrationPercent = 100
)

type doughCalculator struct{}

// New creates a Calculator backed by Compute.
func New() Calculator {
	return &doughCalculator{}
}

func (c *doughCalculator) Compute(eaters []EaterType, hydrationPercent int, noLeftovers bool, recipe Recipe) (Result, error) {
	return Compute(eaters, hydrationPercent, noLeftovers, recipe)
}

// Compute turns eater demand into whole pizzas and ingredient quantities.
// Pizzas are always rounded up; noLeftovers only zeroes the reported leftover.
func Compute(eaters []EaterType, hydrationPercent int, noLeftovers bool, recipe Recipe) (Result, error) {
	if err := ValidateRecipe(recipe); err != nil {
		return Result{}, err
	}
	if hydrationPercent < minHydrationPercent || hydrationPercent > maxHydrationPercent {
		return Result{}, invalidInput("hydrationPercent", fmt.Sprintf("must be within [%d,%d], got %d", minHydrationPercent, maxHydrationPercent, hydrationPercent))
	}
	if err := validateEaters(eaters); err != nil {
		return Result{}, err
	}

	needed := 0.0
	for _, e := range eaters {
		needed += float64(e.Count) * e.Factor
	}

	if !finite(needed) || needed >= float64(math.MaxInt) {
		return Result{}, invalidInput("eaters", "demand exceeds the supported range")
	}

	pizzas := math.Ceil(needed)

	flourPerPizza := gramsPerKg / recipe.PizzasPerKg
	flour := flourPerPizza * pizzas
	water := flour * (float64(hydrationPercent) / 100.0)
	yeast := recipe.YeastPerKg * (flour / gramsPerKg)
	salt := recipe.SaltPerKg * (flour / gramsPerKg)

	leftover := 0.0
	if !noLeftovers {
		leftover = pizzas - needed
	}

	return Result{
		NeededEquivalentPizzas: needed,
		PizzasToMake:           int(pizzas),
		LeftoverPizzas:         leftover,
		FlourG:                 flour,
		WaterMl:                water,
		YeastG:                 yeast,
		SaltG:                  salt,
		DoughG:                 flour + water + yeast + salt,
		HydrationPercent:       hydrationPercent,
		ReferencePizzaWeightG:  recipe.ReferencePizzaWeightG,
	}, nil
}

// ValidateRecipe reports whether the recipe can be used as a divisor and rate source.
func ValidateRecipe(r Recipe) error {
	switch {
	case !finite(r.PizzasPerKg) || r.PizzasPerKg <= 0:
		return invalidConfig("pizzasPerKg", "must be a positive number")
	case !finite(r.YeastPerKg) || r.YeastPerKg < 0:
		return invalidConfig("yeastPerKg", "must be a non-negative number")
	case !finite(r.SaltPerKg) || r.SaltPerKg < 0:
		return invalidConfig("saltPerKg", "must be a non-negative number")
	case !finite(r.ReferencePizzaWeightG) || r.ReferencePizzaWeightG <= 0:
		return invalidConfig("referencePizzaWeightG", "must be a positive number")
	}
	return nil
}

// ValidateEaterType checks the name and factor of a single eater type; the
// count is only checked when calculating.
func ValidateEaterType(e EaterType) error {
	if strings.TrimSpace(e.Name) == "" {
		return invalidInput("name", "must not be empty")
	}
	if !finite(e.Factor) || e.Factor < 0 {
		return invalidInput(fmt.Sprintf("eaters[%s].factor", e.Name), "must be a non-negative number")
	}
	return nil
}

func validateEaters(eaters []EaterType) error {
	seen := make(map[string]struct{}, len(eaters))
	for _, e := range eaters {
		if err := ValidateEaterType(e); err != nil {
			return err
		}
		name := strings.TrimSpace(e.Name)
		if _, dup := seen[name]; dup {
			return invalidInput(fmt.Sprintf("eaters[%s]", name), "is listed more than once")
		}
		seen[name] = struct{}{}
		if e.Count < 0 {
			return invalidInput(fmt.Sprintf("eaters[%s].count", e.Name), "must not be negative")
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
