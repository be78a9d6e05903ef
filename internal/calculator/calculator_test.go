package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func sampleEaters() []EaterType {
	return []EaterType{
		{Name: "weak", Factor: 0.5, Count: 2},
		{Name: "normal", Factor: 1.0, Count: 3},
		{Name: "heavy", Factor: 1.5, Count: 1},
	}
}

func sampleRecipe() Recipe {
	return Recipe{PizzasPerKg: 6, YeastPerKg: 7, SaltPerKg: 32, ReferencePizzaWeightG: 273.1667}
}

func TestComputeMixedEaters(t *testing.T) {
	t.Parallel()

	got, err := New().Compute(sampleEaters(), 60, false, sampleRecipe())
	require.NoError(t, err)

	assert.InDelta(t, 5.5, got.NeededEquivalentPizzas, tolerance)
	assert.Equal(t, 6, got.PizzasToMake)
	assert.InDelta(t, 0.5, got.LeftoverPizzas, tolerance)
	assert.InDelta(t, 1000.0, got.FlourG, tolerance)
	assert.InDelta(t, 600.0, got.WaterMl, tolerance)
	assert.InDelta(t, 7.0, got.YeastG, tolerance)
	assert.InDelta(t, 32.0, got.SaltG, tolerance)
	assert.InDelta(t, 1639.0, got.DoughG, tolerance)
	assert.Equal(t, 60, got.HydrationPercent)
	assert.Equal(t, 273.1667, got.ReferencePizzaWeightG)
}

func TestComputeNoLeftoversOnlyChangesReportedLeftover(t *testing.T) {
	t.Parallel()

	withLeftovers, err := Compute(sampleEaters(), 60, false, sampleRecipe())
	require.NoError(t, err)
	without, err := Compute(sampleEaters(), 60, true, sampleRecipe())
	require.NoError(t, err)

	assert.Zero(t, without.LeftoverPizzas)
	assert.Equal(t, withLeftovers.PizzasToMake, without.PizzasToMake)
	assert.Equal(t, withLeftovers.FlourG, without.FlourG)
	assert.Equal(t, withLeftovers.WaterMl, without.WaterMl)
	assert.Equal(t, withLeftovers.YeastG, without.YeastG)
	assert.Equal(t, withLeftovers.SaltG, without.SaltG)
	assert.Equal(t, withLeftovers.DoughG, without.DoughG)
}

func TestComputeZeroDemand(t *testing.T) {
	t.Parallel()

	eaters := sampleEaters()
	for i := range eaters {
		eaters[i].Count = 0
	}

	for _, noLeftovers := range []bool{false, true} {
		got, err := Compute(eaters, 60, noLeftovers, sampleRecipe())
		require.NoError(t, err)
		assert.Zero(t, got.NeededEquivalentPizzas)
		assert.Zero(t, got.PizzasToMake)
		assert.Zero(t, got.LeftoverPizzas)
		assert.Zero(t, got.FlourG)
		assert.Zero(t, got.WaterMl)
		assert.Zero(t, got.YeastG)
		assert.Zero(t, got.SaltG)
		assert.Zero(t, got.DoughG)
	}
}

func TestComputeNoEaters(t *testing.T) {
	t.Parallel()

	got, err := Compute(nil, 75, false, sampleRecipe())
	require.NoError(t, err)
	assert.Zero(t, got.PizzasToMake)
	assert.Zero(t, got.DoughG)
}

func TestComputeRejectsInvalidRecipe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Recipe)
		field  string
	}{
		{name: "ZeroPizzasPerKg", mutate: func(r *Recipe) { r.PizzasPerKg = 0 }, field: "pizzasPerKg"},
		{name: "NegativePizzasPerKg", mutate: func(r *Recipe) { r.PizzasPerKg = -2 }, field: "pizzasPerKg"},
		{name: "InfinitePizzasPerKg", mutate: func(r *Recipe) { r.PizzasPerKg = math.Inf(1) }, field: "pizzasPerKg"},
		{name: "NegativeYeast", mutate: func(r *Recipe) { r.YeastPerKg = -1 }, field: "yeastPerKg"},
		{name: "NaNSalt", mutate: func(r *Recipe) { r.SaltPerKg = math.NaN() }, field: "saltPerKg"},
		{name: "NegativeReferenceWeight", mutate: func(r *Recipe) { r.ReferencePizzaWeightG = -1 }, field: "referencePizzaWeightG"},
		{name: "ZeroReferenceWeight", mutate: func(r *Recipe) { r.ReferencePizzaWeightG = 0 }, field: "referencePizzaWeightG"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recipe := sampleRecipe()
			tc.mutate(&recipe)

			got, err := Compute(sampleEaters(), 60, false, recipe)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.False(t, errors.Is(err, ErrInvalidInput))
			assert.Equal(t, Result{}, got)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		eaters    []EaterType
		hydration int
	}{
		{name: "NegativeCount", eaters: []EaterType{{Name: "normal", Factor: 1, Count: -1}}, hydration: 60},
		{name: "NegativeFactor", eaters: []EaterType{{Name: "normal", Factor: -0.5, Count: 1}}, hydration: 60},
		{name: "NaNFactor", eaters: []EaterType{{Name: "normal", Factor: math.NaN(), Count: 1}}, hydration: 60},
		{name: "EmptyName", eaters: []EaterType{{Name: "", Factor: 1, Count: 1}}, hydration: 60},
		{name: "DuplicateName", eaters: []EaterType{{Name: "a", Factor: 1, Count: 1}, {Name: "a", Factor: 2, Count: 1}}, hydration: 60},
		{name: "HydrationBelowRange", eaters: sampleEaters(), hydration: -5},
		{name: "HydrationAboveRange", eaters: sampleEaters(), hydration: 105},
		{name: "DuplicateAfterTrim", eaters: []EaterType{{Name: "a", Factor: 1, Count: 1}, {Name: " a ", Factor: 2, Count: 1}}, hydration: 60},
		{name: "WhitespaceName", eaters: []EaterType{{Name: "   ", Factor: 1, Count: 1}}, hydration: 60},
		{name: "DemandOverflow", eaters: []EaterType{
			{Name: "heavy", Factor: 1.5, Count: math.MaxInt64 / 2},
			{Name: "normal", Factor: 1, Count: math.MaxInt64 / 2},
		}, hydration: 60},
		{name: "InfiniteDemand", eaters: []EaterType{{Name: "huge", Factor: math.MaxFloat64, Count: 2}}, hydration: 60},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compute(tc.eaters, tc.hydration, false, sampleRecipe())
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, Result{}, got)
		})
	}
}

func TestComputeHydrationBounds(t *testing.T) {
	t.Parallel()

	dry, err := Compute(sampleEaters(), 0, false, sampleRecipe())
	require.NoError(t, err)
	assert.Zero(t, dry.WaterMl)

	wet, err := Compute(sampleEaters(), 100, false, sampleRecipe())
	require.NoError(t, err)
	assert.InDelta(t, wet.FlourG, wet.WaterMl, tolerance)
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()

	eaters := []EaterType{
		{Name: "a", Factor: 0.3, Count: 7},
		{Name: "b", Factor: 1.1, Count: 3},
		{Name: "c", Factor: 2.7, Count: 1},
	}
	recipe := Recipe{PizzasPerKg: 7, YeastPerKg: 3.5, SaltPerKg: 28.5, ReferencePizzaWeightG: 250}

	first, err := Compute(eaters, 65, false, recipe)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := Compute(eaters, 65, false, recipe)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestComputeCeilingAndLeftoverInvariants(t *testing.T) {
	t.Parallel()

	for count := 0; count <= 40; count++ {
		eaters := []EaterType{
			{Name: "light", Factor: 0.35, Count: count},
			{Name: "normal", Factor: 1.0, Count: count / 3},
		}
		got, err := Compute(eaters, 60, false, sampleRecipe())
		require.NoError(t, err)

		assert.Equal(t, int(math.Ceil(got.NeededEquivalentPizzas)), got.PizzasToMake)
		assert.GreaterOrEqual(t, float64(got.PizzasToMake), got.NeededEquivalentPizzas)
		assert.Less(t, float64(got.PizzasToMake)-got.NeededEquivalentPizzas, 1.0)
		assert.Equal(t, float64(got.PizzasToMake)-got.NeededEquivalentPizzas, got.LeftoverPizzas)
	}
}

func TestComputeIsMonotonicInCount(t *testing.T) {
	t.Parallel()

	prev, err := Compute(sampleEaters(), 70, false, sampleRecipe())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		eaters := sampleEaters()
		for step := 1; step <= 10; step++ {
			eaters[i].Count++
			next, err := Compute(eaters, 70, false, sampleRecipe())
			require.NoError(t, err)

			assert.GreaterOrEqual(t, next.NeededEquivalentPizzas, prev.NeededEquivalentPizzas)
			assert.GreaterOrEqual(t, next.PizzasToMake, prev.PizzasToMake)
			assert.GreaterOrEqual(t, next.FlourG, prev.FlourG)
			assert.GreaterOrEqual(t, next.WaterMl, prev.WaterMl)
			assert.GreaterOrEqual(t, next.YeastG, prev.YeastG)
			assert.GreaterOrEqual(t, next.SaltG, prev.SaltG)
			assert.GreaterOrEqual(t, next.DoughG, prev.DoughG)
			prev = next
		}
		prev, err = Compute(sampleEaters(), 70, false, sampleRecipe())
		require.NoError(t, err)
	}
}

func TestComputeIngredientsScaleLinearly(t *testing.T) {
	t.Parallel()

	recipe := Recipe{PizzasPerKg: 7, YeastPerKg: 4, SaltPerKg: 30, ReferencePizzaWeightG: 250}
	one, err := Compute([]EaterType{{Name: "n", Factor: 1, Count: 1}}, 65, false, recipe)
	require.NoError(t, err)
	require.Equal(t, 1, one.PizzasToMake)

	for n := 2; n <= 25; n++ {
		got, err := Compute([]EaterType{{Name: "n", Factor: 1, Count: n}}, 65, false, recipe)
		require.NoError(t, err)
		require.Equal(t, n, got.PizzasToMake)

		scale := float64(n)
		assert.InDelta(t, one.FlourG*scale, got.FlourG, tolerance)
		assert.InDelta(t, one.WaterMl*scale, got.WaterMl, tolerance)
		assert.InDelta(t, one.YeastG*scale, got.YeastG, tolerance)
		assert.InDelta(t, one.SaltG*scale, got.SaltG, tolerance)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := invalidInput("eaters[x].count", "must not be negative")
	assert.Equal(t, "invalid calculation input: eaters[x].count must not be negative", err.Error())
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateRecipe(DefaultRecipe()))
	defaults := DefaultEaterTypes()
	require.Len(t, defaults, 3)
	for _, e := range defaults {
		require.NoError(t, ValidateEaterType(e))
		assert.Zero(t, e.Count)
	}
}

func BenchmarkCompute(b *testing.B) {
	calc := New()
	eaters := sampleEaters()
	recipe := sampleRecipe()
	for i := 0; i < b.N; i++ {
		if _, err := calc.Compute(eaters, 60, false, recipe); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestApplyCounts(t *testing.T) {
	known := []EaterType{{Name: "Weak-Eater", Factor: 0.5, Count: 9}, {Name: "Normal-Eater", Factor: 1}}

	eaters, unknown := ApplyCounts(known, map[string]int{"Normal-Eater": 4, "Zed": 1, "Alpha": 2})
	assert.Equal(t, []string{"Alpha", "Zed"}, unknown)
	require.Len(t, eaters, 2)
	assert.Equal(t, 0, eaters[0].Count)
	assert.Equal(t, 4, eaters[1].Count)
	assert.Equal(t, 9, known[0].Count, "input must not be modified")
}

func TestComputeLargeDemandStaysNonNegative(t *testing.T) {
	t.Parallel()

	got, err := Compute([]EaterType{{Name: "crowd", Factor: 1, Count: 1 << 40}}, 60, false, sampleRecipe())
	require.NoError(t, err)
	assert.Equal(t, 1<<40, got.PizzasToMake)
	assert.Positive(t, got.FlourG)
}
