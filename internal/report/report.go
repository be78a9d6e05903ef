// Package report renders calculation results for terminal output.
package report

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/eugenenazirov/pizza-dough/internal/calculator"
)

// Line is one labelled quantity of a rendered result.
type Line struct {
	Label string
	Value string
}

// Lines formats r with number grouping and decimal separators of lang.
// The leftover line reads 0.00 in no-leftovers mode because Compute already
// reports zero there.
func Lines(r calculator.Result, lang language.Tag) []Line {
	p := message.NewPrinter(lang)
	return []Line{
		{Label: "Needed pizzas (equivalent)", Value: p.Sprintf("%.2f", r.NeededEquivalentPizzas)},
		{Label: "Pizzas to make", Value: p.Sprintf("%d", r.PizzasToMake)},
		{Label: "Leftovers (pizzas)", Value: p.Sprintf("%.2f", r.LeftoverPizzas)},
		{Label: "Hydration", Value: p.Sprintf("%d%%", r.HydrationPercent)},
		{Label: "Flour", Value: p.Sprintf("%.0f g", r.FlourG)},
		{Label: "Water", Value: p.Sprintf("%.0f ml", r.WaterMl)},
		{Label: "Yeast", Value: p.Sprintf("%.1f g", r.YeastG)},
		{Label: "Salt", Value: p.Sprintf("%.1f g", r.SaltG)},
		{Label: "Total dough", Value: p.Sprintf("%.0f g", r.DoughG)},
		{Label: "Reference weight per pizza", Value: p.Sprintf("%.1f g", r.ReferencePizzaWeightG)},
	}
}

// Write prints the result as an aligned two-column table.
func Write(w io.Writer, r calculator.Result, lang language.Tag) error {
	lines := Lines(r, lang)
	width := 0
	for _, l := range lines {
		if len(l.Label) > width {
			width = len(l.Label)
		}
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, l.Label, l.Value); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}
