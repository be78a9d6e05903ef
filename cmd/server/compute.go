package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/pizza-dough/internal/application"
	"github.com/eugenenazirov/pizza-dough/internal/calculator"
	"github.com/eugenenazirov/pizza-dough/internal/report"
)

type computeOptions struct {
	ProfileFile string
	Eaters      []string
	Hydration   int
	NoLeftovers bool
	Lang        string
	JSON        bool
}

type computeOutput struct {
	NeededEquivalentPizzas float64 `json:"neededEquivalentPizzas"`
	PizzasToMake           int     `json:"pizzasToMake"`
	LeftoverPizzas         float64 `json:"leftoverPizzas"`
	FlourG                 float64 `json:"flourG"`
	WaterMl                float64 `json:"waterMl"`
	YeastG                 float64 `json:"yeastG"`
	SaltG                  float64 `json:"saltG"`
	DoughG                 float64 `json:"doughG"`
	HydrationPercent       int     `json:"hydrationPercent"`
	ReferencePizzaWeightG  float64 `json:"referencePizzaWeightG"`
}

func runCompute(out io.Writer, opts computeOptions, logger *zap.Logger) error {
	p, err := application.LoadProfile(opts.ProfileFile)
	if err != nil {
		return err
	}

	counts, err := parseEaterCounts(opts.Eaters)
	if err != nil {
		return err
	}
	eaters, err := withCounts(p.Eaters, counts)
	if err != nil {
		return err
	}

	lang := p.Lang
	if opts.Lang != "" {
		if lang, err = language.Parse(opts.Lang); err != nil {
			return fmt.Errorf("invalid language %q: %w", opts.Lang, err)
		}
	}

	result, err := calculator.Compute(eaters, opts.Hydration, opts.NoLeftovers, p.Recipe)
	if err != nil {
		return err
	}
	logger.Debug("computed dough",
		zap.Int("pizzas_to_make", result.PizzasToMake),
		zap.Float64("dough_g", result.DoughG),
	)

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(computeOutput(result))
	}
	return report.Write(out, result, lang)
}

// parseEaterCounts turns NAME=COUNT pairs into a map. A name given twice is an error.
func parseEaterCounts(pairs []string) (map[string]int, error) {
	counts := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid eater %q: expected NAME=COUNT", pair)
		}
		count, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid count for %q: %w", name, err)
		}
		if _, dup := counts[name]; dup {
			return nil, fmt.Errorf("eater %q given more than once", name)
		}
		counts[name] = count
	}
	return counts, nil
}

func withCounts(known []calculator.EaterType, counts map[string]int) ([]calculator.EaterType, error) {
	eaters, unknown := calculator.ApplyCounts(known, counts)
	if len(unknown) > 0 {
		names := make([]string, len(known))
		for i, e := range known {
			names[i] = e.Name
		}
		return nil, fmt.Errorf("unknown eater types %s (configured: %s)",
			strings.Join(unknown, ", "), strings.Join(names, ", "))
	}
	return eaters, nil
}
