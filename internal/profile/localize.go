package profile

import (
	"golang.org/x/text/language"

	"github.com/eugenenazirov/pizza-dough/internal/calculator"
)

// defaultEaterNames pairs the English and German names of the built-in eater types.
var defaultEaterNames = [][2]string{
	{"Weak-Eater", "Wenig-Esser"},
	{"Normal-Eater", "Normal-Esser"},
	{"Heavy-Eater", "Viel-Esser"},
}

// LocalizeEaterNames renames the built-in eater types into lang. German tags
// get the German names, every other tag the English ones. Custom names are
// left alone, and a rename that would collide with an existing name is skipped.
func LocalizeEaterNames(eaters []calculator.EaterType, lang language.Tag) []calculator.EaterType {
	from, to := 1, 0
	if base, _ := lang.Base(); base.String() == "de" {
		from, to = 0, 1
	}

	rename := make(map[string]string, len(defaultEaterNames))
	for _, pair := range defaultEaterNames {
		rename[pair[from]] = pair[to]
	}

	taken := make(map[string]struct{}, len(eaters))
	for _, e := range eaters {
		taken[e.Name] = struct{}{}
	}

	out := make([]calculator.EaterType, len(eaters))
	for i, e := range eaters {
		out[i] = e
		target, ok := rename[e.Name]
		if !ok {
			continue
		}
		if _, clash := taken[target]; clash {
			continue
		}
		delete(taken, e.Name)
		taken[target] = struct{}{}
		out[i].Name = target
	}
	return out
}
