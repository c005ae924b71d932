package reference

import "strings"

// synonymRule adds aliases to every substance whose canonical name contains fragment.
type synonymRule struct {
	fragment string
	aliases  []string
}

// Hand-curated label spellings that the regulated-substance dataset does not list.
var synonymRules = []synonymRule{
	{"fd&c red no 40", []string{"red 40", "red #40"}},
	{"fd&c yellow no 5", []string{"yellow 5", "yellow #5"}},
	{"fd&c blue no 1", []string{"blue 1", "blue #1"}},
	{"caramel", []string{"caramel color"}},
	{"phosphoric acid", []string{"phosphoric acid"}},
	{"sodium bicarbonate", []string{"baking soda"}},
	{"sucrose", []string{"sugar", "cane sugar", "pure cane sugar"}},
	{"sodium chloride", []string{"salt"}},
	{"mono- and diglycerides", []string{"mono and diglycerides"}},
	{"cellulose gum", []string{"cellulose gum", "carboxymethylcellulose", "cmc"}},
	{"annatto", []string{"annatto (color)"}},
	{"garlic", []string{"garlic", "dehydrated garlic", "garlic powder"}},
}

// curatedAliases returns the extra aliases for a canonical key, in rule order.
func curatedAliases(canonicalKey string) []string {
	var out []string
	for _, rule := range synonymRules {
		if strings.Contains(canonicalKey, rule.fragment) {
			out = append(out, rule.aliases...)
		}
	}
	return out
}
