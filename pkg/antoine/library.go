package antoine

import (
	"fmt"
	"sort"
	"strings"
)

// library holds commonly tabulated Antoine constants (mmHg, °C).
var library = map[string]Component{
	"acetylene": {Name: "acetylene", Coefficients: Coefficients{A: 6.81228, B: 625.64, C: 255.0}},
	"n-heptane": {Name: "n-heptane", Coefficients: Coefficients{A: 6.893, B: 1260.0, C: 216.0}},
	"n-hexane":  {Name: "n-hexane", Coefficients: Coefficients{A: 6.87601, B: 1171.17, C: 224.41}, Range: &Range{TMin: -25, TMax: 92}},
	"n-pentane": {Name: "n-pentane", Coefficients: Coefficients{A: 6.87632, B: 1075.78, C: 233.205}, Range: &Range{TMin: -50, TMax: 58}},
	"benzene":   {Name: "benzene", Coefficients: Coefficients{A: 6.90565, B: 1211.033, C: 220.79}, Range: &Range{TMin: 8, TMax: 103}},
	"toluene":   {Name: "toluene", Coefficients: Coefficients{A: 6.95464, B: 1344.8, C: 219.482}, Range: &Range{TMin: 6, TMax: 137}},
	"water":     {Name: "water", Coefficients: Coefficients{A: 8.07131, B: 1730.63, C: 233.426}, Range: &Range{TMin: 1, TMax: 100}},
	"ethanol":   {Name: "ethanol", Coefficients: Coefficients{A: 8.20417, B: 1642.89, C: 230.3}, Range: &Range{TMin: -57, TMax: 80}},
	"methanol":  {Name: "methanol", Coefficients: Coefficients{A: 8.08097, B: 1582.271, C: 239.726}, Range: &Range{TMin: 15, TMax: 84}},
	"acetone":   {Name: "acetone", Coefficients: Coefficients{A: 7.11714, B: 1210.595, C: 229.664}, Range: &Range{TMin: -13, TMax: 55}},
}

// Lookup returns the built-in component with the given name. Matching is
// case-insensitive.
func Lookup(name string) (Component, error) {
	c, ok := library[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Component{}, fmt.Errorf("antoine: unknown component %q", name)
	}
	if c.Range != nil {
		r := *c.Range
		c.Range = &r
	}
	return c, nil
}

// Names returns the built-in component names in sorted order.
func Names() []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
