package measure

import (
	"fmt"
	"strings"
)

// Conversion is one row of the unit-conversion table: multiply by Factor to
// go From one unit To another. A non-empty Parameter restricts the rule to
// that canonical parameter ID.
type Conversion struct {
	Parameter string  `yaml:"parameter,omitempty"`
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	Factor    float64 `yaml:"factor"`
}

// ConversionTable is the single source of truth for unit conversions. All
// report variants share it; there is no per-call-site conversion logic.
type ConversionTable struct {
	rules []Conversion
}

// NewConversionTable validates and indexes the given rules.
func NewConversionTable(rules []Conversion) (ConversionTable, error) {
	for i, r := range rules {
		if r.From == "" || r.To == "" {
			return ConversionTable{}, fmt.Errorf("conversion %d: from/to units are required", i)
		}
		if r.Factor == 0 {
			return ConversionTable{}, fmt.Errorf("conversion %s->%s: zero factor", r.From, r.To)
		}
	}
	return ConversionTable{rules: rules}, nil
}

// DefaultConversions covers the unit families of the supported matrices.
// Mercury reported as µg/L converts to mg/L through the generic ug/L rule;
// the division by 1000 happens here and nowhere else.
func DefaultConversions() ConversionTable {
	t, _ := NewConversionTable([]Conversion{
		{From: "ug/L", To: "mg/L", Factor: 0.001},
		{From: "ng/L", To: "mg/L", Factor: 0.000001},
		{From: "g/L", To: "mg/L", Factor: 1000},
		{From: "ug/kg", To: "mg/kg", Factor: 0.001},
		{From: "g/kg", To: "mg/kg", Factor: 1000},
		{From: "ug/dL", To: "mg/dL", Factor: 0.001},
		{From: "mg/dL", To: "ug/dL", Factor: 1000},
		{From: "ppm", To: "mg/L", Factor: 1},
		{From: "ppb", To: "mg/L", Factor: 0.001},
	})
	return t
}

// CanonicalUnitName folds unit spelling variants: µ becomes u, surrounding
// space is dropped. Comparison elsewhere is case-insensitive.
func CanonicalUnitName(u string) string {
	u = strings.TrimSpace(u)
	u = strings.ReplaceAll(u, "µ", "u")
	u = strings.ReplaceAll(u, "μ", "u")
	return u
}

func unitEqual(a, b string) bool {
	return strings.EqualFold(CanonicalUnitName(a), CanonicalUnitName(b))
}

// Convert converts v from one unit to another for the given canonical
// parameter. Missing values pass through untouched. The bool reports
// whether a rule matched; converting a value already in the target unit is
// a no-op match.
func (t ConversionTable) Convert(param, from, to string, v Value) (Value, bool) {
	if unitEqual(from, to) {
		return v, true
	}
	// Parameter-specific rules take precedence over generic ones.
	var generic *Conversion
	for i := range t.rules {
		r := &t.rules[i]
		if !unitEqual(r.From, from) || !unitEqual(r.To, to) {
			continue
		}
		if r.Parameter != "" {
			if r.Parameter == param {
				return v.Scale(r.Factor), true
			}
			continue
		}
		if generic == nil {
			generic = r
		}
	}
	if generic != nil {
		return v.Scale(generic.Factor), true
	}
	return v, false
}

// Rules returns a copy of the table rows, for listing/diagnostics.
func (t ConversionTable) Rules() []Conversion {
	out := make([]Conversion, len(t.rules))
	copy(out, t.rules)
	return out
}
