// Package classify maps exceedance ratios onto ordinal risk tiers. The
// tier boundaries are data, configured per sample matrix, never literals
// at the call site.
package classify

import (
	"fmt"

	"github.com/tupiza-labs/metalscan/internal/measure"
)

// Tier is an ordinal risk category. NoGuideline means no reference
// standard applies; it is distinct from Safe and sorts below it only so
// the zero value is the "unknown" state.
type Tier int

const (
	NoGuideline Tier = iota
	Safe
	Moderate
	High
	Critical
)

// MarshalJSON encodes tiers by name; consumers read categories, not ranks.
func (t Tier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t Tier) String() string {
	switch t {
	case NoGuideline:
		return "No guideline"
	case Safe:
		return "Safe"
	case Moderate:
		return "Moderate"
	case High:
		return "High"
	case Critical:
		return "Critical"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Breakpoints are the ratio bounds between tiers for one sample matrix:
//
//	ratio <= Safe           -> Safe
//	Safe  <  ratio < Moderate -> Moderate
//	Moderate <= ratio < High  -> High
//	ratio >= High           -> Critical
//
// The Safe bound is inclusive (a measurement exactly at the limit is
// safe); the upper bounds belong to the higher tier, so a value at twice
// the limit already classifies High.
type Breakpoints struct {
	Safe     float64 `yaml:"safe"`
	Moderate float64 `yaml:"moderate"`
	High     float64 `yaml:"high"`
}

// DefaultBreakpoints is the canonical 1/2/5 tier table.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{Safe: 1, Moderate: 2, High: 5}
}

// Valid checks that the bounds are positive and strictly increasing.
func (b Breakpoints) Valid() error {
	if b.Safe <= 0 || b.Moderate <= b.Safe || b.High <= b.Moderate {
		return fmt.Errorf("breakpoints must satisfy 0 < safe < moderate < high, got %g/%g/%g",
			b.Safe, b.Moderate, b.High)
	}
	return nil
}

// Table holds per-matrix breakpoints with a shared default.
type Table struct {
	Default   Breakpoints                    `yaml:"default"`
	PerMatrix map[measure.Matrix]Breakpoints `yaml:"per_matrix,omitempty"`
}

// DefaultTable applies the canonical breakpoints to every matrix.
func DefaultTable() Table {
	return Table{Default: DefaultBreakpoints()}
}

// ForMatrix returns the breakpoints configured for m, or the default.
func (t Table) ForMatrix(m measure.Matrix) Breakpoints {
	if bp, ok := t.PerMatrix[m]; ok {
		return bp
	}
	return t.Default
}

// Validate checks every configured breakpoint set.
func (t Table) Validate() error {
	if err := t.Default.Valid(); err != nil {
		return fmt.Errorf("default breakpoints: %w", err)
	}
	for m, bp := range t.PerMatrix {
		if err := bp.Valid(); err != nil {
			return fmt.Errorf("%s breakpoints: %w", m, err)
		}
	}
	return nil
}

// Assessment is the derived classification of one measurement. Recomputed
// from its inputs on every run, never cached.
type Assessment struct {
	Ratio measure.Value
	Tier  Tier
	// Limit and Source echo the applied standard, zero/"" when none.
	Limit  float64
	Source string
}

// Ratio divides a measured value by the applicable limit. Missing value or
// non-positive limit yield missing, so NaN/Inf can never enter aggregates.
func Ratio(v measure.Value, limit float64) measure.Value {
	f, ok := v.Float()
	if !ok || limit <= 0 {
		return measure.Missing()
	}
	return measure.Some(f / limit)
}

// FromRatio maps an exceedance ratio onto a tier. A missing ratio (no
// guideline, missing value, undefined limit) is NoGuideline.
func FromRatio(ratio measure.Value, bp Breakpoints) Tier {
	r, ok := ratio.Float()
	if !ok {
		return NoGuideline
	}
	switch {
	case r <= bp.Safe:
		return Safe
	case r < bp.Moderate:
		return Moderate
	case r < bp.High:
		return High
	default:
		return Critical
	}
}

// Assess classifies a measurement against its reference standard, if any.
// Untranslated parameters and parameters without a standard come back as
// NoGuideline with a missing ratio.
func Assess(m measure.Measurement, stds *measure.StandardSet, bp Table) Assessment {
	if m.Untranslated {
		return Assessment{Ratio: measure.Missing(), Tier: NoGuideline}
	}
	std, ok := stds.Lookup(m.Parameter, m.Matrix)
	if !ok {
		return Assessment{Ratio: measure.Missing(), Tier: NoGuideline}
	}
	ratio := Ratio(m.Value, std.Limit)
	return Assessment{
		Ratio:  ratio,
		Tier:   FromRatio(ratio, bp.ForMatrix(m.Matrix)),
		Limit:  std.Limit,
		Source: std.Source,
	}
}
