package classify

import (
	"testing"

	"github.com/tupiza-labs/metalscan/internal/measure"
)

func TestFromRatioBoundaries(t *testing.T) {
	bp := DefaultBreakpoints()
	cases := []struct {
		ratio float64
		want  Tier
	}{
		{0.33, Safe},
		{1.0, Safe}, // exactly at the limit is still safe
		{1.01, Moderate},
		{1.99, Moderate},
		{2.0, High}, // twice the limit is already High
		{4.99, High},
		{5.0, Critical},
		{120, Critical},
	}
	for _, c := range cases {
		if got := FromRatio(measure.Some(c.ratio), bp); got != c.want {
			t.Fatalf("FromRatio(%g) = %s, want %s", c.ratio, got, c.want)
		}
	}
}

func TestFromRatioIsMonotonic(t *testing.T) {
	bp := DefaultBreakpoints()
	prev := NoGuideline
	for r := 0.1; r < 10; r += 0.1 {
		got := FromRatio(measure.Some(r), bp)
		if got < prev {
			t.Fatalf("tier decreased at ratio %g: %s after %s", r, got, prev)
		}
		prev = got
	}
}

func TestFromRatioMissingIsNoGuideline(t *testing.T) {
	if got := FromRatio(measure.Missing(), DefaultBreakpoints()); got != NoGuideline {
		t.Fatalf("missing ratio = %s, want No guideline", got)
	}
}

func TestRatioGuardsAgainstBadLimit(t *testing.T) {
	if !Ratio(measure.Some(0.02), 0).IsMissing() {
		t.Fatal("zero limit must yield missing, never Inf")
	}
	if !Ratio(measure.Missing(), 0.01).IsMissing() {
		t.Fatal("missing value must yield missing ratio")
	}
}

func TestAssessLeadExceedsWHO(t *testing.T) {
	stds, err := measure.NewStandardSet([]measure.Standard{
		{Parameter: "total-lead", Matrix: measure.MatrixWater, Limit: 0.01, Unit: "mg/L", Source: "WHO"},
	})
	if err != nil {
		t.Fatalf("standards: %v", err)
	}
	m := measure.Measurement{
		StationID: "A",
		Parameter: "total-lead",
		Value:     measure.Some(0.02),
		Unit:      "mg/L",
		Matrix:    measure.MatrixWater,
	}
	a := Assess(m, stds, DefaultTable())
	if r, _ := a.Ratio.Float(); r != 2.0 {
		t.Fatalf("ratio = %g, want 2.0", r)
	}
	if a.Tier != High {
		t.Fatalf("tier = %s, want High", a.Tier)
	}
	if a.Source != "WHO" {
		t.Fatalf("source = %q, want WHO", a.Source)
	}
}

func TestAssessNoStandardIsNotSafe(t *testing.T) {
	stds, _ := measure.NewStandardSet(nil)
	m := measure.Measurement{
		StationID: "A",
		Parameter: "ph",
		Value:     measure.Some(7.4),
		Matrix:    measure.MatrixWater,
	}
	a := Assess(m, stds, DefaultTable())
	if a.Tier != NoGuideline {
		t.Fatalf("tier = %s, want No guideline (never Safe)", a.Tier)
	}
	if !a.Ratio.IsMissing() {
		t.Fatalf("ratio = %v, want missing", a.Ratio)
	}
}

func TestAssessUntranslatedSkipsStandards(t *testing.T) {
	stds := measure.DefaultStandards()
	m := measure.Measurement{
		StationID:    "A",
		Parameter:    "Turbidez",
		Value:        measure.Some(12),
		Matrix:       measure.MatrixWater,
		Untranslated: true,
	}
	if a := Assess(m, stds, DefaultTable()); a.Tier != NoGuideline {
		t.Fatalf("tier = %s, want No guideline", a.Tier)
	}
}

func TestBreakpointsValidation(t *testing.T) {
	bad := Breakpoints{Safe: 2, Moderate: 2, High: 5}
	if err := bad.Valid(); err == nil {
		t.Fatal("non-increasing breakpoints must be rejected")
	}
	tbl := Table{
		Default:   DefaultBreakpoints(),
		PerMatrix: map[measure.Matrix]Breakpoints{measure.MatrixSoil: {Safe: 1, Moderate: 0.5, High: 5}},
	}
	if err := tbl.Validate(); err == nil {
		t.Fatal("invalid per-matrix breakpoints must be rejected")
	}
}

func TestForMatrixFallsBackToDefault(t *testing.T) {
	tbl := Table{
		Default:   DefaultBreakpoints(),
		PerMatrix: map[measure.Matrix]Breakpoints{measure.MatrixBlood: {Safe: 1, Moderate: 3, High: 10}},
	}
	if bp := tbl.ForMatrix(measure.MatrixBlood); bp.Moderate != 3 {
		t.Fatalf("blood breakpoints = %+v", bp)
	}
	if bp := tbl.ForMatrix(measure.MatrixWater); bp != DefaultBreakpoints() {
		t.Fatalf("water must fall back to default, got %+v", bp)
	}
}
