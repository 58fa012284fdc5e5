package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tupiza-labs/metalscan/internal/classify"
	"github.com/tupiza-labs/metalscan/internal/measure"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// whoContext builds a run context limited to WHO drinking-water limits, so
// tier expectations are not shifted by stricter national limits.
func whoContext(t *testing.T) *Context {
	t.Helper()
	stds, err := measure.NewStandardSet([]measure.Standard{
		{Parameter: "total-mercury", Matrix: measure.MatrixWater, Limit: 0.006, Unit: "mg/L", Source: "WHO"},
		{Parameter: "total-lead", Matrix: measure.MatrixWater, Limit: 0.01, Unit: "mg/L", Source: "WHO"},
	})
	if err != nil {
		t.Fatalf("standards: %v", err)
	}
	ctx := NewContext()
	ctx.Standards = stds
	return ctx
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "seca.csv",
		"Parametro;T-01;T-02\n"+
			"Mercurio Total (µg/L);2;36\n"+
			"Plomo Total (mg/L);0,02;0,005\n"+
			"pH;7,4;6,9\n"+
			"Turbidez;12;\n")
	stations := writeFile(t, dir, "stations.csv",
		"station_id,code,basin,date,latitude,longitude\n"+
			"T-01,TPZ-01,Tupiza,15/03/2024,-21.44,-65.72\n"+
			"T-02,TPZ-02,Tupiza,15/03/2024,,\n")

	ctx := whoContext(t)
	res := Run(ctx, []Section{{
		Name:         "Epoca Seca",
		Path:         data,
		Matrix:       measure.MatrixWater,
		StationsPath: stations,
	}})
	if len(res.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(res.Sections))
	}
	sec := res.Sections[0]
	if sec.Err != nil {
		t.Fatalf("section failed: %v", sec.Err)
	}
	if len(sec.Measurements) != 8 {
		t.Fatalf("measurements = %d, want one per grid cell (8)", len(sec.Measurements))
	}

	// Mercury arrives in µg/L and must be compared in mg/L: 2 µg/L is
	// 0.002 mg/L against WHO 0.006, comfortably Safe; 36 µg/L is six times
	// the limit, Critical.
	byParam := map[string]measure.Measurement{}
	for _, m := range sec.Measurements {
		if m.StationID == "T-01" {
			byParam[m.Parameter] = m
		}
	}
	hg := byParam["total-mercury"]
	if hg.Unit != "mg/L" {
		t.Fatalf("mercury unit = %q, want mg/L", hg.Unit)
	}
	if f, _ := hg.Value.Float(); f != 0.002 {
		t.Fatalf("mercury value = %g, want 0.002", f)
	}

	if len(sec.ByStation) != 2 {
		t.Fatalf("station summaries = %d, want 2", len(sec.ByStation))
	}
	t01, t02 := sec.ByStation[0], sec.ByStation[1]
	// T-01: lead at 2x the limit is the worst offender.
	if t01.Category != classify.High {
		t.Fatalf("T-01 category = %s, want High", t01.Category)
	}
	if t01.CountExceeding != 1 {
		t.Fatalf("T-01 count exceeding = %d, want 1 (lead only)", t01.CountExceeding)
	}
	// T-02: mercury at 6x the limit.
	if t02.Category != classify.Critical {
		t.Fatalf("T-02 category = %s, want Critical", t02.Category)
	}

	if len(sec.Untranslated) != 1 || sec.Untranslated[0] != "Turbidez" {
		t.Fatalf("untranslated = %v, want [Turbidez]", sec.Untranslated)
	}

	// Only T-01 carries coordinates; T-02 stays tabular.
	if got := len(sec.Spatial.Collection.Features); got != 1 {
		t.Fatalf("features = %d, want 1", got)
	}
	if len(sec.Spatial.Rows) != 2 {
		t.Fatalf("spatial rows = %d, want every station", len(sec.Spatial.Rows))
	}
}

func TestRunSectionFailureDoesNotAbortSiblings(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.csv", "")
	good := writeFile(t, dir, "good.csv",
		"Parametro,T-01\n"+
			"Plomo Total (mg/L),0.02\n")

	ctx := whoContext(t)
	res := Run(ctx, []Section{
		{Name: "bad", Path: bad, Matrix: measure.MatrixWater},
		{Name: "good", Path: good, Matrix: measure.MatrixWater},
	})
	if res.Sections[0].Err == nil {
		t.Fatal("empty input must fail its section")
	}
	if res.Sections[1].Err != nil {
		t.Fatalf("sibling section failed: %v", res.Sections[1].Err)
	}
	if len(res.Sections[1].ByStation) != 1 {
		t.Fatalf("good section summaries = %d, want 1", len(res.Sections[1].ByStation))
	}
	if res.Failed() {
		t.Fatal("run with one surviving section must not count as failed")
	}
}

func TestResultFailedOnlyWhenAllSectionsFail(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.csv", "")
	ctx := whoContext(t)
	res := Run(ctx, []Section{
		{Name: "a", Path: bad, Matrix: measure.MatrixWater},
		{Name: "b", Path: filepath.Join(dir, "missing.csv"), Matrix: measure.MatrixWater},
	})
	if !res.Failed() {
		t.Fatal("run where every section failed must report Failed")
	}
}

func TestRunKeepsBlankLabelRows(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "seca.csv",
		"Parametro;T-01;T-02\n"+
			";0,88;0,99\n"+
			"Plomo Total (mg/L);0,02;0,005\n")
	ctx := whoContext(t)
	res := Run(ctx, []Section{{Name: "s", Path: data, Matrix: measure.MatrixWater}})
	sec := res.Sections[0]
	if sec.Err != nil {
		t.Fatalf("section failed: %v", sec.Err)
	}
	if len(sec.Measurements) != 4 {
		t.Fatalf("measurements = %d, want 4 (blank-label row kept)", len(sec.Measurements))
	}
	nonMissing := 0
	for _, m := range sec.Measurements {
		if !m.Value.IsMissing() {
			nonMissing++
		}
	}
	if nonMissing != 4 {
		t.Fatalf("non-missing values = %d, want 4 (nothing silently dropped)", nonMissing)
	}
	found := false
	for _, u := range sec.Untranslated {
		if u == "(unlabeled)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("untranslated = %v, want the blank-label placeholder listed", sec.Untranslated)
	}
	for _, pa := range sec.ByParameter {
		if pa.Parameter == "(unlabeled)" {
			if pa.Values.Count != 2 {
				t.Fatalf("unlabeled values count = %d, want 2", pa.Values.Count)
			}
			if pa.WorstTier != classify.NoGuideline {
				t.Fatalf("unlabeled tier = %s, want No guideline", pa.WorstTier)
			}
			return
		}
	}
	t.Fatalf("no unlabeled parameter group in %v", sec.ByParameter)
}

func TestRunWarnsOnStationsMissingFromMetadata(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "seca.csv",
		"Parametro,T-01,T-02\n"+
			"Plomo Total (mg/L),0.02,0.005\n")
	stations := writeFile(t, dir, "stations.csv",
		"station_id,latitude,longitude\n"+
			"T-01,-21.44,-65.72\n")
	ctx := whoContext(t)
	res := Run(ctx, []Section{{
		Name:         "s",
		Path:         data,
		Matrix:       measure.MatrixWater,
		StationsPath: stations,
	}})
	sec := res.Sections[0]
	if sec.Err != nil {
		t.Fatalf("section failed: %v", sec.Err)
	}
	found := false
	for _, w := range sec.Warnings {
		if strings.Contains(w, "no entry for") && strings.Contains(w, "T-02") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want one naming T-02", sec.Warnings)
	}
	// T-02 still aggregates; it just cannot be mapped.
	if len(sec.ByStation) != 2 {
		t.Fatalf("station summaries = %d, want 2", len(sec.ByStation))
	}
	if got := len(sec.Spatial.Collection.Features); got != 1 {
		t.Fatalf("features = %d, want only the known station", got)
	}
}

func TestRunSynthesizesStationsWithoutMetadata(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "seca.csv",
		"Parametro,T-01\n"+
			"Plomo Total (mg/L),0.02\n")
	ctx := whoContext(t)
	res := Run(ctx, []Section{{Name: "s", Path: data, Matrix: measure.MatrixWater}})
	sec := res.Sections[0]
	if sec.Err != nil {
		t.Fatalf("section failed: %v", sec.Err)
	}
	st, ok := sec.Stations["T-01"]
	if !ok {
		t.Fatal("station referenced by measurements must exist")
	}
	if st.HasCoordinates() {
		t.Fatal("synthesized station must have no coordinates")
	}
	if got := len(sec.Spatial.Collection.Features); got != 0 {
		t.Fatalf("features = %d, want none without coordinates", got)
	}
}
