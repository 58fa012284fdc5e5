package measure

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupFoldsAccentsAndSeparators(t *testing.T) {
	d := DefaultDictionary()
	for _, label := range []string{"Mercurio Total", "mercurio total", "MERCURIO_TOTAL", "Total_Mercury", "Hg"} {
		p, ok := d.Lookup(label)
		if !ok {
			t.Fatalf("Lookup(%q) failed", label)
		}
		if p.ID != "total-mercury" {
			t.Fatalf("Lookup(%q) = %s, want total-mercury", label, p.ID)
		}
	}
	if p, ok := d.Lookup("Arsenico"); !ok || p.ID != "arsenic" {
		t.Fatalf("accent-less lookup failed: %v %v", p, ok)
	}
}

func TestNormalizeMercuryMicrogramsPerLiter(t *testing.T) {
	d := DefaultDictionary()
	conv := DefaultConversions()
	m := Measurement{
		StationID: "B",
		Parameter: "Mercurio Total",
		Label:     "Mercurio Total (µg/L)",
		Value:     Some(2),
		Unit:      "ug/L",
		Matrix:    MatrixWater,
	}
	got, warns := d.Normalize(m, conv)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if got.Parameter != "total-mercury" || got.Unit != "mg/L" {
		t.Fatalf("normalized to %s [%s]", got.Parameter, got.Unit)
	}
	if f, _ := got.Value.Float(); f != 0.002 {
		t.Fatalf("value = %g, want 0.002 (µg/L -> mg/L)", f)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	d := DefaultDictionary()
	conv := DefaultConversions()
	m := Measurement{
		StationID: "A",
		Parameter: "Plomo Total",
		Value:     Some(0.02),
		Unit:      "mg/L",
		Matrix:    MatrixWater,
	}
	once, _ := d.Normalize(m, conv)
	twice, warns := d.Normalize(once, conv)
	if len(warns) != 0 {
		t.Fatalf("re-normalizing warned: %v", warns)
	}
	if twice != once {
		t.Fatalf("normalize not idempotent:\n once=%+v\ntwice=%+v", once, twice)
	}
}

func TestNormalizeUntranslatedPassesThrough(t *testing.T) {
	d := DefaultDictionary()
	m := Measurement{StationID: "A", Parameter: "Turbidez", Value: Some(12), Matrix: MatrixWater}
	got, warns := d.Normalize(m, DefaultConversions())
	if !got.Untranslated {
		t.Fatal("unknown label must be flagged untranslated")
	}
	if got.Parameter != "Turbidez" {
		t.Fatalf("unknown label must pass through unchanged, got %q", got.Parameter)
	}
	if len(warns) == 0 {
		t.Fatal("expected an untranslated warning")
	}
}

func TestSuggestIsDiagnosticOnly(t *testing.T) {
	d := DefaultDictionary()
	if sug := d.Suggest("Mercurio Tot"); sug != "Total Mercury" {
		t.Fatalf("Suggest = %q, want Total Mercury", sug)
	}
	// A suggestion never changes the lookup result.
	if _, ok := d.Lookup("Mercurio Tot"); ok {
		t.Fatal("partial label must not auto-bind")
	}
}

func TestNormalizeWarnsOnMissingMercuryUnit(t *testing.T) {
	d := DefaultDictionary()
	m := Measurement{StationID: "A", Parameter: "Mercurio Total", Value: Some(2), Matrix: MatrixWater}
	got, warns := d.Normalize(m, DefaultConversions())
	if len(warns) != 1 {
		t.Fatalf("warnings = %v, want exactly one missing-unit warning", warns)
	}
	// No silent division: the value is kept, only the unit is assumed.
	if f, _ := got.Value.Float(); f != 2 {
		t.Fatalf("value = %g, want 2 untouched", f)
	}
}

func TestSplitLabelUnit(t *testing.T) {
	cases := []struct {
		in, label, unit string
	}{
		{"Mercurio Total (µg/L)", "Mercurio Total", "ug/L"},
		{"Plomo [mg/kg]", "Plomo", "mg/kg"},
		{"Plomo_mg/L", "Plomo", "mg/L"},
		{"Plomo Total", "Plomo Total", ""},
	}
	for _, c := range cases {
		label, unit := SplitLabelUnit(c.in)
		if label != c.label || unit != c.unit {
			t.Fatalf("SplitLabelUnit(%q) = (%q, %q), want (%q, %q)", c.in, label, unit, c.label, c.unit)
		}
	}
}

func TestLoadDictionaryYAML(t *testing.T) {
	doc := `
parameters:
  - name: Total Mercury
    aliases: ["Mercurio Total", "Hg"]
    units:
      water: mg/L
unit_conversions:
  - {from: ug/L, to: mg/L, factor: 0.001}
`
	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, conv, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p, ok := d.Lookup("Hg"); !ok || p.ID != "total-mercury" {
		t.Fatalf("loaded dictionary lookup failed: %v %v", p, ok)
	}
	v, ok := conv.Convert("total-mercury", "ug/L", "mg/L", Some(2))
	if !ok {
		t.Fatal("loaded conversion table missing ug/L rule")
	}
	if f, _ := v.Float(); f != 0.002 {
		t.Fatalf("converted = %g, want 0.002", f)
	}
}
