package measure

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

// Parameter describes one canonical parameter: its ID, display name, the
// canonical unit per sample matrix, and the source-language labels that map
// to it.
type Parameter struct {
	ID      string            `yaml:"id,omitempty"`
	Name    string            `yaml:"name"`
	Units   map[Matrix]string `yaml:"units,omitempty"`
	Aliases []string          `yaml:"aliases,omitempty"`
	// WarnMissingUnit flags parameters whose source tables have reported
	// in mixed unit scales. When the source declares no unit for such a
	// parameter, normalization warns instead of converting silently.
	WarnMissingUnit bool `yaml:"warn_missing_unit,omitempty"`
}

// CanonicalUnit returns the unit family for the given matrix, or "" when
// the parameter is dimensionless (pH) or the matrix is not listed.
func (p Parameter) CanonicalUnit(m Matrix) string {
	if p.Units == nil {
		return ""
	}
	return p.Units[m]
}

// Dictionary maps source-language parameter labels to canonical parameters.
// Loaded once per run; read-only afterwards.
type Dictionary struct {
	params  []Parameter
	byID    map[string]*Parameter
	byLabel map[string]*Parameter
}

// foldLabel makes label matching tolerant of case, accents and separators.
// "Mercurio_Total", "mercurio total" and "Mercurio Total" all fold alike.
func foldLabel(s string) string { return slug.Make(s) }

// NewDictionary indexes the given parameters. Missing IDs are derived from
// the name, so "Total Mercury" becomes "total-mercury".
func NewDictionary(params []Parameter) (*Dictionary, error) {
	d := &Dictionary{
		params:  params,
		byID:    make(map[string]*Parameter, len(params)),
		byLabel: make(map[string]*Parameter),
	}
	for i := range d.params {
		p := &d.params[i]
		if p.ID == "" {
			p.ID = slug.Make(p.Name)
		}
		if p.ID == "" {
			return nil, fmt.Errorf("parameter %d: empty id and name", i)
		}
		if _, dup := d.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate parameter id %q", p.ID)
		}
		d.byID[p.ID] = p
		for _, label := range append([]string{p.ID, p.Name}, p.Aliases...) {
			key := foldLabel(label)
			if key == "" {
				continue
			}
			if other, dup := d.byLabel[key]; dup && other != p {
				return nil, fmt.Errorf("label %q maps to both %q and %q", label, other.ID, p.ID)
			}
			d.byLabel[key] = p
		}
	}
	return d, nil
}

// Lookup resolves a raw source label to its canonical parameter.
func (d *Dictionary) Lookup(label string) (Parameter, bool) {
	if p, ok := d.byLabel[foldLabel(label)]; ok {
		return *p, true
	}
	return Parameter{}, false
}

// Suggest returns a known label close to the unrecognized one, as a
// diagnostic for the user. It never auto-binds: callers report the
// suggestion and keep the measurement untranslated.
func (d *Dictionary) Suggest(label string) string {
	key := foldLabel(label)
	if len(key) < 3 {
		return ""
	}
	keys := make([]string, 0, len(d.byLabel))
	for k := range d.byLabel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		// Element symbols like "cu" or "as" match almost anything.
		if len(k) < 3 {
			continue
		}
		if strings.Contains(k, key) || strings.Contains(key, k) {
			return d.byLabel[k].Name
		}
	}
	return ""
}

// Parameters returns the dictionary entries sorted by ID.
func (d *Dictionary) Parameters() []Parameter {
	out := make([]Parameter, len(d.params))
	copy(out, d.params)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Normalize resolves the measurement's label against the dictionary and
// converts its value into the parameter's canonical unit for the
// measurement's matrix. Unknown labels pass through flagged Untranslated.
// Normalize is idempotent: feeding its output back in changes nothing.
func (d *Dictionary) Normalize(m Measurement, conv ConversionTable) (Measurement, []string) {
	var warnings []string
	if m.Label == "" {
		m.Label = m.Parameter
	}
	p, ok := d.Lookup(m.Parameter)
	if !ok {
		m.Untranslated = true
		warn := fmt.Sprintf("untranslated parameter %q at station %s", m.Label, m.StationID)
		if sug := d.Suggest(m.Label); sug != "" {
			warn += fmt.Sprintf(" (did you mean %q?)", sug)
		}
		return m, append(warnings, warn)
	}
	m.Parameter = p.ID
	m.Untranslated = false

	target := p.CanonicalUnit(m.Matrix)
	if target == "" {
		return m, warnings
	}
	if m.Unit == "" {
		// Unit not declared by the source table: assume canonical rather
		// than guess a conversion. Mercury tables have historically mixed
		// µg/L and mg/L, so flagged parameters get a warning here instead
		// of a silent assumption.
		if p.WarnMissingUnit && !m.Value.IsMissing() {
			warnings = append(warnings, fmt.Sprintf(
				"%s at station %s has no declared unit; assuming %s", p.ID, m.StationID, target))
		}
		m.Unit = target
		return m, warnings
	}
	converted, ok := conv.Convert(p.ID, m.Unit, target, m.Value)
	if !ok {
		warnings = append(warnings, fmt.Sprintf(
			"no conversion from %s to %s for %s at station %s; value kept in %s",
			m.Unit, target, p.ID, m.StationID, m.Unit))
		return m, warnings
	}
	m.Value = converted
	m.Unit = target
	return m, warnings
}

// DefaultDictionary covers the heavy metals and field parameters of the
// monitoring campaigns, with the Spanish labels used in the source tables.
func DefaultDictionary() *Dictionary {
	metals := func(name string, aliases ...string) Parameter {
		return Parameter{
			Name: name,
			Units: map[Matrix]string{
				MatrixWater:      "mg/L",
				MatrixSoil:       "mg/kg",
				MatrixSediment:   "mg/kg",
				MatrixVegetation: "mg/kg",
				MatrixFish:       "mg/kg",
				MatrixBlood:      "ug/dL",
			},
			Aliases: aliases,
		}
	}
	mercury := metals("Total Mercury", "Mercurio Total", "Mercurio", "Hg", "Total_Mercury")
	mercury.WarnMissingUnit = true
	d, err := NewDictionary([]Parameter{
		mercury,
		metals("Total Lead", "Plomo Total", "Plomo", "Pb", "Total_Lead"),
		metals("Arsenic", "Arsénico", "Arsénico Total", "As"),
		metals("Cadmium", "Cadmio", "Cadmio Total", "Cd"),
		metals("Zinc", "Zn"),
		metals("Copper", "Cobre", "Cu"),
		metals("Chromium", "Cromo", "Cr"),
		metals("Nickel", "Níquel", "Ni"),
		metals("Iron", "Hierro", "Fe"),
		metals("Manganese", "Manganeso", "Mn"),
		{Name: "pH", ID: "ph", Aliases: []string{"Potencial de Hidrógeno"}},
		{
			Name:    "Conductivity",
			Units:   map[Matrix]string{MatrixWater: "uS/cm"},
			Aliases: []string{"Conductividad", "Conductividad Eléctrica"},
		},
	})
	if err != nil {
		// The built-in table is static; a failure here is a programming error.
		panic(err)
	}
	return d
}

// dictionaryFile is the on-disk shape of a dictionary document.
type dictionaryFile struct {
	Parameters  []Parameter  `yaml:"parameters"`
	Conversions []Conversion `yaml:"unit_conversions,omitempty"`
}

// LoadDictionary reads a dictionary document (parameters plus the unit
// conversion table) from a YAML file.
func LoadDictionary(path string) (*Dictionary, ConversionTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, ConversionTable{}, fmt.Errorf("read dictionary: %w", err)
	}
	var f dictionaryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, ConversionTable{}, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	d, err := NewDictionary(f.Parameters)
	if err != nil {
		return nil, ConversionTable{}, fmt.Errorf("dictionary %s: %w", path, err)
	}
	conv := DefaultConversions()
	if len(f.Conversions) > 0 {
		conv, err = NewConversionTable(f.Conversions)
		if err != nil {
			return nil, ConversionTable{}, fmt.Errorf("dictionary %s: %w", path, err)
		}
	}
	return d, conv, nil
}
