package measure

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"gopkg.in/yaml.v3"
)

// Standard is one regulatory reference limit: the concentration above which
// a measurement of Parameter in Matrix exceeds the guideline of Source.
// Parameters without any Standard have no guideline; that state is the
// absence of a row, never a zero limit.
type Standard struct {
	Parameter string  `csv:"parameter" yaml:"parameter"`
	Matrix    Matrix  `csv:"matrix" yaml:"matrix"`
	Limit     float64 `csv:"limit" yaml:"limit"`
	Unit      string  `csv:"unit,omitempty" yaml:"unit,omitempty"`
	Source    string  `csv:"source" yaml:"source"`
}

// StandardSet indexes reference standards by parameter and matrix. When
// several sources set a limit for the same pair, the strictest (lowest)
// limit wins; all rows stay listable.
type StandardSet struct {
	all   []Standard
	byKey map[string]Standard
}

func standardKey(param string, m Matrix) string {
	return strings.ToLower(param) + "|" + string(m)
}

// NewStandardSet validates and indexes the given standards.
func NewStandardSet(stds []Standard) (*StandardSet, error) {
	s := &StandardSet{all: stds, byKey: make(map[string]Standard, len(stds))}
	for i, std := range stds {
		if std.Parameter == "" {
			return nil, fmt.Errorf("standard %d: parameter is required", i)
		}
		if std.Limit <= 0 {
			return nil, fmt.Errorf("standard %s/%s (%s): non-positive limit %g",
				std.Parameter, std.Matrix, std.Source, std.Limit)
		}
		key := standardKey(std.Parameter, std.Matrix)
		if cur, ok := s.byKey[key]; !ok || std.Limit < cur.Limit {
			s.byKey[key] = std
		}
	}
	return s, nil
}

// Lookup returns the applicable (strictest) standard for the parameter in
// the given matrix. The second return is false when no guideline applies.
func (s *StandardSet) Lookup(param string, m Matrix) (Standard, bool) {
	std, ok := s.byKey[standardKey(param, m)]
	return std, ok
}

// All returns every loaded standard, sorted for stable listing.
func (s *StandardSet) All() []Standard {
	out := make([]Standard, len(s.all))
	copy(out, s.all)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parameter != out[j].Parameter {
			return out[i].Parameter < out[j].Parameter
		}
		if out[i].Matrix != out[j].Matrix {
			return out[i].Matrix < out[j].Matrix
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// DefaultStandards bundles the reference limits the reports compare
// against: WHO drinking-water guidelines, Codex Alimentarius food limits,
// the CDC blood-lead reference value, and Bolivian water law (Ley 1333,
// class A-B water bodies).
func DefaultStandards() *StandardSet {
	s, err := NewStandardSet([]Standard{
		// WHO drinking-water guidelines, mg/L.
		{Parameter: "total-mercury", Matrix: MatrixWater, Limit: 0.006, Unit: "mg/L", Source: "WHO"},
		{Parameter: "total-lead", Matrix: MatrixWater, Limit: 0.01, Unit: "mg/L", Source: "WHO"},
		{Parameter: "arsenic", Matrix: MatrixWater, Limit: 0.01, Unit: "mg/L", Source: "WHO"},
		{Parameter: "cadmium", Matrix: MatrixWater, Limit: 0.003, Unit: "mg/L", Source: "WHO"},
		{Parameter: "chromium", Matrix: MatrixWater, Limit: 0.05, Unit: "mg/L", Source: "WHO"},
		{Parameter: "copper", Matrix: MatrixWater, Limit: 2.0, Unit: "mg/L", Source: "WHO"},
		{Parameter: "nickel", Matrix: MatrixWater, Limit: 0.07, Unit: "mg/L", Source: "WHO"},
		// Bolivian Ley 1333 water limits, mg/L.
		{Parameter: "total-mercury", Matrix: MatrixWater, Limit: 0.001, Unit: "mg/L", Source: "Ley 1333"},
		{Parameter: "total-lead", Matrix: MatrixWater, Limit: 0.05, Unit: "mg/L", Source: "Ley 1333"},
		{Parameter: "zinc", Matrix: MatrixWater, Limit: 0.2, Unit: "mg/L", Source: "Ley 1333"},
		{Parameter: "iron", Matrix: MatrixWater, Limit: 0.3, Unit: "mg/L", Source: "Ley 1333"},
		{Parameter: "manganese", Matrix: MatrixWater, Limit: 0.5, Unit: "mg/L", Source: "Ley 1333"},
		// Codex Alimentarius fish limits, mg/kg wet weight.
		{Parameter: "total-mercury", Matrix: MatrixFish, Limit: 0.5, Unit: "mg/kg", Source: "Codex"},
		{Parameter: "total-lead", Matrix: MatrixFish, Limit: 0.3, Unit: "mg/kg", Source: "Codex"},
		{Parameter: "cadmium", Matrix: MatrixFish, Limit: 0.1, Unit: "mg/kg", Source: "Codex"},
		// CDC blood-lead reference value, ug/dL.
		{Parameter: "total-lead", Matrix: MatrixBlood, Limit: 3.5, Unit: "ug/dL", Source: "CDC"},
		// Soil screening values, mg/kg.
		{Parameter: "total-mercury", Matrix: MatrixSoil, Limit: 6.6, Unit: "mg/kg", Source: "Ley 1333"},
		{Parameter: "total-lead", Matrix: MatrixSoil, Limit: 70, Unit: "mg/kg", Source: "Ley 1333"},
		{Parameter: "arsenic", Matrix: MatrixSoil, Limit: 20, Unit: "mg/kg", Source: "Ley 1333"},
		{Parameter: "cadmium", Matrix: MatrixSoil, Limit: 1.4, Unit: "mg/kg", Source: "Ley 1333"},
	})
	if err != nil {
		panic(err)
	}
	return s
}

type standardsFile struct {
	Standards []Standard `yaml:"standards"`
}

// LoadStandards reads reference standards from a YAML document or a CSV
// table, chosen by file extension.
func LoadStandards(path string) (*StandardSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open standards: %w", err)
		}
		defer f.Close()
		return ReadStandardsCSV(f)
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read standards: %w", err)
		}
		var sf standardsFile
		if err := yaml.Unmarshal(b, &sf); err != nil {
			return nil, fmt.Errorf("parse standards %s: %w", path, err)
		}
		return NewStandardSet(sf.Standards)
	}
}

// ReadStandardsCSV decodes standards from CSV with columns
// parameter,matrix,limit,unit,source.
func ReadStandardsCSV(r io.Reader) (*StandardSet, error) {
	dec, err := csvutil.NewDecoder(newCSVReader(r))
	if err != nil {
		return nil, fmt.Errorf("standards decoder: %w", err)
	}
	var rows []Standard
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode standards: %w", err)
	}
	return NewStandardSet(rows)
}
