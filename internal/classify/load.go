package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTable reads a breakpoint table from a YAML document:
//
//	default: {safe: 1, moderate: 2, high: 5}
//	per_matrix:
//	  blood: {safe: 1, moderate: 3, high: 10}
func LoadTable(path string) (Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read breakpoints: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Table{}, fmt.Errorf("parse breakpoints %s: %w", path, err)
	}
	if t.Default == (Breakpoints{}) {
		t.Default = DefaultBreakpoints()
	}
	if err := t.Validate(); err != nil {
		return Table{}, fmt.Errorf("breakpoints %s: %w", path, err)
	}
	return t, nil
}
