package measure

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a measurement value that is either present or missing.
// Missing propagates through conversion and aggregation; it is never
// coerced to zero.
type Value struct {
	f  float64
	ok bool
}

// Missing returns the missing sentinel.
func Missing() Value { return Value{} }

// Some wraps a concrete measurement value. NaN and Inf collapse to missing
// so they can never leak into aggregates.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{f: f, ok: true}
}

// Float returns the underlying value and whether it is present.
func (v Value) Float() (float64, bool) { return v.f, v.ok }

// IsMissing reports whether the value is the missing sentinel.
func (v Value) IsMissing() bool { return !v.ok }

// Scale multiplies a present value by factor; missing stays missing.
func (v Value) Scale(factor float64) Value {
	if !v.ok {
		return v
	}
	return Some(v.f * factor)
}

func (v Value) String() string {
	if !v.ok {
		return "NA"
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

// MarshalJSON encodes missing as null, never as zero.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.f)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Missing()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// ParseOptions controls locale handling when coercing cell text to numbers.
type ParseOptions struct {
	// DecimalSeparator of the source file. If 0, auto-detects per value.
	DecimalSeparator rune
	// ThousandsSeparator of the source file; if 0, auto-detects common
	// separators (',' '.' space).
	ThousandsSeparator rune
}

// ParseValue coerces one cell of a source table to a Value. Empty cells and
// non-numeric text become the missing sentinel. Field data may use comma
// decimals and dot/space thousands separators.
func ParseValue(s string, opt ParseOptions) Value {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Missing()
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Missing()
	}

	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Missing()
	}
	return Some(f)
}
