package measure

import (
	"regexp"
	"strings"
)

var labelUnitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // Mercurio Total (µg/L)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // Plomo [mg/kg]
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|µg/L|ng/L|mg/kg|ug/kg|µg/kg|mg/dL|ug/dL|µg/dL|uS/cm|ppm|ppb|%)$`), 2},
}

// SplitLabelUnit separates a declared unit from a parameter label, so
// "Mercurio Total (µg/L)" yields the label and "ug/L". Labels without a
// recognizable unit come back unchanged with an empty unit.
func SplitLabelUnit(label string) (clean, unit string) {
	s := strings.TrimSpace(label)
	for _, p := range labelUnitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, CanonicalUnitName(u)
			}
		}
	}
	return s, ""
}
