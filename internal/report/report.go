// Package report renders the pipeline's aggregated tables as markdown.
// This is the hand-off to any downstream presentation layer; theming and
// interactive output stay out of the pipeline.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tupiza-labs/metalscan/internal/aggregate"
	"github.com/tupiza-labs/metalscan/internal/measure"
	"github.com/tupiza-labs/metalscan/internal/pipeline"
)

// Markdown renders a whole run, one block per section.
func Markdown(res pipeline.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[CONTAMINATION ASSESSMENT] run %s\n", res.RunID))
	for _, sec := range res.Sections {
		b.WriteString("\n")
		b.WriteString(Section(sec))
	}
	return b.String()
}

// Section renders one section: the metal assessment table, the station
// contamination summary, and the run diagnostics.
func Section(sec pipeline.SectionResult) string {
	var b strings.Builder
	name := sec.Section.Name
	if name == "" {
		name = sec.Section.Path
	}
	b.WriteString(fmt.Sprintf("## %s (%s)\n", name, sec.Section.Matrix))
	if sec.Err != nil {
		b.WriteString(fmt.Sprintf("\nSection failed: %v\n", sec.Err))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Measurements: %d, stations: %d\n", len(sec.Measurements), len(sec.ByStation)))

	b.WriteString("\n[METAL ASSESSMENT]\n")
	b.WriteString("| Parameter | Unit | n | Mean | Median | Max | Limit | Source | Worst tier | Stations exceeding |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
	params := make([]aggregate.ParameterAssessment, len(sec.ByParameter))
	copy(params, sec.ByParameter)
	// Presentation sort: worst offenders first, then by mean concentration.
	sort.SliceStable(params, func(i, j int) bool {
		if params[i].WorstTier != params[j].WorstTier {
			return params[i].WorstTier > params[j].WorstTier
		}
		return gtValue(params[i].Values.Mean, params[j].Values.Mean)
	})
	for _, p := range params {
		name := p.Parameter
		if p.Untranslated {
			name += " (untranslated)"
		}
		limit := "-"
		source := "-"
		if p.Limit > 0 {
			limit = fmtFloat(p.Limit)
			source = p.LimitSource
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s | %s | %s | %s | %d |\n",
			name, orDash(p.Unit), p.Values.Count,
			fmtValue(p.Values.Mean), fmtValue(p.Values.Median), fmtValue(p.Values.Max),
			limit, source, p.WorstTier, p.StationsExceeding))
	}

	b.WriteString("\n[STATION SUMMARY]\n")
	b.WriteString("| Station | n | Avg exceedance | Max exceedance | Parameters exceeding | Category |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, s := range sec.ByStation {
		b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %d | %s |\n",
			s.StationID, s.Values.Count,
			fmtValue(s.AvgExceedance), fmtValue(s.MaxExceedance),
			s.CountExceeding, s.Category))
	}

	mapped := len(sec.Spatial.Collection.Features)
	if mapped < len(sec.ByStation) {
		b.WriteString(fmt.Sprintf("\n%d of %d stations have coordinates; the rest are tabular-only.\n",
			mapped, len(sec.ByStation)))
	}
	if len(sec.Untranslated) > 0 {
		b.WriteString("\n[UNTRANSLATED PARAMETERS]\n")
		for _, u := range sec.Untranslated {
			b.WriteString(fmt.Sprintf("- %s\n", u))
		}
	}
	if len(sec.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range sec.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}
	return b.String()
}

func fmtValue(v measure.Value) string {
	f, ok := v.Float()
	if !ok {
		return "NA"
	}
	return fmtFloat(f)
}

func fmtFloat(f float64) string { return fmt.Sprintf("%.4g", f) }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func gtValue(a, b measure.Value) bool {
	af, aok := a.Float()
	bf, bok := b.Float()
	if !aok {
		return false
	}
	if !bok {
		return true
	}
	return af > bf
}
