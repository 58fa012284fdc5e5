// Package aggregate computes per-station and per-parameter summaries over
// normalized measurements. Statistics ignore missing values; a group whose
// values are all missing aggregates to missing, never to zero.
package aggregate

import (
	"math"
	"sort"

	"github.com/tupiza-labs/metalscan/internal/classify"
	"github.com/tupiza-labs/metalscan/internal/measure"
)

// Stats are summary statistics over the non-missing values of a group.
// Count is the number of values that entered the statistics; when it is
// zero every field is the missing sentinel.
type Stats struct {
	Count  int           `json:"count"`
	Mean   measure.Value `json:"mean"`
	Median measure.Value `json:"median"`
	Min    measure.Value `json:"min"`
	Max    measure.Value `json:"max"`
	Std    measure.Value `json:"std"`
}

// Compute runs one pass of Welford updates plus a sort for the median.
func Compute(values []measure.Value) Stats {
	var (
		n          int
		mean, m2   float64
		minV, maxV = math.Inf(1), math.Inf(-1)
		present    []float64
	)
	for _, v := range values {
		x, ok := v.Float()
		if !ok {
			continue
		}
		n++
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
		present = append(present, x)
	}
	if n == 0 {
		return Stats{}
	}
	s := Stats{
		Count:  n,
		Mean:   measure.Some(mean),
		Min:    measure.Some(minV),
		Max:    measure.Some(maxV),
		Median: measure.Some(median(present)),
	}
	if n > 1 {
		s.Std = measure.Some(math.Sqrt(m2 / float64(n-1)))
	}
	return s
}

func median(vals []float64) float64 {
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// StationSummary is the contamination roll-up for one station. Category is
// derived from the worst exceedance across the station's parameters.
type StationSummary struct {
	StationID      string        `json:"station_id"`
	Values         Stats         `json:"values"`
	AvgExceedance  measure.Value `json:"avg_exceedance"`
	MaxExceedance  measure.Value `json:"max_exceedance"`
	CountExceeding int           `json:"count_exceeding"`
	Category       classify.Tier `json:"category"`
}

// ByStation groups measurements per station and classifies each one
// against the applicable standard. Output is sorted by station ID for
// stable listing; consumers are free to re-sort.
func ByStation(ms []measure.Measurement, stds *measure.StandardSet, bp classify.Table) []StationSummary {
	grouped := map[string][]measure.Measurement{}
	var order []string
	for _, m := range ms {
		if _, ok := grouped[m.StationID]; !ok {
			order = append(order, m.StationID)
		}
		grouped[m.StationID] = append(grouped[m.StationID], m)
	}
	sort.Strings(order)

	out := make([]StationSummary, 0, len(order))
	for _, id := range order {
		group := grouped[id]
		sum := StationSummary{StationID: id, Category: classify.NoGuideline}
		values := make([]measure.Value, 0, len(group))
		var (
			ratioSum float64
			ratioN   int
			maxRatio = math.Inf(-1)
		)
		worst := classify.NoGuideline
		for _, m := range group {
			values = append(values, m.Value)
			a := classify.Assess(m, stds, bp)
			r, ok := a.Ratio.Float()
			if !ok {
				continue
			}
			ratioSum += r
			ratioN++
			if r > maxRatio {
				maxRatio = r
			}
			if a.Tier > worst {
				worst = a.Tier
			}
			if a.Tier > classify.Safe {
				sum.CountExceeding++
			}
		}
		sum.Values = Compute(values)
		if ratioN > 0 {
			sum.AvgExceedance = measure.Some(ratioSum / float64(ratioN))
			sum.MaxExceedance = measure.Some(maxRatio)
			sum.Category = worst
		}
		out = append(out, sum)
	}
	return out
}

// ParameterAssessment is one row of the metal assessment table: summary
// statistics for a parameter across stations plus the applied standard and
// the worst tier observed.
type ParameterAssessment struct {
	Parameter    string         `json:"parameter"`
	Unit         string         `json:"unit,omitempty"`
	Matrix       measure.Matrix `json:"matrix"`
	Untranslated bool           `json:"untranslated,omitempty"`
	Values       Stats          `json:"values"`
	Limit        float64        `json:"limit,omitempty"`
	LimitSource  string         `json:"limit_source,omitempty"`
	WorstTier    classify.Tier  `json:"worst_tier"`
	// StationsExceeding counts stations with at least one measurement of
	// this parameter above the Safe bound.
	StationsExceeding int `json:"stations_exceeding"`
}

// ByParameter groups measurements per parameter, sorted by parameter ID.
func ByParameter(ms []measure.Measurement, stds *measure.StandardSet, bp classify.Table) []ParameterAssessment {
	grouped := map[string][]measure.Measurement{}
	var order []string
	for _, m := range ms {
		if _, ok := grouped[m.Parameter]; !ok {
			order = append(order, m.Parameter)
		}
		grouped[m.Parameter] = append(grouped[m.Parameter], m)
	}
	sort.Strings(order)

	out := make([]ParameterAssessment, 0, len(order))
	for _, param := range order {
		group := grouped[param]
		pa := ParameterAssessment{
			Parameter:    param,
			Matrix:       group[0].Matrix,
			Unit:         group[0].Unit,
			Untranslated: group[0].Untranslated,
			WorstTier:    classify.NoGuideline,
		}
		values := make([]measure.Value, 0, len(group))
		exceeding := map[string]bool{}
		for _, m := range group {
			values = append(values, m.Value)
			a := classify.Assess(m, stds, bp)
			if a.Limit > 0 {
				pa.Limit = a.Limit
				pa.LimitSource = a.Source
			}
			if a.Tier > pa.WorstTier {
				pa.WorstTier = a.Tier
			}
			if a.Tier > classify.Safe {
				exceeding[m.StationID] = true
			}
		}
		pa.Values = Compute(values)
		pa.StationsExceeding = len(exceeding)
		out = append(out, pa)
	}
	return out
}
