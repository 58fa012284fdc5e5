// Package pipeline wires ingestion, normalization, classification,
// aggregation and the spatial join into one batch run. Each input file is
// an independent section; a section that fails does not abort its
// siblings.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tupiza-labs/metalscan/internal/aggregate"
	"github.com/tupiza-labs/metalscan/internal/classify"
	"github.com/tupiza-labs/metalscan/internal/measure"
	"github.com/tupiza-labs/metalscan/internal/spatial"
	"github.com/tupiza-labs/metalscan/internal/table"
)

// Context carries everything a run needs, threaded explicitly through each
// stage. No package-level state; two runs never share anything.
type Context struct {
	RunID       uuid.UUID
	Dictionary  *measure.Dictionary
	Conversions measure.ConversionTable
	Standards   *measure.StandardSet
	Breakpoints classify.Table
	Parse       measure.ParseOptions
}

// NewContext builds a run context from the default assessment tables.
func NewContext() *Context {
	return &Context{
		RunID:       uuid.New(),
		Dictionary:  measure.DefaultDictionary(),
		Conversions: measure.DefaultConversions(),
		Standards:   measure.DefaultStandards(),
		Breakpoints: classify.DefaultTable(),
	}
}

// Section describes one input file of a report run: the wide table, its
// orientation, its sample matrix, and optional station metadata.
type Section struct {
	Name         string
	Path         string
	Matrix       measure.Matrix
	Orientation  table.Orientation
	SheetName    string
	SheetIndex   int
	StationsPath string
	Delimiter    rune
}

// SectionResult is the full output of one section. Err is set when the
// section failed; the other fields are then empty.
type SectionResult struct {
	Section      Section
	Measurements []measure.Measurement
	Stations     map[string]measure.Station
	ByStation    []aggregate.StationSummary
	ByParameter  []aggregate.ParameterAssessment
	Spatial      spatial.Result
	Untranslated []string
	Warnings     []string
	Err          error
}

// Result is a whole run: one SectionResult per input, same order.
type Result struct {
	RunID    uuid.UUID
	Sections []SectionResult
}

// Failed reports whether every section failed.
func (r Result) Failed() bool {
	if len(r.Sections) == 0 {
		return false
	}
	for _, s := range r.Sections {
		if s.Err == nil {
			return false
		}
	}
	return true
}

// Run executes all sections. Section failures are recorded, not raised, so
// one malformed file cannot take down unrelated report sections.
func Run(ctx *Context, sections []Section) Result {
	res := Result{RunID: ctx.RunID}
	for _, sec := range sections {
		res.Sections = append(res.Sections, runSection(ctx, sec))
	}
	return res
}

func runSection(ctx *Context, sec Section) SectionResult {
	out := SectionResult{Section: sec, Stations: map[string]measure.Station{}}

	t, err := table.ReadFile(sec.Path, table.Options{
		Delimiter:  sec.Delimiter,
		SheetName:  sec.SheetName,
		SheetIndex: sec.SheetIndex,
	})
	if err != nil {
		out.Err = fmt.Errorf("section %s: %w", sec.Name, err)
		return out
	}
	t.DropEmpty()
	t.DedupHeader()

	obs, err := table.Reshape(t, sec.Orientation)
	if err != nil {
		out.Err = fmt.Errorf("section %s: %w", sec.Name, err)
		return out
	}

	if sec.StationsPath != "" {
		stations, err := measure.ReadStationsFile(sec.StationsPath)
		if err != nil {
			out.Err = fmt.Errorf("section %s: %w", sec.Name, err)
			return out
		}
		out.Stations = stations
	}

	untranslated := map[string]bool{}
	seenMissing := map[string]bool{}
	var missingStations []string
	for _, ob := range obs {
		// Source labels may declare the unit inline: "Mercurio Total (µg/L)".
		label, unit := measure.SplitLabelUnit(ob.Parameter)
		if label == "" {
			// Blank label cells (merged cells in field sheets) still carry
			// data; attribute it to an explicit placeholder instead of
			// dropping the row.
			label = "(unlabeled)"
		}
		stationID := ob.Station
		if stationID == "" {
			stationID = "(unmapped)"
		}
		m := measure.Measurement{
			StationID: stationID,
			Parameter: label,
			Label:     ob.Parameter,
			Value:     measure.ParseValue(ob.Cell, ctx.Parse),
			Unit:      unit,
			Matrix:    sec.Matrix,
		}
		m, warns := ctx.Dictionary.Normalize(m, ctx.Conversions)
		out.Warnings = append(out.Warnings, warns...)
		if m.Untranslated && !untranslated[m.Label] {
			untranslated[m.Label] = true
			out.Untranslated = append(out.Untranslated, m.Label)
		}
		// Stations referenced by measurements but absent from the metadata
		// still exist for aggregation; they just cannot be mapped.
		if _, ok := out.Stations[m.StationID]; !ok {
			if sec.StationsPath == "" {
				out.Stations[m.StationID] = measure.Station{ID: m.StationID}
			} else if !seenMissing[m.StationID] {
				seenMissing[m.StationID] = true
				missingStations = append(missingStations, m.StationID)
			}
		}
		out.Measurements = append(out.Measurements, m)
	}
	if len(missingStations) > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"station metadata %s has no entry for: %s",
			sec.StationsPath, strings.Join(missingStations, ", ")))
	}

	out.ByStation = aggregate.ByStation(out.Measurements, ctx.Standards, ctx.Breakpoints)
	out.ByParameter = aggregate.ByParameter(out.Measurements, ctx.Standards, ctx.Breakpoints)
	out.Spatial = spatial.Join(out.ByStation, out.Stations)
	return out
}
