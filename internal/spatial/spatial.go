// Package spatial joins station summaries to station coordinates and
// shapes the mappable subset as GeoJSON. The join is a left join keyed on
// the summary side: no summary is ever dropped for lacking coordinates.
package spatial

import (
	"encoding/json"

	"github.com/tupiza-labs/metalscan/internal/aggregate"
	"github.com/tupiza-labs/metalscan/internal/measure"
)

// Row is one summary joined to its station metadata. Station is nil when
// the metadata has no entry for the station ID.
type Row struct {
	aggregate.StationSummary
	Station *measure.Station
}

// Geometry is a GeoJSON point, [longitude, latitude].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Result keeps the full tabular join alongside the map-ready subset.
type Result struct {
	Rows       []Row
	Collection FeatureCollection
}

// Join attaches station metadata to every summary. Summaries whose station
// has both coordinates also become point features; the rest stay
// tabular-only.
func Join(sums []aggregate.StationSummary, stations map[string]measure.Station) Result {
	res := Result{Collection: FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}}
	for _, s := range sums {
		row := Row{StationSummary: s}
		if st, ok := stations[s.StationID]; ok {
			stCopy := st
			row.Station = &stCopy
			if st.HasCoordinates() {
				res.Collection.Features = append(res.Collection.Features, Feature{
					Type: "Feature",
					Geometry: Geometry{
						Type:        "Point",
						Coordinates: [2]float64{*st.Longitude, *st.Latitude},
					},
					Properties: featureProperties(s, st),
				})
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

func featureProperties(s aggregate.StationSummary, st measure.Station) map[string]any {
	props := map[string]any{
		"station_id":      s.StationID,
		"category":        s.Category.String(),
		"count_exceeding": s.CountExceeding,
		"parameter_count": s.Values.Count,
	}
	if st.Code != "" {
		props["code"] = st.Code
	}
	if st.Basin != "" {
		props["basin"] = st.Basin
	}
	if v, ok := s.AvgExceedance.Float(); ok {
		props["avg_exceedance"] = v
	}
	if v, ok := s.MaxExceedance.Float(); ok {
		props["max_exceedance"] = v
	}
	return props
}

// GeoJSON marshals the map-ready subset.
func (r Result) GeoJSON() ([]byte, error) {
	return json.MarshalIndent(r.Collection, "", "  ")
}
