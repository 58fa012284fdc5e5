package measure

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
)

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return cr
}

// Station is a sampling location. Latitude/Longitude stay nil when the
// source metadata has no coordinates; spatial consumers skip such stations,
// tabular consumers keep them.
type Station struct {
	ID        string     `csv:"station_id" yaml:"id"`
	Code      string     `csv:"code,omitempty" yaml:"code,omitempty"`
	Basin     string     `csv:"basin,omitempty" yaml:"basin,omitempty"`
	Date      string     `csv:"date,omitempty" yaml:"date,omitempty"`
	Latitude  *float64   `csv:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64   `csv:"longitude,omitempty" yaml:"longitude,omitempty"`
	SampledAt *time.Time `csv:"-" yaml:"-"`
}

// HasCoordinates reports whether the station can be placed on a map.
func (s Station) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Validate checks coordinate ranges when coordinates are present.
func (s Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station ID is required")
	}
	if s.Latitude != nil && (*s.Latitude < -90 || *s.Latitude > 90) {
		return fmt.Errorf("station %s: invalid latitude %f", s.ID, *s.Latitude)
	}
	if s.Longitude != nil && (*s.Longitude < -180 || *s.Longitude > 180) {
		return fmt.Errorf("station %s: invalid longitude %f", s.ID, *s.Longitude)
	}
	return nil
}

// ParseSampleDate accepts the date formats seen in field spreadsheets,
// DD/MM/YYYY included.
func ParseSampleDate(s string) (time.Time, bool) {
	layouts := []string{
		"02/01/2006", "2006-01-02", "2006/01/02", "2/1/2006",
		"02-01-2006", time.RFC3339,
	}
	raw := strings.TrimSpace(s)
	for _, l := range layouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReadStations decodes station metadata rows from CSV. Empty latitude or
// longitude fields decode to nil, preserving coordinate absence.
func ReadStations(r io.Reader) (map[string]Station, error) {
	dec, err := csvutil.NewDecoder(newCSVReader(r))
	if err != nil {
		return nil, fmt.Errorf("station metadata decoder: %w", err)
	}
	var rows []Station
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode station metadata: %w", err)
	}
	out := make(map[string]Station, len(rows))
	for _, st := range rows {
		if err := st.Validate(); err != nil {
			return nil, err
		}
		if t, ok := ParseSampleDate(st.Date); ok {
			tt := t
			st.SampledAt = &tt
		}
		out[st.ID] = st
	}
	return out, nil
}

// ReadStationsFile is ReadStations over a file path.
func ReadStationsFile(path string) (map[string]Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station metadata: %w", err)
	}
	defer f.Close()
	stations, err := ReadStations(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stations, nil
}
