package measure

import (
	"strings"
	"testing"
	"time"
)

func TestReadStationsPreservesCoordinateAbsence(t *testing.T) {
	csv := "station_id,code,basin,date,latitude,longitude\n" +
		"T-01,TPZ-01,Tupiza,15/03/2024,-21.44,-65.72\n" +
		"T-02,TPZ-02,Tupiza,15/03/2024,,\n"
	stations, err := ReadStations(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	t01 := stations["T-01"]
	if !t01.HasCoordinates() {
		t.Fatal("T-01 must have coordinates")
	}
	if *t01.Latitude != -21.44 || *t01.Longitude != -65.72 {
		t.Fatalf("T-01 coordinates = %v/%v", *t01.Latitude, *t01.Longitude)
	}
	t02 := stations["T-02"]
	if t02.HasCoordinates() {
		t.Fatal("empty coordinate fields must stay nil, not zero")
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if t01.SampledAt == nil || !t01.SampledAt.Equal(want) {
		t.Fatalf("sampled at = %v, want %v (DD/MM/YYYY)", t01.SampledAt, want)
	}
}

func TestReadStationsRejectsBadLatitude(t *testing.T) {
	csv := "station_id,latitude,longitude\n" +
		"T-01,-121.44,-65.72\n"
	if _, err := ReadStations(strings.NewReader(csv)); err == nil {
		t.Fatal("latitude outside [-90,90] must be rejected")
	}
}

func TestParseSampleDateFormats(t *testing.T) {
	for _, in := range []string{"15/03/2024", "2024-03-15", "15-03-2024"} {
		got, ok := ParseSampleDate(in)
		if !ok {
			t.Fatalf("ParseSampleDate(%q) failed", in)
		}
		if got.Day() != 15 || got.Month() != time.March {
			t.Fatalf("ParseSampleDate(%q) = %v, want 15 March", in, got)
		}
	}
	if _, ok := ParseSampleDate("sin fecha"); ok {
		t.Fatal("non-date text must not parse")
	}
}
