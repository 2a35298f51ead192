package run

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

func TestBuildRecordPaceAndCalories(t *testing.T) {
	started := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	completed := started.Add(10 * time.Minute)
	route := []geo.Coordinate{{Lat: 40, Lng: -74}, {Lat: 40.01, Lng: -74}}

	rec := buildRecord("run-1", started, completed, 600, 2000, route)

	if rec.PaceSecondsPerKm != 300 {
		t.Fatalf("pace %v, want 300 s/km", rec.PaceSecondsPerKm)
	}
	wantCal := int(math.Round(2000 * 0.000621371192 * 100))
	if rec.EstimatedCalories != wantCal {
		t.Fatalf("calories %d, want %d", rec.EstimatedCalories, wantCal)
	}
	if rec.DurationSeconds != 600 || rec.DistanceMeters != 2000 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.Route) != 2 {
		t.Fatalf("route not carried over")
	}
}

func TestBuildRecordZeroDistance(t *testing.T) {
	rec := buildRecord("run-2", time.Now(), time.Now(), 120, 0, nil)
	if rec.PaceSecondsPerKm != 0 {
		t.Fatalf("expected sentinel pace for zero distance, got %v", rec.PaceSecondsPerKm)
	}
	if rec.EstimatedCalories != 0 {
		t.Fatalf("expected zero calories, got %d", rec.EstimatedCalories)
	}
}

func TestBuildRecordDeterministic(t *testing.T) {
	started := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	completed := started.Add(time.Hour)
	route := []geo.Coordinate{{Lat: 1, Lng: 2}}

	a := buildRecord("run-3", started, completed, 3600, 10000, route)
	b := buildRecord("run-3", started, completed, 3600, 10000, route)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("buildRecord not deterministic: %+v vs %+v", a, b)
	}
}

func TestBuildRecordCopiesRoute(t *testing.T) {
	route := []geo.Coordinate{{Lat: 1, Lng: 2}}
	rec := buildRecord("run-4", time.Now(), time.Now(), 1, 1, route)
	route[0].Lat = 99
	if rec.Route[0].Lat != 1 {
		t.Fatalf("record route aliases caller slice")
	}
}

func TestPersistablePolicy(t *testing.T) {
	cases := []struct {
		name     string
		duration int
		distance float64
		want     bool
	}{
		{"both nonzero", 60, 100, true},
		{"zero distance", 60, 0, false},
		{"zero duration", 0, 100, false},
		{"both zero", 0, 0, false},
	}
	for _, tc := range cases {
		rec := Record{DurationSeconds: tc.duration, DistanceMeters: tc.distance}
		if rec.Persistable() != tc.want {
			t.Fatalf("%s: persistable=%v, want %v", tc.name, rec.Persistable(), tc.want)
		}
	}
}
