package run

import (
	"math"
	"time"

	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

// Record is the immutable artifact of a completed run, handed to the
// storage collaborator.
type Record struct {
	RunID             string           `json:"run_id"`
	DistanceMeters    float64          `json:"distance_m"`
	DurationSeconds   int              `json:"duration_sec"`
	PaceSecondsPerKm  float64          `json:"pace_sec_per_km"`
	EstimatedCalories int              `json:"estimated_calories"`
	StartedAt         time.Time        `json:"started_at"`
	CompletedAt       time.Time        `json:"completed_at"`
	Route             []geo.Coordinate `json:"route"`
}

// buildRecord derives the run record from frozen session state. Pure: the
// same inputs always yield the same record. Pace is 0 when no distance was
// covered (zero-distance runs are never persisted anyway).
func buildRecord(id string, startedAt, completedAt time.Time, elapsedSeconds int, distanceMeters float64, route []geo.Coordinate) Record {
	pace := 0.0
	if distanceMeters > 0 {
		pace = float64(elapsedSeconds) / geo.MetersToKm(distanceMeters)
	}

	points := make([]geo.Coordinate, len(route))
	copy(points, route)

	return Record{
		RunID:            id,
		DistanceMeters:   distanceMeters,
		DurationSeconds:  elapsedSeconds,
		PaceSecondsPerKm: pace,
		// Linear approximation (100 kcal per mile), not a physiological model.
		EstimatedCalories: int(math.Round(geo.MetersToMiles(distanceMeters) * 100)),
		StartedAt:         startedAt,
		CompletedAt:       completedAt,
		Route:             points,
	}
}

// Persistable reports whether the run carries enough data to be saved.
// Both duration and distance must be nonzero; anything else is discarded.
func (r Record) Persistable() bool {
	return r.DurationSeconds > 0 && r.DistanceMeters > 0
}
