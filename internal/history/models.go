package history

import (
	"time"

	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

// Run is a persisted run record as stored in the runs table. The route is
// kept as a JSONB array of coordinates.
type Run struct {
	ID                string           `json:"id"`
	UserID            string           `json:"user_id"`
	DistanceMeters    float64          `json:"distance_m"`
	DurationSeconds   int              `json:"duration_sec"`
	PaceSecondsPerKm  float64          `json:"pace_sec_per_km"`
	EstimatedCalories int              `json:"estimated_calories"`
	StartedAt         time.Time        `json:"started_at"`
	CompletedAt       time.Time        `json:"completed_at"`
	Route             []geo.Coordinate `json:"route,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}
