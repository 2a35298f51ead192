package run

import "github.com/Frawatson/FitLog-sub000/internal/shared/geo"

// GoalKind selects what a goal targets.
type GoalKind string

const (
	GoalDistance GoalKind = "distance"
	GoalTime     GoalKind = "time"
)

// Units selects the whole-unit length for splits and distance goals.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Goal is an optional target configured at session start. Distance targets
// are expressed in the goal's units (kilometers or miles), time targets in
// minutes. Immutable for the session's lifetime.
type Goal struct {
	Kind   GoalKind `json:"kind"`
	Target float64  `json:"target"`
	Units  Units    `json:"units"`
}

// Reached reports whether the goal is met by the given accumulators. Pure:
// a nil goal is never reached.
func (g *Goal) Reached(distanceMeters float64, elapsedSeconds int) bool {
	if g == nil {
		return false
	}
	switch g.Kind {
	case GoalDistance:
		return g.distanceIn(distanceMeters) >= g.Target
	case GoalTime:
		return float64(elapsedSeconds)/60 >= g.Target
	}
	return false
}

// Progress returns the unclamped completion ratio; callers clamp for
// display. Zero when no goal is configured.
func (g *Goal) Progress(distanceMeters float64, elapsedSeconds int) float64 {
	if g == nil || g.Target <= 0 {
		return 0
	}
	switch g.Kind {
	case GoalDistance:
		return g.distanceIn(distanceMeters) / g.Target
	case GoalTime:
		return float64(elapsedSeconds) / 60 / g.Target
	}
	return 0
}

func (g *Goal) distanceIn(meters float64) float64 {
	if g.Units == UnitsImperial {
		return geo.MetersToMiles(meters)
	}
	return geo.MetersToKm(meters)
}

// unitMeters is the split boundary length for the goal's unit system.
func unitMeters(u Units) float64 {
	if u == UnitsImperial {
		return geo.MetersPerMile
	}
	return geo.MetersPerKm
}
