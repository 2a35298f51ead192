package history

import (
	"context"
	"encoding/json"

	"github.com/Frawatson/FitLog-sub000/internal/db"
	"github.com/Frawatson/FitLog-sub000/internal/run"
	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

// Service is the storage collaborator for finalized runs. It implements
// run.OwnerRecorder; the engine calls SaveRun exactly once per completed
// run and never retries.
type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) SaveRun(ctx context.Context, ownerID string, rec run.Record) error {
	route, err := json.Marshal(rec.Route)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO runs (id, user_id, distance_m, duration_sec, pace_sec_per_km, estimated_calories, started_at, completed_at, route)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.RunID, ownerID, rec.DistanceMeters, rec.DurationSeconds, rec.PaceSecondsPerKm, rec.EstimatedCalories, rec.StartedAt, rec.CompletedAt, route)
	return err
}

// List returns the owner's runs, newest first, without route payloads.
func (s *Service) List(ctx context.Context, ownerID string) ([]Run, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, distance_m, duration_sec, pace_sec_per_km, estimated_calories, started_at, completed_at, created_at
		FROM runs WHERE user_id=$1
		ORDER BY completed_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.UserID, &r.DistanceMeters, &r.DurationSeconds, &r.PaceSecondsPerKm, &r.EstimatedCalories, &r.StartedAt, &r.CompletedAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns a single run including its route.
func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	var r Run
	var route []byte
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, distance_m, duration_sec, pace_sec_per_km, estimated_calories, started_at, completed_at, route, created_at
		FROM runs WHERE id=$1
	`, id)
	if err := row.Scan(&r.ID, &r.UserID, &r.DistanceMeters, &r.DurationSeconds, &r.PaceSecondsPerKm, &r.EstimatedCalories, &r.StartedAt, &r.CompletedAt, &route, &r.CreatedAt); err != nil {
		return Run{}, err
	}
	if len(route) > 0 {
		var points []geo.Coordinate
		if err := json.Unmarshal(route, &points); err != nil {
			return Run{}, err
		}
		r.Route = points
	}
	return r, nil
}
