package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/Frawatson/FitLog-sub000/internal/run"
	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

var errHistory = errors.New("history error")

func sampleRecord() run.Record {
	started := time.Date(2026, 8, 20, 6, 30, 0, 0, time.UTC)
	return run.Record{
		RunID:             "run-1",
		DistanceMeters:    5000,
		DurationSeconds:   1500,
		PaceSecondsPerKm:  300,
		EstimatedCalories: 311,
		StartedAt:         started,
		CompletedAt:       started.Add(25 * time.Minute),
		Route:             []geo.Coordinate{{Lat: 40, Lng: -74}, {Lat: 40.01, Lng: -74}},
	}
}

func TestSaveRun(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	rec := sampleRecord()
	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(rec.RunID, "user-1", rec.DistanceMeters, rec.DurationSeconds, rec.PaceSecondsPerKm, rec.EstimatedCalories, rec.StartedAt, rec.CompletedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock)
	if err := svc.SaveRun(context.Background(), "user-1", rec); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveRunInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errHistory)

	svc := NewService(mock)
	if err := svc.SaveRun(context.Background(), "user-1", sampleRecord()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestList(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, distance_m, duration_sec, pace_sec_per_km, estimated_calories, started_at, completed_at, created_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "distance_m", "duration_sec", "pace_sec_per_km", "estimated_calories", "started_at", "completed_at", "created_at"}).
			AddRow("run-1", "user-1", 5000.0, 1500, 300.0, 311, now.Add(-time.Hour), now, now))

	svc := NewService(mock)
	runs, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestListQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, distance_m`).
		WithArgs("user-1").
		WillReturnError(errHistory)

	svc := NewService(mock)
	if _, err := svc.List(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetWithRoute(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	route := []byte(`[{"lat":40,"lng":-74},{"lat":40.01,"lng":-74}]`)
	mock.ExpectQuery(`SELECT id, user_id, distance_m, duration_sec, pace_sec_per_km, estimated_calories, started_at, completed_at, route, created_at`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "distance_m", "duration_sec", "pace_sec_per_km", "estimated_calories", "started_at", "completed_at", "route", "created_at"}).
			AddRow("run-1", "user-1", 5000.0, 1500, 300.0, 311, now.Add(-time.Hour), now, route, now))

	svc := NewService(mock)
	r, err := svc.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(r.Route) != 2 || r.Route[0].Lat != 40 {
		t.Fatalf("route not decoded: %+v", r.Route)
	}
}

func TestGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, distance_m`).
		WithArgs("missing").
		WillReturnError(errHistory)

	svc := NewService(mock)
	if _, err := svc.Get(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error")
	}
}
