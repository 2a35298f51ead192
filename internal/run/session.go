package run

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// ErrInvalidTransition is returned when an operation is called from a state
// that does not permit it. The session state is left untouched.
var ErrInvalidTransition = errors.New("invalid transition")

// Split marks the elapsed time at which the run first crossed a whole
// kilometer or mile boundary.
type Split struct {
	UnitIndex      int `json:"unit_index"`
	ElapsedSeconds int `json:"elapsed_seconds"`
}

// Snapshot is the read-only projection of session state handed to
// observers after every accepted tick, fix, and transition.
type Snapshot struct {
	SessionID      string  `json:"session_id"`
	Status         Status  `json:"status"`
	ElapsedSeconds int     `json:"elapsed_seconds"`
	DistanceMeters float64 `json:"distance_m"`
	Splits         []Split `json:"splits"`
	GoalProgress   float64 `json:"goal_progress"`
	GoalReached    bool    `json:"goal_reached"`
}

// Recorder is the storage collaborator for finalized runs. The session does
// not retry on failure; the error is surfaced to the caller unchanged.
type Recorder interface {
	SaveRun(ctx context.Context, rec Record) error
}

// Config carries the collaborators and options for one session.
type Config struct {
	Goal         *Goal          // optional target; nil means free run
	Units        Units          // split units when no goal is set; defaults to metric
	TickInterval time.Duration  // defaults to one second
	Source       Source         // defaults to a fresh Feed
	Recorder     Recorder       // optional
	Notify       func(Snapshot) // optional observer
}

// Session owns all state for one run: status, elapsed time, cumulative
// distance, route, splits, and goal tracking. Every mutation, whether an
// API call or a clock/location callback, is serialized behind one mutex,
// and callbacks arriving around a transition are rejected by the status
// check.
type Session struct {
	id     string
	clock  *Clock
	source Source

	recorder Recorder
	notify   func(Snapshot)
	now      func() time.Time

	mu             sync.Mutex
	status         Status
	startedAt      time.Time
	completedAt    time.Time
	elapsedSeconds int
	distanceMeters float64
	route          []geo.Coordinate
	splits         []Split
	lastFix        *geo.Coordinate
	lastSplitUnit  int
	goal           *Goal
	goalReached    bool
	units          Units
	record         *Record
}

// NewSession creates a session in Idle.
func NewSession(cfg Config) *Session {
	s := &Session{
		id:       uuid.NewString(),
		status:   StatusIdle,
		goal:     cfg.Goal,
		units:    cfg.Units,
		source:   cfg.Source,
		recorder: cfg.Recorder,
		notify:   cfg.Notify,
		now:      time.Now,
	}
	if s.units == "" {
		s.units = UnitsMetric
	}
	if s.goal != nil && s.goal.Units != "" {
		s.units = s.goal.Units
	}
	if s.source == nil {
		s.source = NewFeed()
	}
	s.clock = NewClock(cfg.TickInterval, s.onTick)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns the current read-only projection.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Route returns a copy of the accepted fixes so far.
func (s *Session) Route() []geo.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := make([]geo.Coordinate, len(s.route))
	copy(points, s.route)
	return points
}

// Record returns the finalized record of a completed session.
func (s *Session) Record() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return Record{}, false
	}
	return *s.record, true
}

// Start transitions Idle -> Running: stamps startedAt, zeroes all
// accumulators, and attaches the clock and location source.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.status != StatusIdle {
		status := s.status
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, status)
	}
	s.status = StatusRunning
	s.startedAt = s.now()
	s.elapsedSeconds = 0
	s.distanceMeters = 0
	s.route = nil
	s.splits = nil
	s.lastFix = nil
	s.lastSplitUnit = 0
	s.goalReached = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.source.Subscribe(s.onFix)
	s.clock.Start()
	s.emit(snap)
	return nil
}

// Pause transitions Running -> Paused. The clock and location source are
// fully detached before Pause returns, so nothing accumulates while paused.
func (s *Session) Pause() error {
	s.mu.Lock()
	if s.status != StatusRunning {
		status := s.status
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot pause from %s", ErrInvalidTransition, status)
	}
	s.status = StatusPaused
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.clock.Stop()
	s.source.Unsubscribe()
	s.emit(snap)
	return nil
}

// Resume transitions Paused -> Running without resetting any accumulator.
func (s *Session) Resume() error {
	s.mu.Lock()
	if s.status != StatusPaused {
		status := s.status
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot resume from %s", ErrInvalidTransition, status)
	}
	s.status = StatusRunning
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.source.Subscribe(s.onFix)
	s.clock.Start()
	s.emit(snap)
	return nil
}

// Stop completes the run, freezes all fields, and hands the finalized
// record to the recorder. On Idle or Completed it is an idempotent no-op
// returning the last known snapshot. A storage failure is returned
// unchanged alongside the completed snapshot.
func (s *Session) Stop(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.status == StatusIdle || s.status == StatusCompleted {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	rec, persist := s.completeLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.clock.Stop()
	s.source.Unsubscribe()
	s.emit(snap)

	if persist && s.recorder != nil {
		if err := s.recorder.SaveRun(ctx, rec); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// onTick is driven by the clock. Only a tick accepted while Running
// advances elapsed time.
func (s *Session) onTick() {
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return
	}
	s.elapsedSeconds++
	rec, persist, completed := s.checkGoalLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if completed {
		s.releaseAfterGoal(rec, persist)
	}
	s.emit(snap)
}

// onFix is driven by the location source. Only a fix accepted while Running
// extends the route and accumulators.
func (s *Session) onFix(c geo.Coordinate) {
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return
	}
	s.route = append(s.route, c)
	if s.lastFix != nil {
		s.distanceMeters += geo.DistanceMeters(*s.lastFix, c)
	}
	last := c
	s.lastFix = &last
	s.recordSplitsLocked()
	rec, persist, completed := s.checkGoalLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if completed {
		s.releaseAfterGoal(rec, persist)
	}
	s.emit(snap)
}

// recordSplitsLocked appends one split per crossed whole-unit boundary.
// A single fix that jumps several boundaries records all of them.
func (s *Session) recordSplitsLocked() {
	unit := unitMeters(s.units)
	idx := int(s.distanceMeters / unit)
	for u := s.lastSplitUnit + 1; u <= idx; u++ {
		s.splits = append(s.splits, Split{UnitIndex: u, ElapsedSeconds: s.elapsedSeconds})
	}
	if idx > s.lastSplitUnit {
		s.lastSplitUnit = idx
	}
}

// checkGoalLocked flips goalReached at most once and completes the session
// when the goal is met.
func (s *Session) checkGoalLocked() (Record, bool, bool) {
	if s.goalReached || !s.goal.Reached(s.distanceMeters, s.elapsedSeconds) {
		return Record{}, false, false
	}
	s.goalReached = true
	rec, persist := s.completeLocked()
	return rec, persist, true
}

func (s *Session) completeLocked() (Record, bool) {
	s.status = StatusCompleted
	s.completedAt = s.now()
	rec := buildRecord(s.id, s.startedAt, s.completedAt, s.elapsedSeconds, s.distanceMeters, s.route)
	s.record = &rec
	return rec, rec.Persistable()
}

// releaseAfterGoal runs the teardown for a goal-triggered completion. The
// clock and source are released on a separate goroutine because a tick or
// fix callback cannot wait for its own delivery path to drain; a straggler
// callback in the meantime is rejected by the status check.
func (s *Session) releaseAfterGoal(rec Record, persist bool) {
	go func() {
		s.clock.Stop()
		s.source.Unsubscribe()
	}()
	if persist && s.recorder != nil {
		if err := s.recorder.SaveRun(context.Background(), rec); err != nil {
			log.Printf("run %s: save after goal completion failed: %v", s.id, err)
		}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	splits := make([]Split, len(s.splits))
	copy(splits, s.splits)
	return Snapshot{
		SessionID:      s.id,
		Status:         s.status,
		ElapsedSeconds: s.elapsedSeconds,
		DistanceMeters: s.distanceMeters,
		Splits:         splits,
		GoalProgress:   s.goal.Progress(s.distanceMeters, s.elapsedSeconds),
		GoalReached:    s.goalReached,
	}
}

func (s *Session) emit(snap Snapshot) {
	if s.notify != nil {
		s.notify(snap)
	}
}
