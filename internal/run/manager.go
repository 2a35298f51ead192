package run

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

// ErrNoActiveRun is returned when an operation targets an owner without a
// current session.
var ErrNoActiveRun = errors.New("no active run")

// OwnerRecorder persists finalized records on behalf of an owner.
type OwnerRecorder interface {
	SaveRun(ctx context.Context, ownerID string, rec Record) error
}

// Manager enforces at most one session per owner. The clock and location
// feed are scoped to the session the manager hands out, never shared:
// starting a new run while one is Running or Paused force-stops the
// previous one first.
type Manager struct {
	recorder     OwnerRecorder
	notify       func(Snapshot)
	tickInterval time.Duration

	mu      sync.Mutex
	current map[string]*managedRun
}

type managedRun struct {
	session *Session
	feed    *Feed
}

func NewManager(recorder OwnerRecorder, notify func(Snapshot), tickInterval time.Duration) *Manager {
	return &Manager{
		recorder:     recorder,
		notify:       notify,
		tickInterval: tickInterval,
		current:      map[string]*managedRun{},
	}
}

// recorderFor binds the owner into the session's Recorder collaborator.
type recorderFunc func(ctx context.Context, rec Record) error

func (f recorderFunc) SaveRun(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}

func (m *Manager) recorderFor(ownerID string) Recorder {
	if m.recorder == nil {
		return nil
	}
	return recorderFunc(func(ctx context.Context, rec Record) error {
		return m.recorder.SaveRun(ctx, ownerID, rec)
	})
}

// Start begins a new run for the owner, force-stopping any session still
// Running or Paused. The detach-create-install sequence runs entirely under
// the manager lock: racing Starts for one owner serialize, so no started
// session can be orphaned by a concurrent map overwrite.
func (m *Manager) Start(ctx context.Context, ownerID string, goal *Goal, units Units) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev := m.current[ownerID]; prev != nil {
		if _, err := prev.session.Stop(ctx); err != nil {
			return Snapshot{}, err
		}
	}

	feed := NewFeed()
	session := NewSession(Config{
		Goal:         goal,
		Units:        units,
		TickInterval: m.tickInterval,
		Source:       feed,
		Recorder:     m.recorderFor(ownerID),
		Notify:       m.notify,
	})
	if err := session.Start(); err != nil {
		return Snapshot{}, err
	}

	m.current[ownerID] = &managedRun{session: session, feed: feed}
	return session.Snapshot(), nil
}

func (m *Manager) lookup(ownerID string) (*managedRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mr := m.current[ownerID]
	if mr == nil {
		return nil, ErrNoActiveRun
	}
	return mr, nil
}

// Pause pauses the owner's current run.
func (m *Manager) Pause(ownerID string) (Snapshot, error) {
	mr, err := m.lookup(ownerID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := mr.session.Pause(); err != nil {
		return Snapshot{}, err
	}
	return mr.session.Snapshot(), nil
}

// Resume resumes the owner's paused run.
func (m *Manager) Resume(ownerID string) (Snapshot, error) {
	mr, err := m.lookup(ownerID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := mr.session.Resume(); err != nil {
		return Snapshot{}, err
	}
	return mr.session.Snapshot(), nil
}

// Stop completes the owner's current run. The completed session stays
// addressable until the next Start so the caller can still read its final
// snapshot.
func (m *Manager) Stop(ctx context.Context, ownerID string) (Snapshot, error) {
	mr, err := m.lookup(ownerID)
	if err != nil {
		return Snapshot{}, err
	}
	return mr.session.Stop(ctx)
}

// Offer feeds one GPS fix into the owner's current run. Fixes for paused or
// completed runs are dropped.
func (m *Manager) Offer(ownerID string, c geo.Coordinate) (bool, error) {
	mr, err := m.lookup(ownerID)
	if err != nil {
		return false, err
	}
	return mr.feed.Offer(c), nil
}

// Snapshot returns the owner's current run state.
func (m *Manager) Snapshot(ownerID string) (Snapshot, error) {
	mr, err := m.lookup(ownerID)
	if err != nil {
		return Snapshot{}, err
	}
	return mr.session.Snapshot(), nil
}
