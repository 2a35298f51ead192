package run

import (
	"sync"

	"github.com/Frawatson/FitLog-sub000/internal/shared/geo"
)

// Source is a stream of GPS fixes with subscribe/unsubscribe semantics.
// Unsubscribe must be synchronous-effective: once it returns, the callback
// is never invoked again until the next Subscribe. Fixes arriving while no
// subscriber is attached must be dropped, never queued, so re-subscribing
// cannot replay stale fixes.
type Source interface {
	Subscribe(onFix func(geo.Coordinate))
	Unsubscribe()
}

// Feed is a Source pushed from the outside: the fix-ingestion handler calls
// Offer with each coordinate reported by the client.
type Feed struct {
	mu    sync.Mutex
	onFix func(geo.Coordinate)
}

func NewFeed() *Feed {
	return &Feed{}
}

// Subscribe attaches the callback, replacing any previous subscriber.
func (f *Feed) Subscribe(onFix func(geo.Coordinate)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFix = onFix
}

// Unsubscribe detaches the current subscriber. It blocks until any
// in-flight Offer has finished delivering, so after it returns no further
// callback invocation can happen.
func (f *Feed) Unsubscribe() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFix = nil
}

// Offer delivers one fix to the current subscriber. Fixes offered while
// nobody is subscribed are dropped. Reports whether the fix was delivered.
func (f *Feed) Offer(c geo.Coordinate) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onFix == nil {
		return false
	}
	f.onFix(c)
	return true
}
