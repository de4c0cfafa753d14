package state

import (
	"sync"
	"time"
)

// Status is the request lifecycle phase of a collection.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// defaultFailure stands in for an empty failure message so that a failed
// snapshot always carries text.
const defaultFailure = "request failed"

// Token identifies one request cycle. The zero Token never matches.
type Token uint64

// Snapshot is a copy of a collection's state at one point in time.
type Snapshot[T any] struct {
	Items        []T
	Status       Status
	ErrorMessage string
	LastUpdated  time.Time
}

// Loading reports whether a request is in flight.
func (s Snapshot[T]) Loading() bool { return s.Status == StatusLoading }

// Failed reports whether the last request failed.
func (s Snapshot[T]) Failed() bool { return s.Status == StatusFailed }

// Store owns one collection. All mutation goes through Begin, Succeed, Fail
// and Reset; completions carrying a superseded token are dropped.
type Store[T any] struct {
	mu       sync.RWMutex
	snapshot Snapshot[T]
	active   Token
	next     Token
	subs     map[int]chan Snapshot[T]
	nextSub  int
}

// Begin starts a request cycle and returns its token. Any earlier token stops
// being able to complete. Items stay visible while the request runs.
func (s *Store[T]) Begin() Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.active = s.next
	s.snapshot.Status = StatusLoading
	s.snapshot.ErrorMessage = ""
	s.snapshot.LastUpdated = time.Now()
	s.publishLocked()
	return s.active
}

// Succeed replaces the items when tok is still the active request. It reports
// whether the result was applied.
func (s *Store[T]) Succeed(tok Token, items []T) bool {
	return s.Commit(tok, items, nil)
}

// Commit is Succeed with a hook. onApply runs only when the result applies,
// inside the same critical section as the token check and before subscribers
// are notified, so state kept next to the items can never describe a stale
// request. onApply must not call back into the store.
func (s *Store[T]) Commit(tok Token, items []T, onApply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveLocked(tok) {
		return false
	}
	if onApply != nil {
		onApply()
	}
	s.active = 0
	s.snapshot.Items = cloneItems(items)
	s.snapshot.Status = StatusReady
	s.snapshot.ErrorMessage = ""
	s.snapshot.LastUpdated = time.Now()
	s.publishLocked()
	return true
}

// Fail records message when tok is still the active request. Previous items
// are kept. It reports whether the failure was applied.
func (s *Store[T]) Fail(tok Token, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveLocked(tok) {
		return false
	}
	if message == "" {
		message = defaultFailure
	}
	s.active = 0
	s.snapshot.Status = StatusFailed
	s.snapshot.ErrorMessage = message
	s.snapshot.LastUpdated = time.Now()
	s.publishLocked()
	return true
}

// Reset returns the collection to idle with no items, and invalidates any
// request still in flight.
func (s *Store[T]) Reset() {
	s.ResetWith(nil)
}

// ResetWith is Reset with a hook that runs inside the reset's critical
// section. onReset must not call back into the store.
func (s *Store[T]) ResetWith(onReset func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if onReset != nil {
		onReset()
	}
	s.active = 0
	s.snapshot = Snapshot[T]{Status: StatusIdle, LastUpdated: time.Now()}
	s.publishLocked()
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Subscribe returns a channel that receives the latest snapshot after every
// applied mutation, starting with the current one. The channel holds a single
// pending value; a slow reader only sees the newest state. Call cancel to stop
// and close the channel.
func (s *Store[T]) Subscribe() (<-chan Snapshot[T], func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[int]chan Snapshot[T])
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot[T], 1)
	ch <- s.copyLocked()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store[T]) liveLocked(tok Token) bool {
	return tok != 0 && tok == s.active
}

// publishLocked replaces whatever is pending on each subscriber channel with
// the current snapshot. It never blocks.
func (s *Store[T]) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	for _, ch := range s.subs {
		snap := s.copyLocked()
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Store[T]) copyLocked() Snapshot[T] {
	snap := s.snapshot
	snap.Items = cloneItems(s.snapshot.Items)
	return snap
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
