package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// State is the lifecycle position of one resolution attempt.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// trackerHistory is how many finished attempts stay queryable.
const trackerHistory = 64

// ErrAttemptNotFound is returned for unknown or expired attempt ids.
var ErrAttemptNotFound = errors.New("attempt not found")

// Attempt is a snapshot of one resolution's state machine.
type Attempt struct {
	ID         string     `json:"id"`
	Query      PlaceQuery `json:"query"`
	State      State      `json:"state"`
	RecordID   string     `json:"recordId,omitempty"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Tracker keeps attempt states. Transitions only go
// idle -> loading -> success|error; finished attempts beyond the history
// bound are dropped oldest first.
type Tracker struct {
	mu       sync.RWMutex
	clock    clockwork.Clock
	max      int
	attempts map[string]*Attempt
	order    []string
}

// NewTracker creates a Tracker keeping at most max attempts.
func NewTracker(max int, clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{
		clock:    clock,
		max:      max,
		attempts: make(map[string]*Attempt),
	}
}

func (t *Tracker) create(q PlaceQuery) Attempt {
	t.mu.Lock()
	defer t.mu.Unlock()

	a := &Attempt{
		ID:        uuid.NewString(),
		Query:     q,
		State:     StateIdle,
		StartedAt: t.clock.Now().UTC(),
	}
	t.attempts[a.ID] = a
	t.order = append(t.order, a.ID)
	if t.max > 0 && len(t.order) > t.max {
		over := len(t.order) - t.max
		for _, id := range t.order[:over] {
			delete(t.attempts, id)
		}
		t.order = t.order[over:]
	}
	return *a
}

func (t *Tracker) transition(id string, from, to State, apply func(*Attempt)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.attempts[id]
	if !ok || a.State != from {
		return false
	}
	a.State = to
	if apply != nil {
		apply(a)
	}
	return true
}

// Get returns a snapshot of an attempt.
func (t *Tracker) Get(id string) (Attempt, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a, ok := t.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return *a, nil
}

// Begin starts an asynchronous resolution and returns its attempt in the
// loading state. The work runs detached from the caller's context.
func (s *Service) Begin(q PlaceQuery, timeout time.Duration) Attempt {
	a := s.tracker.create(q)
	s.tracker.transition(a.ID, StateIdle, StateLoading, nil)
	a.State = StateLoading

	go func() {
		ctx := context.Background()
		cancel := func() {}
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()

		record, err := s.FetchWeather(ctx, q)
		finished := s.clock.Now().UTC()
		if err != nil {
			s.tracker.transition(a.ID, StateLoading, StateError, func(at *Attempt) {
				at.Message = UserMessage(err)
				at.FinishedAt = &finished
			})
			return
		}
		s.tracker.transition(a.ID, StateLoading, StateSuccess, func(at *Attempt) {
			at.RecordID = record.ID
			at.FinishedAt = &finished
		})
	}()
	return a
}

// Attempt looks up an attempt started with Begin.
func (s *Service) Attempt(id string) (Attempt, error) {
	return s.tracker.Get(id)
}
