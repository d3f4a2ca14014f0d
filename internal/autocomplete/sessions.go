package autocomplete

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/weatherboard/internal/weather"
)

// ErrSessionNotFound is returned for unknown or evicted session ids.
var ErrSessionNotFound = errors.New("session not found")

// SessionObserver publishes the open session count.
type SessionObserver interface {
	SetSessionCount(n int)
}

// Sessions keeps one Controller per client. The oldest session is closed
// when the bound is exceeded.
type Sessions struct {
	geo      weather.GeoSearcher
	resolver Resolver
	opts     Options
	max      int
	observer SessionObserver

	mu       sync.Mutex
	sessions map[string]*Controller
	order    []string
}

// NewSessions creates a session registry. observer may be nil.
func NewSessions(geo weather.GeoSearcher, resolver Resolver, opts Options, max int, observer SessionObserver) *Sessions {
	if max <= 0 {
		max = 256
	}
	return &Sessions{
		geo:      geo,
		resolver: resolver,
		opts:     opts,
		max:      max,
		observer: observer,
		sessions: make(map[string]*Controller),
	}
}

// Open creates a session and returns its id.
func (s *Sessions) Open() (string, *Controller) {
	id := uuid.NewString()
	ctrl := NewController(s.geo, s.resolver, s.opts)

	var evicted []*Controller
	s.mu.Lock()
	s.sessions[id] = ctrl
	s.order = append(s.order, id)
	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		evicted = append(evicted, s.sessions[oldest])
		delete(s.sessions, oldest)
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, c := range evicted {
		c.Close()
	}
	s.publish(n)
	return id, ctrl
}

// Get returns the session's controller.
func (s *Sessions) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Close ends a session. Unknown ids are ignored.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	c, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if ok {
		c.Close()
		s.publish(n)
	}
}

// CloseAll ends every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	all := make([]*Controller, 0, len(s.sessions))
	for _, c := range s.sessions {
		all = append(all, c)
	}
	s.sessions = make(map[string]*Controller)
	s.order = nil
	s.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	s.publish(0)
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) publish(n int) {
	if s.observer != nil {
		s.observer.SetSessionCount(n)
	}
}
