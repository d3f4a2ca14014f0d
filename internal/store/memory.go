package store

import (
	"slices"
	"sync"

	"github.com/i474232898/weatherboard/internal/weather"
)

// ResultList is a concurrency-safe, bounded list of weather records kept in
// arrival order. When an insert overflows the bound the oldest records are
// evicted first.
type ResultList struct {
	mu sync.RWMutex

	records []weather.WeatherRecord

	// maximum number of records retained
	maxRecords int
}

// NewResultList creates a ResultList holding at most maxRecords records.
// If maxRecords is <= 0, it is treated as 1.
func NewResultList(maxRecords int) *ResultList {
	if maxRecords <= 0 {
		maxRecords = 1
	}
	return &ResultList{
		records:    make([]weather.WeatherRecord, 0, maxRecords+1),
		maxRecords: maxRecords,
	}
}

// Insert appends a record at the tail and enforces the bound.
func (s *ResultList) Insert(record weather.WeatherRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)

	// Enforce retention by count.
	if len(s.records) > s.maxRecords {
		over := len(s.records) - s.maxRecords
		s.records = slices.Delete(s.records, 0, over)
	}
}

// Remove deletes the record with the given id. Unknown ids are ignored.
func (s *ResultList) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == id {
			s.records = slices.Delete(s.records, i, i+1)
			return
		}
	}
}

// List returns a copy of the records in insertion order.
func (s *ResultList) List() []weather.WeatherRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.WeatherRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records currently held.
func (s *ResultList) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Cap returns the configured bound.
func (s *ResultList) Cap() int {
	return s.maxRecords
}
