package weather

import (
	"context"
	"errors"
	"sync"
)

// fakeGeo returns fixed candidates and records the requests it saw.
type fakeGeo struct {
	mu         sync.Mutex
	candidates []GeoCandidate
	err        error
	requests   []GeoSearchRequest
}

func (f *fakeGeo) Search(_ context.Context, req GeoSearchRequest) ([]GeoCandidate, Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	ex := Exchange{URL: "geo?name=" + req.Name}
	if f.err != nil && !errors.Is(f.err, ErrLocationNotFound) {
		return nil, ex, f.err
	}
	ex.StatusCode = 200
	ex.Body = []byte(`{"results":[]}`)
	return f.candidates, ex, f.err
}

// fakeForecast returns a fixed forecast or a fixed failure.
type fakeForecast struct {
	mu       sync.Mutex
	forecast Forecast
	status   int
	body     string
	err      error
	requests []ForecastRequest
	block    chan struct{}
}

func (f *fakeForecast) Forecast(ctx context.Context, req ForecastRequest) (Forecast, Exchange, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return Forecast{}, Exchange{URL: "forecast"}, ctx.Err()
		}
	}

	status := f.status
	if status == 0 {
		status = 200
	}
	ex := Exchange{URL: "forecast", StatusCode: status, Body: []byte(f.body)}
	if f.err != nil {
		return Forecast{}, ex, f.err
	}
	return f.forecast, ex, nil
}

// listStore is a minimal unbounded RecordStore.
type listStore struct {
	mu      sync.Mutex
	records []WeatherRecord
}

func (s *listStore) Insert(r WeatherRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

func (s *listStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return
		}
	}
}

func (s *listStore) List() []WeatherRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WeatherRecord(nil), s.records...)
}

func (s *listStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func springfields() []GeoCandidate {
	return []GeoCandidate{
		{Name: "Springfield", Region: "IL", Country: "United States", CountryCode: "US", Latitude: 39.8, Longitude: -89.6, FeatureCode: "PPLA"},
		{Name: "Springfield", Region: "MO", Country: "United States", CountryCode: "US", Latitude: 37.2, Longitude: -93.3, FeatureCode: "PPLA2"},
	}
}
