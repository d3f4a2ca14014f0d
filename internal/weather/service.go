package weather

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"
)

// Options configures the resolution pipeline. The single-card, bounded-list
// and region-aware deployments differ only in these values.
type Options struct {
	// MaxResults bounds the record list; the oldest records are evicted
	// first. Default: 5.
	MaxResults int
	// RequireRegionMatch makes a "<city>, <region>" query select by region.
	// When false the first geocoding candidate is always used.
	RequireRegionMatch bool
	// DailySeriesLength is the number of forecast days kept. 0 disables the series.
	DailySeriesLength int
	// TargetCountry is the ISO country code every location must carry. Default: US.
	TargetCountry string
	// GeocodeCount is the number of candidates requested. Default: 5.
	GeocodeCount int
}

func (o *Options) defaults() {
	if o.MaxResults <= 0 {
		o.MaxResults = 5
	}
	if o.DailySeriesLength < 0 {
		o.DailySeriesLength = 0
	}
	if o.TargetCountry == "" {
		o.TargetCountry = "US"
	}
	if o.GeocodeCount <= 0 {
		o.GeocodeCount = 5
	}
}

// Observer receives pipeline outcomes; observability.Metrics implements it.
type Observer interface {
	ObserveResolution(outcome string, d time.Duration)
	SetRecordCount(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveResolution(string, time.Duration) {}
func (nopObserver) SetRecordCount(int)                      {}

// Service orchestrates geocoding, forecasting and record storage.
// It holds no per-call state; concurrent FetchWeather calls are independent.
type Service struct {
	store    RecordStore
	resolver *Disambiguator
	forecast ForecastFetcher
	opts     Options
	clock    clockwork.Clock
	ids      *idSource
	observer Observer
	logger   *slog.Logger
	tracker  *Tracker

	// insertMu makes insert-and-trim atomic across resolutions.
	insertMu sync.Mutex
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithClock sets the time source used for record timestamps and ids.
func WithClock(c clockwork.Clock) ServiceOption {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithObserver sets the metrics sink.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// NewService creates a new Service.
func NewService(store RecordStore, geo GeoSearcher, forecast ForecastFetcher, opts Options, options ...ServiceOption) *Service {
	opts.defaults()
	s := &Service{
		store:    store,
		resolver: NewDisambiguator(geo, opts.TargetCountry, opts.GeocodeCount, opts.RequireRegionMatch),
		forecast: forecast,
		opts:     opts,
		clock:    clockwork.NewRealClock(),
		ids:      newIDSource(),
		observer: nopObserver{},
		logger:   slog.Default(),
	}
	for _, o := range options {
		o(s)
	}
	s.tracker = NewTracker(trackerHistory, s.clock)
	return s
}

// Options returns the effective pipeline options.
func (s *Service) Options() Options {
	return s.opts
}

// FetchWeather resolves q to a location, fetches its forecast and inserts
// the resulting record into the store. On failure nothing is inserted.
func (s *Service) FetchWeather(ctx context.Context, q PlaceQuery) (WeatherRecord, error) {
	start := s.clock.Now()
	record, err := s.resolve(ctx, q)

	outcome := outcomeOf(err)
	s.observer.ObserveResolution(outcome, s.clock.Since(start))
	if err != nil {
		if !IsCancelled(err) {
			s.logger.Warn("weather resolution failed", "query", string(q), "outcome", outcome, "error", err)
		}
		return WeatherRecord{}, err
	}

	s.observer.SetRecordCount(s.insert(record))
	s.logger.Info("weather record stored",
		"id", record.ID,
		"location", record.Name,
		"region", record.Region,
		"log_lines", len(record.Log),
	)
	return record, nil
}

func (s *Service) resolve(ctx context.Context, q PlaceQuery) (WeatherRecord, error) {
	var trace Trace

	loc, err := s.resolver.Resolve(ctx, q, &trace)
	if err != nil {
		return WeatherRecord{}, classify(ctx, err, ErrLocationNotFound)
	}
	s.logger.Debug("location resolved", "query", string(q), "name", loc.Name, "region", loc.Region,
		"lat", loc.Latitude, "lon", loc.Longitude)

	fc, ex, err := s.forecast.Forecast(ctx, ForecastRequest{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Days:      s.opts.DailySeriesLength,
	})
	// The body is logged before the status is judged.
	trace.Record(ex)
	if err != nil {
		return WeatherRecord{}, classify(ctx, err, ErrWeatherUnavailable)
	}

	if ctx.Err() != nil {
		return WeatherRecord{}, classify(ctx, ctx.Err(), ErrCancelled)
	}

	now := s.clock.Now().UTC()
	record := WeatherRecord{
		ID:           s.ids.next(now),
		Name:         loc.Name,
		Region:       loc.Region,
		Country:      loc.Country,
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		TemperatureC: fc.TemperatureC,
		WindSpeedMS:  fc.WindSpeedMS,
		Condition:    fc.Condition,
		Timezone:     fc.Timezone,
		Log:          trace.Lines(),
		CreatedAt:    now,
	}
	if fc.Daily != nil && s.opts.DailySeriesLength > 0 {
		daily := fc.Daily.Truncate(s.opts.DailySeriesLength)
		record.Daily = &daily
	}
	return record, nil
}

// insert stores record and evicts the oldest records beyond MaxResults.
// It returns the resulting length.
func (s *Service) insert(record WeatherRecord) int {
	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	s.store.Insert(record)
	n := s.store.Len()
	if n > s.opts.MaxResults {
		for _, old := range s.store.List()[:n-s.opts.MaxResults] {
			s.store.Remove(old.ID)
		}
		n = s.store.Len()
	}
	return n
}

// Capacity is the effective bound of the record list: MaxResults, or the
// store's own bound when that is smaller.
func (s *Service) Capacity() int {
	if c, ok := s.store.(interface{ Cap() int }); ok && c.Cap() < s.opts.MaxResults {
		return c.Cap()
	}
	return s.opts.MaxResults
}

// classify keeps known pipeline errors, turns deadlines into ErrNetwork and
// cancellation into ErrCancelled, and wraps anything else with fallback.
func classify(ctx context.Context, err, fallback error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	case IsCancelled(err) || ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	case errors.Is(err, ErrLocationNotFound),
		errors.Is(err, ErrWeatherUnavailable),
		errors.Is(err, ErrNetwork):
		return err
	default:
		return fmt.Errorf("%w: %v", fallback, err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsCancelled(err):
		return "cancelled"
	case errors.Is(err, ErrLocationNotFound):
		return "not_found"
	case errors.Is(err, ErrWeatherUnavailable):
		return "unavailable"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	default:
		return "error"
	}
}

// Records returns the stored records in insertion order.
func (s *Service) Records() []WeatherRecord {
	return s.store.List()
}

// Remove deletes a record; unknown ids are ignored.
func (s *Service) Remove(id string) {
	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	s.store.Remove(id)
	s.observer.SetRecordCount(s.store.Len())
}

// idSource hands out ULIDs that sort by creation time and stay strictly
// increasing within the same millisecond.
type idSource struct {
	entropy *ulid.LockedMonotonicReader
}

func newIDSource() *idSource {
	return &idSource{
		entropy: &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)},
	}
}

func (g *idSource) next(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), g.entropy).String()
}
