package autocomplete

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weatherboard/internal/weather"
)

var (
	// ErrNoSuggestion is returned by Select for an index outside the list.
	ErrNoSuggestion = errors.New("no such suggestion")
	// ErrNotSearchable is returned by Submit when the query is not one of
	// the current suggestion values.
	ErrNotSearchable = errors.New("query does not match a suggestion")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("autocomplete controller closed")
)

// Resolver runs the full weather pipeline for a chosen place.
type Resolver interface {
	FetchWeather(ctx context.Context, q weather.PlaceQuery) (weather.WeatherRecord, error)
}

// Observer receives lookup outcomes; observability.Metrics implements it.
type Observer interface {
	ObserveSuggestions(outcome string)
	StaleDiscarded()
}

type nopObserver struct{}

func (nopObserver) ObserveSuggestions(string) {}
func (nopObserver) StaleDiscarded()           {}

// Options configures a Controller.
type Options struct {
	// Country restricts lookups and suggestions. Default: US.
	Country string
	// Count is the number of candidates requested per lookup. Default: 5.
	Count int
	// Delay is the debounce window. Default: 300ms.
	Delay time.Duration
	// MinLength is the shortest trimmed query that triggers a lookup. Default: 1.
	MinLength int

	Clock    clockwork.Clock
	Logger   *slog.Logger
	Observer Observer
}

func (o *Options) defaults() {
	if o.Country == "" {
		o.Country = "US"
	}
	o.Country = strings.ToUpper(o.Country)
	if o.Count <= 0 {
		o.Count = 5
	}
	if o.Delay <= 0 {
		o.Delay = 300 * time.Millisecond
	}
	if o.MinLength <= 0 {
		o.MinLength = 1
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
}

// State is a snapshot of the suggestion panel.
type State struct {
	Query   string               `json:"query"`
	Items   []weather.Suggestion `json:"items"`
	Visible bool                 `json:"visible"`
	// Pending is true while a debounce window or a lookup is outstanding.
	Pending bool `json:"pending"`
	// CanSearch is true when the query equals one of Items' values.
	CanSearch bool `json:"canSearch"`
}

// token identifies one issued lookup. Only the lookup whose token is still
// current when it completes may touch suggestion state.
type token struct {
	seq    uint64
	cancel context.CancelFunc
}

// Controller turns keystrokes into a suggestion list. It debounces input,
// cancels superseded lookups and discards their late responses.
type Controller struct {
	geo      weather.GeoSearcher
	resolver Resolver
	opts     Options

	mu       sync.Mutex
	query    string
	items    []weather.Suggestion
	visible  bool
	timer    clockwork.Timer
	gen      uint64 // bumped on every input change; stale timers compare against it
	seq      uint64
	inflight *token
	closed   bool

	wg sync.WaitGroup
}

// NewController creates a Controller. resolver may be nil when the caller
// never selects or submits.
func NewController(geo weather.GeoSearcher, resolver Resolver, opts Options) *Controller {
	opts.defaults()
	return &Controller{
		geo:      geo,
		resolver: resolver,
		opts:     opts,
	}
}

// QueryChanged records new input text. Short or empty text clears the panel
// at once; anything else restarts the debounce window.
func (c *Controller) QueryChanged(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.query = text
	c.supersedeLocked()

	if utf8.RuneCountInString(strings.TrimSpace(text)) < c.opts.MinLength {
		c.items = nil
		c.visible = false
		return
	}

	gen := c.gen
	c.timer = c.opts.Clock.AfterFunc(c.opts.Delay, func() {
		c.issue(gen, text)
	})
}

// supersedeLocked stops the pending timer and cancels the in-flight lookup.
func (c *Controller) supersedeLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
}

func (c *Controller) issue(gen uint64, text string) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.inflight != nil {
		c.inflight.cancel()
	}
	c.seq++
	ctx, cancel := context.WithCancel(context.Background())
	tok := &token{seq: c.seq, cancel: cancel}
	c.inflight = tok
	c.wg.Add(1)
	c.mu.Unlock()

	go c.lookup(ctx, tok, text)
}

func (c *Controller) lookup(ctx context.Context, tok *token, text string) {
	defer c.wg.Done()
	defer tok.cancel()

	city, _, _ := weather.PlaceQuery(text).Parse()
	candidates, _, err := c.geo.Search(ctx, weather.GeoSearchRequest{
		Name:    city,
		Count:   c.opts.Count,
		Country: c.opts.Country,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight != tok {
		c.opts.Observer.StaleDiscarded()
		c.opts.Logger.Debug("discarded stale suggestions", "query", text, "seq", tok.seq)
		return
	}
	c.inflight = nil

	if err != nil {
		c.items = nil
		c.visible = false
		c.opts.Observer.ObserveSuggestions("error")
		c.opts.Logger.Debug("suggestion lookup failed", "query", text, "error", err)
		return
	}

	c.items = c.filter(candidates)
	c.visible = len(c.items) > 0
	c.opts.Observer.ObserveSuggestions("success")
}

// filter keeps places in the target country, dropping state-level entries.
// Provider order is preserved.
func (c *Controller) filter(candidates []weather.GeoCandidate) []weather.Suggestion {
	out := make([]weather.Suggestion, 0, len(candidates))
	for _, cand := range candidates {
		if !strings.EqualFold(cand.CountryCode, c.opts.Country) {
			continue
		}
		if cand.FeatureCode == weather.FeatureAdminRegion {
			continue
		}
		out = append(out, weather.SuggestionFor(cand))
	}
	return out
}

// Suggestions returns the current panel state.
func (c *Controller) Suggestions() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Query:     c.query,
		Items:     append([]weather.Suggestion(nil), c.items...),
		Visible:   c.visible,
		Pending:   c.timer != nil || c.inflight != nil,
		CanSearch: c.canSearchLocked(),
	}
}

// CanSearch reports whether the trimmed query equals a suggestion value.
func (c *Controller) CanSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSearchLocked()
}

func (c *Controller) canSearchLocked() bool {
	q := strings.TrimSpace(c.query)
	if q == "" {
		return false
	}
	for _, s := range c.items {
		if s.Value == q {
			return true
		}
	}
	return false
}

// Clear empties the query and the panel and abandons any pending lookup.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked()
	c.query = ""
	c.items = nil
	c.visible = false
}

// Select picks suggestion i, closes the panel and runs the weather pipeline
// for its value.
func (c *Controller) Select(ctx context.Context, i int) (weather.WeatherRecord, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return weather.WeatherRecord{}, ErrClosed
	}
	if i < 0 || i >= len(c.items) {
		c.mu.Unlock()
		return weather.WeatherRecord{}, ErrNoSuggestion
	}
	value := c.items[i].Value
	c.supersedeLocked()
	c.query = value
	c.visible = false
	c.mu.Unlock()

	return c.resolve(ctx, value)
}

// Submit runs the weather pipeline for the trimmed query. It is only allowed
// when that equals one of the suggestion values.
func (c *Controller) Submit(ctx context.Context) (weather.WeatherRecord, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return weather.WeatherRecord{}, ErrClosed
	}
	if !c.canSearchLocked() {
		c.mu.Unlock()
		return weather.WeatherRecord{}, ErrNotSearchable
	}
	value := strings.TrimSpace(c.query)
	c.supersedeLocked()
	c.query = value
	c.visible = false
	c.mu.Unlock()

	return c.resolve(ctx, value)
}

func (c *Controller) resolve(ctx context.Context, value string) (weather.WeatherRecord, error) {
	if c.resolver == nil {
		return weather.WeatherRecord{}, errors.New("autocomplete: no resolver configured")
	}
	return c.resolver.FetchWeather(ctx, weather.PlaceQuery(value))
}

// Close abandons pending work and waits for outstanding lookups to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.supersedeLocked()
	c.mu.Unlock()

	c.wg.Wait()
}
