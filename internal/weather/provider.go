package weather

import (
	"bytes"
	"context"
	"strconv"
)

// Exchange is the trace of one outbound request. URL is always set;
// StatusCode and Body are zero when no response was obtained.
type Exchange struct {
	URL        string
	StatusCode int
	Body       []byte
}

// GeoSearchRequest asks for place-name completions within one country.
type GeoSearchRequest struct {
	Name    string
	Count   int
	Country string
}

// ForecastRequest asks for current conditions and an optional daily series.
type ForecastRequest struct {
	Latitude  float64
	Longitude float64
	Days      int // 0 disables the daily series
}

// GeoSearcher abstracts a geocoding backend (e.g. Open-Meteo geocoding).
type GeoSearcher interface {
	Search(ctx context.Context, req GeoSearchRequest) ([]GeoCandidate, Exchange, error)
}

// ForecastFetcher abstracts a forecast backend (e.g. Open-Meteo forecast).
type ForecastFetcher interface {
	Forecast(ctx context.Context, req ForecastRequest) (Forecast, Exchange, error)
}

// RecordStore is the contract of the bounded result list.
type RecordStore interface {
	Insert(record WeatherRecord)
	Remove(id string)
	List() []WeatherRecord
	Len() int
}

// Trace accumulates diagnostic lines for one resolution in occurrence order.
// It is owned by a single call and never shared.
type Trace struct {
	lines []string
}

// Request appends the request URL of an exchange.
func (t *Trace) Request(ex Exchange) {
	if ex.URL != "" {
		t.lines = append(t.lines, ex.URL)
	}
}

// Response appends the serialized response of an exchange, if one arrived.
func (t *Trace) Response(ex Exchange) {
	if ex.StatusCode == 0 {
		return
	}
	body := bytes.TrimSpace(ex.Body)
	if len(body) == 0 {
		t.lines = append(t.lines, "HTTP "+strconv.Itoa(ex.StatusCode)+" (empty body)")
		return
	}
	t.lines = append(t.lines, string(body))
}

// Record appends both halves of an exchange.
func (t *Trace) Record(ex Exchange) {
	t.Request(ex)
	t.Response(ex)
}

// Lines returns a copy of the accumulated log.
func (t *Trace) Lines() []string {
	return append([]string(nil), t.lines...)
}
