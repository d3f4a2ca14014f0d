package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weatherboard/internal/weather"
	"github.com/sony/gobreaker"
)

// GeocodingProvider implements weather.GeoSearcher using the Open-Meteo
// geocoding API.
type GeocodingProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	observer RequestObserver
	logger   *slog.Logger
}

// GeocodingOption customises a GeocodingProvider.
type GeocodingOption func(*GeocodingProvider)

// WithGeocodingURL overrides the search endpoint.
func WithGeocodingURL(u string) GeocodingOption {
	return func(p *GeocodingProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithGeocodingBackoff overrides retry behaviour.
func WithGeocodingBackoff(b BackoffConfig) GeocodingOption {
	return func(p *GeocodingProvider) { p.httpCfg.Backoff = b }
}

// WithGeocodingObserver sets the request metrics sink.
func WithGeocodingObserver(o RequestObserver) GeocodingOption {
	return func(p *GeocodingProvider) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithGeocodingLogger sets the logger.
func WithGeocodingLogger(l *slog.Logger) GeocodingOption {
	return func(p *GeocodingProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewGeocodingProvider creates a geocoding client.
func NewGeocodingProvider(client *http.Client, opts ...GeocodingOption) *GeocodingProvider {
	p := &GeocodingProvider{
		name:    "openmeteo-geocoding",
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit:  newBreaker("openmeteo-geocoding"),
		observer: nopRequestObserver{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *GeocodingProvider) Name() string {
	return p.name
}

// SearchURL builds the request URL for req.
func (p *GeocodingProvider) SearchURL(req weather.GeoSearchRequest) string {
	values := url.Values{}
	values.Set("name", req.Name)
	if req.Count > 0 {
		values.Set("count", strconv.Itoa(req.Count))
	}
	if req.Country != "" {
		values.Set("countryCode", strings.ToUpper(req.Country))
	}
	values.Set("language", "en")
	values.Set("format", "json")
	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}

// geocodingPayload is the Open-Meteo search response. Results is absent
// when nothing matched.
type geocodingPayload struct {
	Results []struct {
		Name        string  `json:"name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		FeatureCode string  `json:"feature_code"`
		CountryCode string  `json:"country_code"`
		Country     string  `json:"country"`
		Admin1      string  `json:"admin1"`
	} `json:"results"`

	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Search returns candidates in provider order. Candidates are not filtered
// here; callers apply their own country and feature rules.
func (p *GeocodingProvider) Search(ctx context.Context, req weather.GeoSearchRequest) ([]weather.GeoCandidate, weather.Exchange, error) {
	u := p.SearchURL(req)
	ex := weather.Exchange{URL: u}

	start := time.Now()
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, u, nil)
	})
	ex.StatusCode = resp.StatusCode
	ex.Body = resp.Body

	if resp.StatusCode == 0 {
		p.observer.ObserveRequest(p.name, requestOutcome(ctx, err), time.Since(start))
		return nil, ex, transportError(ctx, "geocoding", err)
	}
	if ctx.Err() != nil {
		p.observer.ObserveRequest(p.name, "cancelled", time.Since(start))
		return nil, ex, fmt.Errorf("geocoding request: %w", ctx.Err())
	}

	var payload geocodingPayload
	decodeErr := json.Unmarshal(resp.Body, &payload)

	if err != nil || !resp.ok() {
		p.observer.ObserveRequest(p.name, "error", time.Since(start))
		p.logger.Warn("geocoding request failed", "status", resp.StatusCode, "reason", payload.Reason)
		return nil, ex, fmt.Errorf("%w: geocoding status %d: %s", weather.ErrLocationNotFound, resp.StatusCode, payload.Reason)
	}
	if decodeErr != nil {
		p.observer.ObserveRequest(p.name, "decode_error", time.Since(start))
		return nil, ex, fmt.Errorf("%w: decode geocoding response: %v", weather.ErrLocationNotFound, decodeErr)
	}

	candidates := make([]weather.GeoCandidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		candidates = append(candidates, weather.GeoCandidate{
			Name:        r.Name,
			Region:      r.Admin1,
			Country:     r.Country,
			CountryCode: r.CountryCode,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			FeatureCode: r.FeatureCode,
		})
	}

	outcome := "success"
	if len(candidates) == 0 {
		outcome = "empty"
	}
	p.observer.ObserveRequest(p.name, outcome, time.Since(start))
	return candidates, ex, nil
}
