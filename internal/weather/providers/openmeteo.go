package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weatherboard/internal/weather"
	"github.com/sony/gobreaker"
)

// dailyMetrics is the fixed list of daily values requested from the provider.
const dailyMetrics = "temperature_2m_max,temperature_2m_min"

// maxForecastDays is the provider's upper bound for forecast_days.
const maxForecastDays = 16

// RequestObserver records outbound provider calls; observability.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(provider, outcome string, d time.Duration)
}

type nopRequestObserver struct{}

func (nopRequestObserver) ObserveRequest(string, string, time.Duration) {}

// OpenMeteoProvider implements weather.ForecastFetcher for the Open-Meteo forecast API.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	observer RequestObserver
	logger   *slog.Logger
}

// OpenMeteoOption customises an OpenMeteoProvider.
type OpenMeteoOption func(*OpenMeteoProvider)

// WithForecastURL overrides the forecast endpoint.
func WithForecastURL(u string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithForecastBackoff overrides retry behaviour.
func WithForecastBackoff(b BackoffConfig) OpenMeteoOption {
	return func(p *OpenMeteoProvider) { p.httpCfg.Backoff = b }
}

// WithForecastObserver sets the request metrics sink.
func WithForecastObserver(o RequestObserver) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithForecastLogger sets the logger.
func WithForecastLogger(l *slog.Logger) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewOpenMeteoProvider(client *http.Client, opts ...OpenMeteoOption) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit:  newBreaker("openmeteo"),
		observer: nopRequestObserver{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// ForecastURL builds the request URL for req.
func (p *OpenMeteoProvider) ForecastURL(req weather.ForecastRequest) string {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	values.Set("current_weather", "true")
	// Keep wind in m/s; the default unit is km/h.
	values.Set("wind_speed_unit", "ms")
	values.Set("timezone", "auto")
	if req.Days > 0 {
		days := req.Days
		if days > maxForecastDays {
			days = maxForecastDays
		}
		values.Set("daily", dailyMetrics)
		values.Set("forecast_days", strconv.Itoa(days))
	}
	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}

// forecastPayload is the subset of the Open-Meteo response we use.
type forecastPayload struct {
	Timezone       string `json:"timezone"`
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		Time        string  `json:"time"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily *struct {
		Time           []string  `json:"time"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`

	// Set on error responses.
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Forecast fetches current conditions and the daily series for a coordinate.
// The returned Exchange carries the raw body even when the provider reported
// a failure.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, req weather.ForecastRequest) (weather.Forecast, weather.Exchange, error) {
	u := p.ForecastURL(req)
	ex := weather.Exchange{URL: u}

	start := time.Now()
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, u, nil)
	})
	ex.StatusCode = resp.StatusCode
	ex.Body = resp.Body

	if resp.StatusCode == 0 {
		p.observer.ObserveRequest(p.name, requestOutcome(ctx, err), time.Since(start))
		return weather.Forecast{}, ex, transportError(ctx, "forecast", err)
	}

	// Parse before judging the status so failures still carry the provider's reason.
	var payload forecastPayload
	decodeErr := json.Unmarshal(resp.Body, &payload)

	if err != nil || !resp.ok() {
		p.observer.ObserveRequest(p.name, "unavailable", time.Since(start))
		reason := payload.Reason
		if reason == "" && err != nil {
			reason = err.Error()
		}
		p.logger.Warn("forecast request failed", "status", resp.StatusCode, "reason", reason)
		return weather.Forecast{}, ex, fmt.Errorf("%w: status %d: %s", weather.ErrWeatherUnavailable, resp.StatusCode, reason)
	}
	if decodeErr != nil {
		p.observer.ObserveRequest(p.name, "decode_error", time.Since(start))
		return weather.Forecast{}, ex, fmt.Errorf("%w: decode forecast response: %v", weather.ErrWeatherUnavailable, decodeErr)
	}
	if payload.CurrentWeather == nil {
		p.observer.ObserveRequest(p.name, "decode_error", time.Since(start))
		return weather.Forecast{}, ex, fmt.Errorf("%w: response has no current conditions", weather.ErrWeatherUnavailable)
	}
	p.observer.ObserveRequest(p.name, "success", time.Since(start))

	fc := weather.Forecast{
		TemperatureC: payload.CurrentWeather.Temperature,
		WindSpeedMS:  payload.CurrentWeather.WindSpeed,
		Condition:    mapOpenMeteoCondition(payload.CurrentWeather.WeatherCode),
		Timezone:     payload.Timezone,
	}
	if payload.Daily != nil && req.Days > 0 {
		daily := weather.DailySeries{
			Dates: payload.Daily.Time,
			Highs: payload.Daily.TemperatureMax,
			Lows:  payload.Daily.TemperatureMin,
		}
		daily = daily.Truncate(daily.Len())
		fc.Daily = &daily
	}
	return fc, ex, nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on Open-Meteo WMO weather codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionFog
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

// transportError classifies a failure that produced no response at all.
func transportError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s request: %w", op, ctx.Err())
	}
	return fmt.Errorf("%w: %s request: %v", weather.ErrNetwork, op, err)
}

func requestOutcome(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return "cancelled"
	}
	if err != nil {
		return "network_error"
	}
	return "success"
}
