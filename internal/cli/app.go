package cli

import (
	"log/slog"
	"net/http"

	"github.com/i474232898/weatherboard/internal/autocomplete"
	"github.com/i474232898/weatherboard/internal/config"
	"github.com/i474232898/weatherboard/internal/logging"
	"github.com/i474232898/weatherboard/internal/observability"
	"github.com/i474232898/weatherboard/internal/store"
	"github.com/i474232898/weatherboard/internal/weather"
	"github.com/i474232898/weatherboard/internal/weather/providers"
)

// app is the wired pipeline shared by all commands.
type app struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	metrics *observability.Metrics
	geo     *providers.GeocodingProvider
	store   *store.ResultList
	service *weather.Service
}

// buildApp loads configuration and wires providers, store and service.
// Metrics are registered only when withMetrics is set.
func buildApp(withMetrics bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}
	if withMetrics {
		a.metrics = observability.NewMetrics()
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	backoff := providers.BackoffConfig{
		MaxRetries:      cfg.RetryMax,
		InitialInterval: cfg.RetryInitial,
		MaxInterval:     cfg.RetryMaxInterval,
	}

	geoOpts := []providers.GeocodingOption{
		providers.WithGeocodingURL(cfg.GeocodingURL),
		providers.WithGeocodingBackoff(backoff),
		providers.WithGeocodingLogger(logger),
	}
	forecastOpts := []providers.OpenMeteoOption{
		providers.WithForecastURL(cfg.ForecastURL),
		providers.WithForecastBackoff(backoff),
		providers.WithForecastLogger(logger),
	}
	serviceOpts := []weather.ServiceOption{weather.WithLogger(logger)}
	if a.metrics != nil {
		geoOpts = append(geoOpts, providers.WithGeocodingObserver(a.metrics))
		forecastOpts = append(forecastOpts, providers.WithForecastObserver(a.metrics))
		serviceOpts = append(serviceOpts, weather.WithObserver(a.metrics))
	}

	a.geo = providers.NewGeocodingProvider(httpClient, geoOpts...)
	forecast := providers.NewOpenMeteoProvider(httpClient, forecastOpts...)

	a.store = store.NewResultList(cfg.MaxRecords)
	a.service = weather.NewService(a.store, a.geo, forecast, weather.Options{
		MaxResults:         cfg.MaxRecords,
		RequireRegionMatch: cfg.RequireRegionMatch,
		DailySeriesLength:  cfg.DailySeriesLength,
		TargetCountry:      cfg.TargetCountry,
		GeocodeCount:       cfg.GeocodeCount,
	}, serviceOpts...)

	return a, nil
}

func (a *app) autocompleteOptions() autocomplete.Options {
	opts := autocomplete.Options{
		Country:   a.cfg.TargetCountry,
		Count:     a.cfg.GeocodeCount,
		Delay:     a.cfg.AutocompleteDebounce,
		MinLength: a.cfg.AutocompleteMinLength,
		Logger:    a.logger,
	}
	if a.metrics != nil {
		opts.Observer = a.metrics
	}
	return opts
}
