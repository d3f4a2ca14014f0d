package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn warning error"`
	// LogFormat selects the slog handler.
	LogFormat string `validate:"oneof=json text"`

	HTTPTimeout     time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// Provider endpoints; empty means the Open-Meteo defaults.
	GeocodingURL string `validate:"omitempty,url"`
	ForecastURL  string `validate:"omitempty,url"`

	// Resolution pipeline.
	TargetCountry      string `validate:"len=2,alpha"`
	GeocodeCount       int    `validate:"min=1,max=100"`
	MaxRecords         int    `validate:"min=1"`
	RequireRegionMatch bool
	DailySeriesLength  int `validate:"min=0,max=16"`

	// Autocomplete.
	AutocompleteDebounce  time.Duration `validate:"gte=0"`
	AutocompleteMinLength int           `validate:"min=1"`

	// Chess clock tick.
	ChessTick time.Duration `validate:"gte=1s"`

	// Retry behaviour for provider calls.
	RetryMax         int           `validate:"min=0,max=10"`
	RetryInitial     time.Duration `validate:"gt=0"`
	RetryMaxInterval time.Duration `validate:"gtefield=RetryInitial"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{
		Port:                  getenvDefault("PORT", "8080"),
		LogLevel:              strings.ToLower(getenvDefault("LOG_LEVEL", "info")),
		LogFormat:             strings.ToLower(getenvDefault("LOG_FORMAT", "json")),
		GeocodingURL:          os.Getenv("GEOCODING_URL"),
		ForecastURL:           os.Getenv("FORECAST_URL"),
		TargetCountry:         strings.ToUpper(getenvDefault("TARGET_COUNTRY", "US")),
		GeocodeCount:          getenvInt("GEOCODE_COUNT", 5),
		MaxRecords:            getenvInt("MAX_RECORDS", 5),
		RequireRegionMatch:    getenvBool("REQUIRE_REGION_MATCH", true),
		DailySeriesLength:     getenvInt("DAILY_SERIES_LENGTH", 7),
		AutocompleteMinLength: getenvInt("AUTOCOMPLETE_MIN_LENGTH", 1),
		RetryMax:              getenvInt("RETRY_MAX", 3),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
		{"AUTOCOMPLETE_DEBOUNCE", "300ms", &cfg.AutocompleteDebounce},
		{"CHESS_TICK", "1s", &cfg.ChessTick},
		{"RETRY_INITIAL", "500ms", &cfg.RetryInitial},
		{"RETRY_MAX_INTERVAL", "5s", &cfg.RetryMaxInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return ":" + c.Port
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
