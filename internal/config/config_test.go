package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.GeocodingURL)
	assert.Empty(t, cfg.ForecastURL)
	assert.Equal(t, "US", cfg.TargetCountry)
	assert.Equal(t, 5, cfg.GeocodeCount)
	assert.Equal(t, 5, cfg.MaxRecords)
	assert.True(t, cfg.RequireRegionMatch)
	assert.Equal(t, 7, cfg.DailySeriesLength)
	assert.Equal(t, 300*time.Millisecond, cfg.AutocompleteDebounce)
	assert.Equal(t, 1, cfg.AutocompleteMinLength)
	assert.Equal(t, time.Second, cfg.ChessTick)
	assert.Equal(t, 3, cfg.RetryMax)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryInitial)
	assert.Equal(t, 5*time.Second, cfg.RetryMaxInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("GEOCODING_URL", "http://localhost:1234/v1/search")
	t.Setenv("FORECAST_URL", "http://localhost:1234/v1/forecast")
	t.Setenv("TARGET_COUNTRY", "ca")
	t.Setenv("MAX_RECORDS", "10")
	t.Setenv("REQUIRE_REGION_MATCH", "false")
	t.Setenv("DAILY_SERIES_LENGTH", "0")
	t.Setenv("AUTOCOMPLETE_DEBOUNCE", "150ms")
	t.Setenv("AUTOCOMPLETE_MIN_LENGTH", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://localhost:1234/v1/search", cfg.GeocodingURL)
	assert.Equal(t, "CA", cfg.TargetCountry)
	assert.Equal(t, 10, cfg.MaxRecords)
	assert.False(t, cfg.RequireRegionMatch)
	assert.Equal(t, 0, cfg.DailySeriesLength)
	assert.Equal(t, 150*time.Millisecond, cfg.AutocompleteDebounce)
	assert.Equal(t, 3, cfg.AutocompleteMinLength)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero records", "MAX_RECORDS", "0"},
		{"series too long", "DAILY_SERIES_LENGTH", "17"},
		{"country not two letters", "TARGET_COUNTRY", "USA"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"bad geocoding url", "GEOCODING_URL", "not a url"},
		{"sub-second chess tick", "CHESS_TICK", "10ms"},
		{"retry interval below initial", "RETRY_MAX_INTERVAL", "100ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoad_UnparsableNumbersFallBack(t *testing.T) {
	t.Setenv("GEOCODE_COUNT", "many")
	t.Setenv("REQUIRE_REGION_MATCH", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.GeocodeCount)
	assert.True(t, cfg.RequireRegionMatch)
}
