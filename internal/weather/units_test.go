package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCelsiusToFahrenheit(t *testing.T) {
	cases := map[float64]float64{
		0:   32,
		100: 212,
		-40: -40,
		37:  98.6,
	}
	for c, f := range cases {
		assert.InDelta(t, f, CelsiusToFahrenheit(c), 1e-9, "%v°C", c)
	}
}

func TestCelsiusToFahrenheit_IsPure(t *testing.T) {
	first := CelsiusToFahrenheit(21.5)
	_ = CelsiusToFahrenheit(-3)
	assert.Equal(t, first, CelsiusToFahrenheit(21.5))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 22, Round(21.5))
	assert.Equal(t, 21, Round(21.4))
	assert.Equal(t, -3, Round(-2.6))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Location not found", UserMessage(ErrRegionMismatch))
	assert.Equal(t, "Weather data unavailable", UserMessage(ErrWeatherUnavailable))
	assert.Equal(t, "Network error, please try again", UserMessage(ErrNetwork))
	assert.Empty(t, UserMessage(ErrCancelled))
	assert.Empty(t, UserMessage(nil))
}
