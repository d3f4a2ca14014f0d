package weather

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrLocationNotFound is returned when geocoding yields no usable candidate.
	ErrLocationNotFound = errors.New("location not found")

	// ErrRegionMismatch is returned when candidates exist but none is in the
	// requested region. It matches ErrLocationNotFound under errors.Is.
	ErrRegionMismatch = fmt.Errorf("%w: no candidate in requested region", ErrLocationNotFound)

	// ErrWeatherUnavailable is returned when the forecast provider answered
	// with a non-success status or an unusable body.
	ErrWeatherUnavailable = errors.New("weather data unavailable")

	// ErrNetwork is returned when no response could be obtained at all.
	ErrNetwork = errors.New("network error")

	// ErrCancelled marks work that was superseded. It is never shown to users.
	ErrCancelled = errors.New("request cancelled")
)

// UserMessage maps a pipeline error to the single message shown to a user.
// Cancellation yields the empty string.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsCancelled(err):
		return ""
	case errors.Is(err, ErrLocationNotFound):
		return "Location not found"
	case errors.Is(err, ErrWeatherUnavailable):
		return "Weather data unavailable"
	case errors.Is(err, ErrNetwork):
		return "Network error, please try again"
	default:
		return "Something went wrong"
	}
}

// IsCancelled reports whether err stems from a superseded or cancelled request.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
