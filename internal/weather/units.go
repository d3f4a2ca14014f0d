package weather

import "math"

// CelsiusToFahrenheit converts a temperature for display.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// Round rounds half away from zero, the way temperatures are displayed.
func Round(v float64) int {
	return int(math.Round(v))
}
