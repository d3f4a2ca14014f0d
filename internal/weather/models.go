package weather

import (
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionFog     Condition = "fog"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// PlaceQuery is the raw text a user submitted, optionally "<city>, <region>".
type PlaceQuery string

// Parse splits the query on the first comma. Both sides are trimmed; an
// empty region after the comma counts as no region at all.
func (q PlaceQuery) Parse() (city, region string, hasRegion bool) {
	raw := string(q)
	idx := strings.Index(raw, ",")
	if idx < 0 {
		return strings.TrimSpace(raw), "", false
	}
	city = strings.TrimSpace(raw[:idx])
	region = strings.TrimSpace(raw[idx+1:])
	return city, region, region != ""
}

// FeatureAdminRegion marks a candidate that is a first-level administrative
// region (a U.S. state) rather than a populated place.
const FeatureAdminRegion = "ADM1"

// GeoCandidate is one geocoding match, in provider order.
type GeoCandidate struct {
	Name        string  `json:"name"`
	Region      string  `json:"region,omitempty"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	FeatureCode string  `json:"featureCode,omitempty"`
}

// Label is how a candidate is shown to a user: "Springfield, Illinois".
func (c GeoCandidate) Label() string {
	if c.Region == "" {
		return c.Name
	}
	return c.Name + ", " + c.Region
}

// ResolvedLocation is the single candidate chosen by disambiguation.
type ResolvedLocation GeoCandidate

// DailySeries holds parallel arrays of local dates and daily extremes in Celsius.
type DailySeries struct {
	Dates []string  `json:"dates"`
	Highs []float64 `json:"highsC"`
	Lows  []float64 `json:"lowsC"`
}

// Len returns the number of days present in all three arrays.
func (d DailySeries) Len() int {
	n := len(d.Dates)
	if len(d.Highs) < n {
		n = len(d.Highs)
	}
	if len(d.Lows) < n {
		n = len(d.Lows)
	}
	return n
}

// Truncate returns a copy limited to the first n days.
func (d DailySeries) Truncate(n int) DailySeries {
	if l := d.Len(); n > l {
		n = l
	}
	return DailySeries{
		Dates: append([]string(nil), d.Dates[:n]...),
		Highs: append([]float64(nil), d.Highs[:n]...),
		Lows:  append([]float64(nil), d.Lows[:n]...),
	}
}

// Forecast is the normalized provider answer for one coordinate.
// Values stay in provider units: Celsius and meters per second.
type Forecast struct {
	TemperatureC float64
	WindSpeedMS  float64
	Condition    Condition
	Timezone     string
	Daily        *DailySeries
}

// WeatherRecord is an immutable resolution result owned by the record store.
type WeatherRecord struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Region       string       `json:"region,omitempty"`
	Country      string       `json:"country"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	TemperatureC float64      `json:"temperatureC"`
	WindSpeedMS  float64      `json:"windSpeedMs"`
	Condition    Condition    `json:"condition"`
	Timezone     string       `json:"timezone,omitempty"`
	Daily        *DailySeries `json:"daily,omitempty"`
	Log          []string     `json:"log"`
	CreatedAt    time.Time    `json:"createdAt"` // always UTC
}

// Suggestion is one selectable autocomplete entry.
type Suggestion struct {
	Display string `json:"display"`
	Value   string `json:"value"`
}

// SuggestionFor derives the suggestion shown for a geocoding candidate.
func SuggestionFor(c GeoCandidate) Suggestion {
	label := c.Label()
	return Suggestion{Display: label, Value: label}
}
