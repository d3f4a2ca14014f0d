package httpapi

import (
	"fmt"

	"github.com/i474232898/weatherboard/internal/weather"
)

type units string

const (
	unitsMetric   units = "metric"
	unitsImperial units = "imperial"
)

// recordView is a stored record plus its display form. Stored values stay
// in Celsius; conversion happens only here.
type recordView struct {
	weather.WeatherRecord
	Display displayView `json:"display"`
}

type displayView struct {
	Label        string      `json:"label"`
	Temperature  int         `json:"temperature"`
	Unit         string      `json:"unit"`
	TemperatureC int         `json:"temperatureC"`
	TemperatureF int         `json:"temperatureF"`
	Wind         string      `json:"wind"`
	Daily        []dailyView `json:"daily,omitempty"`
}

type dailyView struct {
	Date string `json:"date"`
	High int    `json:"high"`
	Low  int    `json:"low"`
}

func present(r weather.WeatherRecord, u units) recordView {
	convert := func(c float64) float64 { return c }
	unit := "°C"
	if u == unitsImperial {
		convert = weather.CelsiusToFahrenheit
		unit = "°F"
	}

	label := weather.GeoCandidate{Name: r.Name, Region: r.Region}.Label()
	d := displayView{
		Label:        label,
		Temperature:  weather.Round(convert(r.TemperatureC)),
		Unit:         unit,
		TemperatureC: weather.Round(r.TemperatureC),
		TemperatureF: weather.Round(weather.CelsiusToFahrenheit(r.TemperatureC)),
		Wind:         fmt.Sprintf("%.1f m/s", r.WindSpeedMS),
	}
	if r.Daily != nil {
		for i := 0; i < r.Daily.Len(); i++ {
			d.Daily = append(d.Daily, dailyView{
				Date: r.Daily.Dates[i],
				High: weather.Round(convert(r.Daily.Highs[i])),
				Low:  weather.Round(convert(r.Daily.Lows[i])),
			})
		}
	}
	return recordView{WeatherRecord: r, Display: d}
}

// presentAll renders records newest first unless oldest is requested.
func presentAll(records []weather.WeatherRecord, order string, u units) []recordView {
	out := make([]recordView, 0, len(records))
	for i := range records {
		idx := i
		if order != "oldest" {
			idx = len(records) - 1 - i
		}
		out = append(out, present(records[idx], u))
	}
	return out
}
