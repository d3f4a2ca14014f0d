package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weatherboard/internal/weather"
)

func init() {
	cmd := &cobra.Command{
		Use:   "lookup <city>[, <region>]",
		Short: "Resolve a place and print its current weather",
		Args:  cobra.MinimumNArgs(1),
		Run:   runLookup,
	}
	cmd.Flags().StringP("units", "u", "metric", "Temperature units: metric or imperial")
	cmd.Flags().Bool("trace", false, "Print the request/response log")

	RootCmd.AddCommand(cmd)
}

func runLookup(cmd *cobra.Command, args []string) {
	units, _ := cmd.Flags().GetString("units")
	trace, _ := cmd.Flags().GetBool("trace")

	a, err := buildApp(false)
	if err != nil {
		exitErr("load config", err)
	}

	query := weather.PlaceQuery(strings.Join(args, " "))
	ctx := cmd.Context()
	record, err := a.service.FetchWeather(ctx, query)
	if err != nil {
		fmt.Fprintln(os.Stderr, weather.UserMessage(err))
		a.logger.Debug("lookup failed", "error", err)
		os.Exit(1)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(record, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Print(formatRecord(record, units == "imperial", trace))
}

// formatRecord renders a record for the terminal.
func formatRecord(r weather.WeatherRecord, imperial, trace bool) string {
	var b strings.Builder

	label := weather.GeoCandidate{Name: r.Name, Region: r.Region}.Label()
	fmt.Fprintf(&b, "%s (%s)\n", label, r.Country)
	fmt.Fprintf(&b, "  temperature  %s\n", temperature(r.TemperatureC, imperial))
	fmt.Fprintf(&b, "  wind         %.1f m/s\n", r.WindSpeedMS)
	fmt.Fprintf(&b, "  condition    %s\n", r.Condition)
	if r.Daily != nil {
		for i := 0; i < r.Daily.Len(); i++ {
			fmt.Fprintf(&b, "  %s  %s / %s\n", r.Daily.Dates[i],
				temperature(r.Daily.Highs[i], imperial), temperature(r.Daily.Lows[i], imperial))
		}
	}
	if trace {
		b.WriteString("log:\n")
		for _, line := range r.Log {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}

func temperature(c float64, imperial bool) string {
	if imperial {
		return fmt.Sprintf("%d°F", weather.Round(weather.CelsiusToFahrenheit(c)))
	}
	return fmt.Sprintf("%d°C", weather.Round(c))
}
