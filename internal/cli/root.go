// Package cli implements the weatherboard commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var formatFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "weatherboard",
	Short: "Place search and weather lookup for U.S. locations",
	Long:  "Resolves place names to a single location, fetches current and daily weather from Open-Meteo and keeps a bounded list of results. Serves the same pipeline over HTTP.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
