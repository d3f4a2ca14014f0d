package main

import (
	"os"

	"github.com/i474232898/weatherboard/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
