package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weatherboard/internal/autocomplete"
)

func init() {
	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Print place suggestions for a partial name",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSuggest,
	}
	cmd.Flags().Duration("wait", 10*time.Second, "Give up after this long")

	RootCmd.AddCommand(cmd)
}

func runSuggest(cmd *cobra.Command, args []string) {
	wait, _ := cmd.Flags().GetDuration("wait")

	a, err := buildApp(false)
	if err != nil {
		exitErr("load config", err)
	}

	ctrl := autocomplete.NewController(a.geo, a.service, a.autocompleteOptions())
	defer ctrl.Close()

	ctrl.QueryChanged(strings.Join(args, " "))
	state, err := waitSettled(ctrl, wait)
	if err != nil {
		exitErr("suggest", err)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(state.Items, "", "  ")
		fmt.Println(string(b))
		return
	}
	for _, s := range state.Items {
		fmt.Println(s.Display)
	}
}

// waitSettled polls until no debounce or lookup is outstanding.
func waitSettled(ctrl *autocomplete.Controller, timeout time.Duration) (autocomplete.State, error) {
	deadline := time.Now().Add(timeout)
	for {
		st := ctrl.Suggestions()
		if !st.Pending {
			return st, nil
		}
		if time.Now().After(deadline) {
			return st, errors.New("timed out waiting for suggestions")
		}
		time.Sleep(25 * time.Millisecond)
	}
}
