package commands

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"crm-kpi/internal/mcp"
	"crm-kpi/internal/stats"
)

var overrides mcp.ComputeInput

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Compute the weekly KPIs once and print them as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := computeSnapshot(cmd)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(mcp.WrapResponse(snap.KPIs, &snap.Filters, nil, nil))
	},
}

// computeSnapshot runs the engine on the session filters with the command-line overrides layered on top.
// Overrides are not saved to the session.
func computeSnapshot(cmd *cobra.Command) (stats.Snapshot, error) {
	f, err := overrides.Apply(session.Current())
	if err != nil {
		return stats.Snapshot{}, err
	}
	return engine.Run(cmd.Context(), f, source)
}

func addOverrideFlags(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&overrides.Principal, "principal", nil, "principal id(s), or all")
	fl.StringVar(&overrides.Product, "product", "", "product id, or all")
	fl.StringSliceVar(&overrides.AccountManagers, "account-manager", nil, "account manager id(s), or all")
	fl.StringVar(&overrides.TimeWindow, "window", "", "time window, e.g. current-week or last-4-weeks")
	fl.StringVar(&overrides.From, "from", "", "explicit start date (YYYY-MM-DD)")
	fl.StringVar(&overrides.To, "to", "", "explicit end date (YYYY-MM-DD)")
	fl.StringVar(&overrides.QuickView, "quick-view", "", "quick view preset")
}

func init() {
	addOverrideFlags(kpiCmd)
	rootCmd.AddCommand(kpiCmd)
}
