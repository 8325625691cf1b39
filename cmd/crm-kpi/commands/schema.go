package commands

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"crm-kpi/internal/crm"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the dataset export",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := crm.Schema()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
