package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"crm-kpi/internal/visuals"
)

var (
	reportOut  string
	reportOpen bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the weekly KPIs as a standalone HTML dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := computeSnapshot(cmd)
		if err != nil {
			return err
		}

		out := reportOut
		if out == "" {
			out = filepath.Join(cfg.DataPath, "kpi-report.html")
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := visuals.RenderHTML(f, snap); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		log.Info().Str("path", out).Msg("Report written")
		fmt.Println(out)

		if reportOpen {
			return browser.OpenFile(out)
		}
		return nil
	},
}

func init() {
	addOverrideFlags(reportCmd)
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default <data dir>/kpi-report.html)")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "open the report in the default browser")
	rootCmd.AddCommand(reportCmd)
}
