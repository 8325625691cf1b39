package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"crm-kpi/internal/config"
	"crm-kpi/internal/crm"
	"crm-kpi/internal/filters"
	"crm-kpi/internal/logging"
	"crm-kpi/internal/mcp"
	"crm-kpi/internal/stats"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	source  *crm.FileSource
	engine  *stats.Engine
	session *filters.Session
)

const sessionKey = "filters"

var rootCmd = &cobra.Command{
	Use:   "crm-kpi",
	Short: "CRM-KPI is an MCP server for weekly CRM pipeline KPIs",
	Long: `An MCP Server that computes weekly CRM KPIs (pipeline movement, interactions,
action items, pipeline value, overdue items and completed tasks) with period-over-period
trends, scoped by a persistent filter session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		source = crm.NewFileSource(cfg.DatasetPath, cfg.Location)
		engine = stats.NewEngine(stats.NewResolver(cfg.Location, cfg.WeekStart))
		session, err = filters.NewSession(filters.NewFileStore(cfg.CacheDir), sessionKey)
		if err != nil {
			return fmt.Errorf("failed to open filter session: %w", err)
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("timezone", cfg.Location.String()).
			Str("weekStart", cfg.WeekStart.String()).
			Msg("CRM-KPI starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(cfg, engine, source, session)
		return server.Start(cmd.Context(), Version)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
