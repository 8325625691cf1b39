package mcp

import (
	"context"
	"encoding/json"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"crm-kpi/internal/config"
	"crm-kpi/internal/crm"
	"crm-kpi/internal/filters"
	"crm-kpi/internal/stats"
)

// Server exposes KPI computation and the filter session as MCP tools.
type Server struct {
	cfg     *config.AppConfig
	engine  *stats.Engine
	source  crm.Source
	session *filters.Session
}

// NewServer creates a new MCP server.
func NewServer(cfg *config.AppConfig, engine *stats.Engine, source crm.Source, session *filters.Session) *Server {
	return &Server{
		cfg:     cfg,
		engine:  engine,
		source:  source,
		session: session,
	}
}

// Build registers every tool on a new protocol server.
func (s *Server) Build(version string) *sdk.Server {
	srv := sdk.NewServer(&sdk.Implementation{Name: "crm-kpi", Version: version}, nil)
	s.registerTools(srv)
	return srv
}

// Start serves the tools over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context, version string) error {
	log.Info().Str("dataset", s.cfg.DatasetPath).Msg("MCP Server starting Stdio loop")
	return s.Build(version).Run(ctx, &sdk.StdioTransport{})
}

// addTool registers a handler whose result is rendered as indented JSON text.
func addTool[In any](srv *sdk.Server, name, description string, handle func(context.Context, In) (any, error)) {
	sdk.AddTool(srv, &sdk.Tool{Name: name, Description: description},
		func(ctx context.Context, req *sdk.CallToolRequest, in In) (*sdk.CallToolResult, any, error) {
			log.Debug().Str("tool", name).Msg("Tool called")
			res, err := handle(ctx, in)
			if err != nil {
				log.Warn().Err(err).Str("tool", name).Msg("Tool call failed")
				return nil, nil, err
			}
			return &sdk.CallToolResult{
				Content: []sdk.Content{&sdk.TextContent{Text: formatResult(res)}},
			}, nil, nil
		})
}

func formatResult(data any) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(out)
}
