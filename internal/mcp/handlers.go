package mcp

import (
	"context"

	"crm-kpi/internal/filters"
	"crm-kpi/internal/visuals"
)

func (s *Server) handleComputeWeeklyKPIs(ctx context.Context, in ComputeInput) (any, error) {
	f, err := in.Apply(s.session.Current())
	if err != nil {
		return nil, err
	}

	snap, err := s.engine.Run(ctx, f, s.source)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if snap.KPIs.OpportunitiesMoved.Approximated {
		warnings = append(warnings, "Opportunities moved is approximated from updatedAt because no stage-change log is available; it may overcount records edited for unrelated reasons.")
	}
	if snap.KPIs.PipelineValue.Trend.Estimated {
		warnings = append(warnings, "Pipeline trend is unavailable: some open opportunities have no creation date, so the previous-period pipeline cannot be reconstructed.")
	}

	env := WrapResponse(snap.KPIs, &snap.Filters, warnings, nil)
	if s.cfg.EnableMermaidCharts {
		for _, c := range visuals.Charts(snap.KPIs) {
			env.Charts = append(env.Charts, visuals.Fence(c))
		}
	}
	return env, nil
}

func (s *Server) handleApplyQuickView(_ context.Context, in ApplyQuickViewInput) (any, error) {
	ctx, err := s.session.ApplyQuickView(in.Preset)
	if err != nil {
		return nil, err
	}
	return WrapResponse(ctx.QuickView, &ctx, nil, []string{"Call compute_weekly_kpis to refresh the KPIs for the new filters."}), nil
}

func (s *Server) handleSetFilter(_ context.Context, in SetFilterInput) (any, error) {
	ctx, err := s.session.SetField(in.Key, in.Values...)
	if err != nil {
		return nil, err
	}
	return WrapResponse(in.Key, &ctx, nil, []string{"Call compute_weekly_kpis to refresh the KPIs for the new filters."}), nil
}

func (s *Server) handleGetFilterSummary(_ context.Context, _ EmptyInput) (any, error) {
	ctx := s.session.Current()
	return WrapResponse(filters.ComputeSummary(ctx), &ctx, nil, nil), nil
}

func (s *Server) handleResetFilters(_ context.Context, _ EmptyInput) (any, error) {
	ctx, err := s.session.Reset()
	if err != nil {
		return nil, err
	}
	return WrapResponse("reset", &ctx, nil, nil), nil
}

type quickViewInfo struct {
	Preset filters.QuickView `json:"preset"`
	Label  string            `json:"label"`
	Focus  filters.Focus     `json:"focus"`
}

func (s *Server) handleListQuickViews(_ context.Context, _ EmptyInput) (any, error) {
	out := make([]quickViewInfo, 0, len(filters.QuickViews))
	for _, q := range filters.QuickViews {
		focus, _ := filters.PresetFocus(q)
		out = append(out, quickViewInfo{Preset: q, Label: q.Label(), Focus: focus})
	}
	return WrapResponse(out, nil, nil, nil), nil
}
