package mcp

import (
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"crm-kpi/internal/filters"
)

// ComputeInput carries one-off filter overrides; omitted fields fall back to the session filters.
type ComputeInput struct {
	Principal       []string `json:"principal,omitempty" jsonschema:"principal ids to scope to; use all for every principal"`
	Product         string   `json:"product,omitempty" jsonschema:"product id or all"`
	AccountManagers []string `json:"account_managers,omitempty" jsonschema:"account manager ids; use all to clear"`
	TimeWindow      string   `json:"time_window,omitempty" jsonschema:"symbolic window such as current-week or last-4-weeks"`
	From            string   `json:"from,omitempty" jsonschema:"explicit start date YYYY-MM-DD; requires to"`
	To              string   `json:"to,omitempty" jsonschema:"explicit end date YYYY-MM-DD; requires from"`
	QuickView       string   `json:"quick_view,omitempty" jsonschema:"quick view preset to apply"`
}

type ApplyQuickViewInput struct {
	Preset string `json:"preset" jsonschema:"preset name, or none to clear the quick view"`
}

type SetFilterInput struct {
	Key    string   `json:"key" jsonschema:"principal, product, account_managers, time_window, focus or quick_view"`
	Values []string `json:"values,omitempty" jsonschema:"new values; empty resets the field"`
}

type EmptyInput struct{}

func (s *Server) registerTools(srv *sdk.Server) {
	addTool(srv, "compute_weekly_kpis",
		"Compute the six weekly CRM KPIs (opportunities moved, interactions logged, action items due, pipeline value, overdue items, completed tasks) "+
			"with period-over-period trends. Uses the session filters unless overrides are given; overrides are not persisted. "+
			"Do not invent trend values: when a trend is flagged 'estimated', report it as unavailable.",
		s.handleComputeWeeklyKPIs)

	addTool(srv, "apply_quick_view",
		"Apply a quick view preset to the session filters. A preset fixes the focus until it is cleared with 'none'. "+
			"Presets: "+presetList()+".",
		s.handleApplyQuickView)

	addTool(srv, "set_filter",
		"Set one session filter field. Changing the principal resets the product to 'all'. "+
			"time_window takes either a window name ("+windowList()+") or a start and end date.",
		s.handleSetFilter)

	addTool(srv, "get_filter_summary",
		"Return the session filters with their derived flags and human-readable summary.",
		s.handleGetFilterSummary)

	addTool(srv, "reset_filters",
		"Reset the session filters to all data for the current week.",
		s.handleResetFilters)

	addTool(srv, "list_quick_views",
		"List the available quick view presets and the focus each one imposes.",
		s.handleListQuickViews)
}

func presetList() string {
	names := make([]string, 0, len(filters.QuickViews)+1)
	for _, q := range filters.QuickViews {
		names = append(names, string(q))
	}
	names = append(names, string(filters.QuickViewNone))
	return strings.Join(names, ", ")
}

func windowList() string {
	names := make([]string, len(filters.TimeWindows))
	for i, w := range filters.TimeWindows {
		names[i] = string(w)
	}
	return strings.Join(names, ", ")
}

// Apply layers the overrides onto ctx with the reducer, in a fixed order.
func (in ComputeInput) Apply(ctx filters.FilterContext) (filters.FilterContext, error) {
	var err error
	if len(in.Principal) > 0 {
		if ctx, err = filters.SetField(ctx, filters.KeyPrincipal, in.Principal...); err != nil {
			return ctx, err
		}
	}
	if in.Product != "" {
		if ctx, err = filters.SetField(ctx, filters.KeyProduct, in.Product); err != nil {
			return ctx, err
		}
	}
	if len(in.AccountManagers) > 0 {
		if ctx, err = filters.SetField(ctx, filters.KeyAccountManagers, in.AccountManagers...); err != nil {
			return ctx, err
		}
	}
	switch {
	case in.From != "" || in.To != "":
		if in.From == "" || in.To == "" {
			return ctx, fmt.Errorf("%w: from and to must be given together", filters.ErrInvalidValue)
		}
		if ctx, err = filters.SetField(ctx, filters.KeyTimeWindow, in.From, in.To); err != nil {
			return ctx, err
		}
	case in.TimeWindow != "":
		if ctx, err = filters.SetField(ctx, filters.KeyTimeWindow, in.TimeWindow); err != nil {
			return ctx, err
		}
	}
	if in.QuickView != "" {
		if ctx, err = filters.ApplyQuickView(ctx, in.QuickView); err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}
