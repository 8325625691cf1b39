package mcp

import "crm-kpi/internal/filters"

// ResponseEnvelope is the common shape of every tool result.
type ResponseEnvelope struct {
	Data     any                    `json:"data"`
	Filters  *filters.FilterContext `json:"filters,omitempty"`
	Summary  *filters.Summary       `json:"summary,omitempty"`
	Charts   []string               `json:"charts,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
	Guidance []string               `json:"guidance,omitempty"`
}

// WrapResponse attaches the filter state that produced data, plus optional caveats and next steps.
func WrapResponse(data any, ctx *filters.FilterContext, warnings []string, guidance []string) ResponseEnvelope {
	env := ResponseEnvelope{
		Data:     data,
		Warnings: warnings,
		Guidance: guidance,
	}
	if ctx != nil {
		c := ctx.Canonical()
		summary := filters.ComputeSummary(c)
		env.Filters = &c
		env.Summary = &summary
	}
	return env
}
