package filters

import (
	"fmt"
	"strings"
)

// Summary holds the derived flags shown next to the filter bar.
type Summary struct {
	HasActiveFilters         bool   `json:"hasActiveFilters"`
	HasActiveFocus           bool   `json:"hasActiveFocus"`
	HasActiveQuickView       bool   `json:"hasActiveQuickView"`
	HasAccountManagerFilters bool   `json:"hasAccountManagerFilters"`
	FilterSummary            string `json:"filterSummary"`
}

const summarySeparator = " • "

var quickViewLabels = map[QuickView]string{
	QuickViewActionItemsDue: "Action Items Due",
	QuickViewPipelineMovers: "Pipeline Movers",
	QuickViewRecentWins:     "Recent Wins",
	QuickViewNeedsAttention: "Needs Attention",
}

// Label returns the display name of a preset.
func (q QuickView) Label() string {
	if l, ok := quickViewLabels[q]; ok {
		return l
	}
	return "None"
}

// ComputeSummary derives the summary flags and text for a context.
func ComputeSummary(ctx FilterContext) Summary {
	c := ctx.Canonical()

	s := Summary{
		HasActiveFocus:           c.Focus != FocusAllActivity,
		HasActiveQuickView:       c.QuickView != QuickViewNone,
		HasAccountManagerFilters: len(c.AccountManagers) > 0,
	}
	s.HasActiveFilters = c.Principal.Kind() != PrincipalAll ||
		c.Product != AllValue ||
		s.HasActiveFocus ||
		s.HasActiveQuickView ||
		s.HasAccountManagerFilters

	var parts []string
	if s.HasActiveQuickView {
		parts = append(parts, c.QuickView.Label())
	}
	if s.HasAccountManagerFilters {
		parts = append(parts, plural(len(c.AccountManagers), "account manager"))
	}
	if c.Principal.Kind() == PrincipalMultiple {
		parts = append(parts, plural(len(c.Principal.IDs()), "principal"))
	}

	switch {
	case len(parts) > 0:
		s.FilterSummary = strings.Join(parts, summarySeparator)
	case s.HasActiveFilters:
		s.FilterSummary = "Custom view"
	default:
		s.FilterSummary = "All data"
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
