package filters

import (
	"fmt"
	"strings"
)

// Focus narrows what the dashboard emphasises.
type Focus string

const (
	FocusAllActivity  Focus = "all_activity"
	FocusOverdue      Focus = "overdue"
	FocusHighPriority Focus = "high_priority"
	FocusMyTasks      Focus = "my_tasks"
	FocusTeamOverview Focus = "team_overview"
)

// Focuses lists every focus value in display order.
var Focuses = []Focus{FocusAllActivity, FocusOverdue, FocusHighPriority, FocusMyTasks, FocusTeamOverview}

// QuickView is a named preset that determines the focus while active.
type QuickView string

const (
	QuickViewNone           QuickView = "none"
	QuickViewActionItemsDue QuickView = "action_items_due"
	QuickViewPipelineMovers QuickView = "pipeline_movers"
	QuickViewRecentWins     QuickView = "recent_wins"
	QuickViewNeedsAttention QuickView = "needs_attention"
)

// TimeWindow is a symbolic date range selector.
type TimeWindow string

const (
	WindowCurrentWeek  TimeWindow = "current-week"
	WindowLastWeek     TimeWindow = "last-week"
	WindowLast2Weeks   TimeWindow = "last-2-weeks"
	WindowLast4Weeks   TimeWindow = "last-4-weeks"
	WindowLast8Weeks   TimeWindow = "last-8-weeks"
	WindowCurrentMonth TimeWindow = "current-month"
)

// TimeWindows lists every symbolic window.
var TimeWindows = []TimeWindow{WindowCurrentWeek, WindowLastWeek, WindowLast2Weeks, WindowLast4Weeks, WindowLast8Weeks, WindowCurrentMonth}

// Weeks returns how many whole calendar weeks a week-based window spans, or 0 otherwise.
func (w TimeWindow) Weeks() int {
	switch w {
	case WindowCurrentWeek, WindowLastWeek:
		return 1
	case WindowLast2Weeks:
		return 2
	case WindowLast4Weeks:
		return 4
	case WindowLast8Weeks:
		return 8
	}
	return 0
}

// normalize folds case and the hyphen/underscore/space spellings onto sep.
func normalize(s, sep string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", sep, "_", sep, " ", sep).Replace(s)
}

func ParseFocus(s string) (Focus, error) {
	f := Focus(normalize(s, "_"))
	if f == "" || f == AllValue {
		return FocusAllActivity, nil
	}
	for _, known := range Focuses {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown focus %q", ErrInvalidValue, s)
}

// ParseQuickView rejects unknown preset names with ErrInvalidPreset.
func ParseQuickView(s string) (QuickView, error) {
	q := QuickView(normalize(s, "_"))
	if q == "" || q == QuickViewNone {
		return QuickViewNone, nil
	}
	if _, ok := quickViewPresets[q]; ok {
		return q, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPreset, s)
}

func ParseTimeWindow(s string) (TimeWindow, error) {
	w := TimeWindow(normalize(s, "-"))
	if w == "" {
		return WindowCurrentWeek, nil
	}
	for _, known := range TimeWindows {
		if w == known {
			return w, nil
		}
	}
	return "", fmt.Errorf("%w: unknown time window %q", ErrInvalidValue, s)
}
