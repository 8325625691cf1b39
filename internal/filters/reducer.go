package filters

import (
	"fmt"
	"strings"
	"time"
)

// quickViewPresets maps each non-none preset to the focus it imposes.
var quickViewPresets = map[QuickView]Focus{
	QuickViewActionItemsDue: FocusMyTasks,
	QuickViewPipelineMovers: FocusHighPriority,
	QuickViewRecentWins:     FocusAllActivity,
	QuickViewNeedsAttention: FocusOverdue,
}

// QuickViews lists the presets in display order.
var QuickViews = []QuickView{QuickViewActionItemsDue, QuickViewPipelineMovers, QuickViewRecentWins, QuickViewNeedsAttention}

// PresetFocus returns the focus a preset imposes.
func PresetFocus(q QuickView) (Focus, bool) {
	f, ok := quickViewPresets[q]
	return f, ok
}

// Filter keys accepted by SetField.
const (
	KeyPrincipal       = "principal"
	KeyProduct         = "product"
	KeyAccountManagers = "account_managers"
	KeyTimeWindow      = "time_window"
	KeyFocus           = "focus"
	KeyQuickView       = "quick_view"
)

const dateLayout = "2006-01-02"

// ApplyQuickView applies a preset. "none" clears the quick view and leaves focus untouched.
func ApplyQuickView(ctx FilterContext, preset string) (FilterContext, error) {
	q, err := ParseQuickView(preset)
	if err != nil {
		return ctx, err
	}

	out := ctx.Canonical()
	if q == QuickViewNone {
		out.QuickView = QuickViewNone
		return out, nil
	}
	out.QuickView = q
	out.Focus = quickViewPresets[q]
	return out, nil
}

// SetField updates a single filter field and returns the new context.
//
// Multi-valued keys (principal, account_managers) take every value; time_window takes either
// one symbolic window or an explicit "YYYY-MM-DD" start and end.
func SetField(ctx FilterContext, key string, values ...string) (FilterContext, error) {
	out := ctx.Canonical()

	switch strings.ToLower(strings.TrimSpace(key)) {
	case KeyPrincipal:
		next := MultiplePrincipals(splitValues(values)...)
		if !next.Equal(out.Principal) {
			out.Product = AllValue
		}
		out.Principal = next

	case KeyProduct:
		switch v := splitValues(values); len(v) {
		case 0:
			out.Product = AllValue
		case 1:
			out.Product = v[0]
		default:
			return ctx, fmt.Errorf("%w: product takes a single id", ErrInvalidValue)
		}

	case KeyAccountManagers:
		out.AccountManagers = canonicalSet(splitValues(values))

	case KeyTimeWindow:
		v := splitValues(values)
		switch len(v) {
		case 0:
			out.TimeWindow = WindowCurrentWeek
			out.Explicit = nil
		case 1:
			w, err := ParseTimeWindow(v[0])
			if err != nil {
				return ctx, err
			}
			out.TimeWindow = w
			out.Explicit = nil
		case 2:
			b, err := ParseBounds(v[0], v[1])
			if err != nil {
				return ctx, err
			}
			out.Explicit = &b
		default:
			return ctx, fmt.Errorf("%w: time_window takes a window name or a start and end date", ErrInvalidValue)
		}

	case KeyFocus:
		v := splitValues(values)
		if len(v) > 1 {
			return ctx, fmt.Errorf("%w: focus takes a single value", ErrInvalidValue)
		}
		f := FocusAllActivity
		if len(v) == 1 {
			var err error
			if f, err = ParseFocus(v[0]); err != nil {
				return ctx, err
			}
		}
		if out.QuickView != QuickViewNone && f != out.Focus {
			return ctx, fmt.Errorf("%w: clear quick view %q first", ErrQuickViewLocked, out.QuickView)
		}
		out.Focus = f

	case KeyQuickView:
		v := splitValues(values)
		if len(v) > 1 {
			return ctx, fmt.Errorf("%w: quick_view takes a single preset", ErrInvalidValue)
		}
		preset := string(QuickViewNone)
		if len(v) == 1 {
			preset = v[0]
		}
		return ApplyQuickView(out, preset)

	default:
		return ctx, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	return out, nil
}

// ParseBounds parses an explicit "YYYY-MM-DD" date pair. Ordering is checked by the resolver.
func ParseBounds(start, end string) (DateBounds, error) {
	s, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return DateBounds{}, fmt.Errorf("%w: start date %q", ErrInvalidValue, start)
	}
	e, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return DateBounds{}, fmt.Errorf("%w: end date %q", ErrInvalidValue, end)
	}
	return DateBounds{Start: s, End: e}, nil
}

// splitValues accepts both repeated values and comma-separated lists.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
