package filters

import (
	"errors"
	"slices"
	"time"
)

var (
	// ErrInvalidPreset is returned for an unknown quick-view preset name.
	ErrInvalidPreset = errors.New("invalid quick view preset")
	// ErrInvalidValue is returned when a filter value cannot be parsed.
	ErrInvalidValue = errors.New("invalid filter value")
	// ErrUnknownField is returned by SetField for keys it does not own.
	ErrUnknownField = errors.New("unknown filter field")
	// ErrQuickViewLocked is returned when focus is changed while a quick view determines it.
	ErrQuickViewLocked = errors.New("focus is determined by the active quick view")
)

// DateBounds is an explicit calendar range. Only the dates matter; the resolver
// places them in the business timezone.
type DateBounds struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterContext is the canonical filter state of one dashboard session.
type FilterContext struct {
	Principal       PrincipalSelection `json:"principal"`
	Product         string             `json:"product"`
	AccountManagers []string           `json:"accountManagers,omitempty"`
	TimeWindow      TimeWindow         `json:"timeWindow"`
	// Explicit overrides TimeWindow when set.
	Explicit  *DateBounds `json:"explicit,omitempty"`
	Focus     Focus       `json:"focus"`
	QuickView QuickView   `json:"quickView"`
}

// Default returns the unfiltered context for the current week.
func Default() FilterContext {
	return FilterContext{
		Principal:  AllPrincipals(),
		Product:    AllValue,
		TimeWindow: WindowCurrentWeek,
		Focus:      FocusAllActivity,
		QuickView:  QuickViewNone,
	}
}

// Canonical fills defaults and orders set-valued fields so equal selections compare equal.
func (c FilterContext) Canonical() FilterContext {
	out := c
	out.Principal = MultiplePrincipals(c.Principal.IDs()...)
	if out.Product == "" {
		out.Product = AllValue
	}
	out.AccountManagers = canonicalSet(c.AccountManagers)
	if out.TimeWindow == "" {
		out.TimeWindow = WindowCurrentWeek
	}
	if c.Explicit != nil {
		b := *c.Explicit
		out.Explicit = &b
	}
	if out.Focus == "" {
		out.Focus = FocusAllActivity
	}
	if out.QuickView == "" {
		out.QuickView = QuickViewNone
	}
	if preset, ok := quickViewPresets[out.QuickView]; ok {
		out.Focus = preset
	}
	return out
}

// Equal compares two contexts by their canonical form.
func (c FilterContext) Equal(o FilterContext) bool {
	a, b := c.Canonical(), o.Canonical()
	if !a.Principal.Equal(b.Principal) ||
		a.Product != b.Product ||
		!slices.Equal(a.AccountManagers, b.AccountManagers) ||
		a.TimeWindow != b.TimeWindow ||
		a.Focus != b.Focus ||
		a.QuickView != b.QuickView {
		return false
	}
	if (a.Explicit == nil) != (b.Explicit == nil) {
		return false
	}
	if a.Explicit != nil {
		return a.Explicit.Start.Equal(b.Explicit.Start) && a.Explicit.End.Equal(b.Explicit.End)
	}
	return true
}

func canonicalSet(values []string) []string {
	var out []string
	for _, v := range values {
		if v == "" || v == AllValue {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
