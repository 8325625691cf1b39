package filters

import (
	"errors"
	"testing"
)

func TestApplyQuickView_Presets(t *testing.T) {
	tests := []struct {
		preset    string
		wantFocus Focus
		wantView  QuickView
	}{
		{"action_items_due", FocusMyTasks, QuickViewActionItemsDue},
		{"pipeline_movers", FocusHighPriority, QuickViewPipelineMovers},
		{"recent_wins", FocusAllActivity, QuickViewRecentWins},
		{"needs_attention", FocusOverdue, QuickViewNeedsAttention},
		{"needs-attention", FocusOverdue, QuickViewNeedsAttention},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			got, err := ApplyQuickView(Default(), tt.preset)
			if err != nil {
				t.Fatalf("ApplyQuickView() error = %v", err)
			}
			if got.Focus != tt.wantFocus {
				t.Errorf("Focus = %q, want %q", got.Focus, tt.wantFocus)
			}
			if got.QuickView != tt.wantView {
				t.Errorf("QuickView = %q, want %q", got.QuickView, tt.wantView)
			}
		})
	}
}

func TestApplyQuickView_Idempotent(t *testing.T) {
	contexts := []FilterContext{
		Default(),
		{Principal: MultiplePrincipals("P2", "P1"), Product: "X", Focus: FocusTeamOverview, AccountManagers: []string{"AM1"}},
		{QuickView: QuickViewRecentWins, Focus: FocusAllActivity, TimeWindow: WindowLast4Weeks},
	}
	presets := []string{"none", "action_items_due", "pipeline_movers", "recent_wins", "needs_attention"}

	for _, ctx := range contexts {
		for _, p := range presets {
			once, err := ApplyQuickView(ctx, p)
			if err != nil {
				t.Fatalf("ApplyQuickView(%q) error = %v", p, err)
			}
			twice, err := ApplyQuickView(once, p)
			if err != nil {
				t.Fatalf("ApplyQuickView(%q) second call error = %v", p, err)
			}
			if !once.Equal(twice) {
				t.Errorf("ApplyQuickView(%q) not idempotent: %+v vs %+v", p, once, twice)
			}
		}
	}
}

func TestApplyQuickView_NoneKeepsFocus(t *testing.T) {
	ctx, _ := ApplyQuickView(Default(), "needs_attention")

	got, err := ApplyQuickView(ctx, "none")
	if err != nil {
		t.Fatalf("ApplyQuickView(none) error = %v", err)
	}
	if got.QuickView != QuickViewNone {
		t.Errorf("QuickView = %q, want none", got.QuickView)
	}
	if got.Focus != FocusOverdue {
		t.Errorf("Focus = %q, want it left at %q", got.Focus, FocusOverdue)
	}
}

func TestApplyQuickView_UnknownPreset(t *testing.T) {
	ctx := Default()
	got, err := ApplyQuickView(ctx, "hot_leads")
	if !errors.Is(err, ErrInvalidPreset) {
		t.Fatalf("ApplyQuickView() error = %v, want ErrInvalidPreset", err)
	}
	if !got.Equal(ctx) {
		t.Error("context must be unchanged on error")
	}
}

func TestSetField_PrincipalResetsProduct(t *testing.T) {
	base := Default()
	base.Principal = SinglePrincipal("P1")
	base.Product = "SKU-9"

	tests := []struct {
		name        string
		values      []string
		wantProduct string
	}{
		{"Different single", []string{"P2"}, AllValue},
		{"Multiple", []string{"P1", "P2"}, AllValue},
		{"All", []string{"all"}, AllValue},
		{"No values", nil, AllValue},
		{"Same principal", []string{"P1"}, "SKU-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetField(base, KeyPrincipal, tt.values...)
			if err != nil {
				t.Fatalf("SetField() error = %v", err)
			}
			if got.Product != tt.wantProduct {
				t.Errorf("Product = %q, want %q", got.Product, tt.wantProduct)
			}
		})
	}
}

func TestSetField_FocusLockedByQuickView(t *testing.T) {
	ctx, _ := ApplyQuickView(Default(), "pipeline_movers")

	if _, err := SetField(ctx, KeyFocus, "overdue"); !errors.Is(err, ErrQuickViewLocked) {
		t.Errorf("SetField(focus) error = %v, want ErrQuickViewLocked", err)
	}
	if _, err := SetField(ctx, KeyFocus, "high_priority"); err != nil {
		t.Errorf("re-setting the preset focus should succeed, got %v", err)
	}

	cleared, _ := SetField(ctx, KeyQuickView, "none")
	got, err := SetField(cleared, KeyFocus, "overdue")
	if err != nil {
		t.Fatalf("SetField(focus) after clearing error = %v", err)
	}
	if got.Focus != FocusOverdue {
		t.Errorf("Focus = %q, want %q", got.Focus, FocusOverdue)
	}
}

func TestSetField_Values(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		values  []string
		check   func(FilterContext) bool
		wantErr error
	}{
		{"Account managers deduped", KeyAccountManagers, []string{"AM2,AM1", "AM2"}, func(c FilterContext) bool {
			return len(c.AccountManagers) == 2 && c.AccountManagers[0] == "AM1"
		}, nil},
		{"Account managers cleared", KeyAccountManagers, []string{"all"}, func(c FilterContext) bool {
			return len(c.AccountManagers) == 0
		}, nil},
		{"Symbolic window", KeyTimeWindow, []string{"last_4_weeks"}, func(c FilterContext) bool {
			return c.TimeWindow == WindowLast4Weeks && c.Explicit == nil
		}, nil},
		{"Explicit window", KeyTimeWindow, []string{"2026-03-01", "2026-03-14"}, func(c FilterContext) bool {
			return c.Explicit != nil && c.Explicit.End.Day() == 14
		}, nil},
		{"Product", KeyProduct, []string{"SKU-1"}, func(c FilterContext) bool { return c.Product == "SKU-1" }, nil},
		{"Unknown window", KeyTimeWindow, []string{"fortnight"}, nil, ErrInvalidValue},
		{"Bad date", KeyTimeWindow, []string{"2026-13-01", "2026-03-14"}, nil, ErrInvalidValue},
		{"Two products", KeyProduct, []string{"A", "B"}, nil, ErrInvalidValue},
		{"Unknown focus", KeyFocus, []string{"vip"}, nil, ErrInvalidValue},
		{"Unknown preset", KeyQuickView, []string{"hot"}, nil, ErrInvalidPreset},
		{"Unknown key", "density", []string{"compact"}, nil, ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetField(Default(), tt.key, tt.values...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SetField() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetField() error = %v", err)
			}
			if !tt.check(got) {
				t.Errorf("SetField(%s, %v) produced unexpected context %+v", tt.key, tt.values, got)
			}
		})
	}
}
