package stats

import (
	"errors"
	"testing"
	"time"

	"crm-kpi/internal/filters"
)

// Wednesday, 11 March 2026.
var testNow = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

func fixedResolver(now time.Time, weekStart time.Weekday) Resolver {
	return Resolver{Now: func() time.Time { return now }, Location: time.UTC, WeekStart: weekStart}
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

func TestResolver_SymbolicWindows(t *testing.T) {
	tests := []struct {
		name      string
		window    filters.TimeWindow
		weekStart time.Weekday
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"Current week", filters.WindowCurrentWeek, time.Sunday, day(8), endOfDay(day(14))},
		{"Current week from Monday", filters.WindowCurrentWeek, time.Monday, day(9), endOfDay(day(15))},
		{"Last week", filters.WindowLastWeek, time.Sunday, day(1), endOfDay(day(7))},
		{"Last 2 weeks", filters.WindowLast2Weeks, time.Sunday, day(1), endOfDay(day(14))},
		{"Last 4 weeks", filters.WindowLast4Weeks, time.Sunday, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), endOfDay(day(14))},
		{"Last 8 weeks", filters.WindowLast8Weeks, time.Sunday, time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC), endOfDay(day(14))},
		{"Current month", filters.WindowCurrentMonth, time.Sunday, day(1), endOfDay(day(31))},
		{"Empty defaults to current week", "", time.Sunday, day(8), endOfDay(day(14))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fixedResolver(testNow, tt.weekStart).Resolve(tt.window, nil)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !got.Current.Start.Equal(tt.wantStart) {
				t.Errorf("Current.Start = %v, want %v", got.Current.Start, tt.wantStart)
			}
			if !got.Current.End.Equal(tt.wantEnd) {
				t.Errorf("Current.End = %v, want %v", got.Current.End, tt.wantEnd)
			}
		})
	}
}

func TestResolver_PreviousRange(t *testing.T) {
	got, err := fixedResolver(testNow, time.Sunday).Resolve(filters.WindowCurrentWeek, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Previous.Start.Equal(day(1)) || !got.Previous.End.Equal(endOfDay(day(7))) {
		t.Errorf("Previous = %v..%v, want Mar 1..Mar 7", got.Previous.Start, got.Previous.End)
	}

	month, _ := fixedResolver(testNow, time.Sunday).Resolve(filters.WindowCurrentMonth, nil)
	wantStart := time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC)
	if !month.Previous.Start.Equal(wantStart) {
		t.Errorf("Previous month-length range starts %v, want %v", month.Previous.Start, wantStart)
	}
}

func TestResolver_WindowSymmetry(t *testing.T) {
	zones := []*time.Location{time.UTC, time.FixedZone("PST", -8*3600), time.FixedZone("IST", 5*3600+1800)}
	nows := []time.Time{
		testNow,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC),
		time.Date(2028, 2, 29, 12, 0, 0, 0, time.UTC),
	}
	explicit := &filters.DateBounds{Start: day(2), End: day(20)}

	for _, loc := range zones {
		for _, now := range nows {
			r := Resolver{Now: func() time.Time { return now }, Location: loc, WeekStart: time.Sunday}
			for _, w := range filters.TimeWindows {
				got, err := r.Resolve(w, nil)
				if err != nil {
					t.Fatalf("Resolve(%s) error = %v", w, err)
				}
				assertSymmetric(t, string(w), got)
			}
			got, err := r.Resolve("", explicit)
			if err != nil {
				t.Fatal(err)
			}
			assertSymmetric(t, "explicit", got)
		}
	}
}

func assertSymmetric(t *testing.T, name string, p RangePair) {
	t.Helper()
	if p.Current.Duration() != p.Previous.Duration() {
		t.Errorf("%s: duration(current) = %v, duration(previous) = %v", name, p.Current.Duration(), p.Previous.Duration())
	}
	if !p.Previous.End.Add(time.Nanosecond).Equal(p.Current.Start) {
		t.Errorf("%s: previous.end + 1 tick = %v, want %v", name, p.Previous.End.Add(time.Nanosecond), p.Current.Start)
	}
	if p.Current.Start.After(p.Current.End) {
		t.Errorf("%s: start after end", name)
	}
}

func TestResolver_ExplicitBounds(t *testing.T) {
	r := fixedResolver(testNow, time.Sunday)

	got, err := r.Resolve(filters.WindowLast8Weeks, &filters.DateBounds{Start: day(1), End: day(14)})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !got.Current.Start.Equal(day(1)) || !got.Current.End.Equal(endOfDay(day(14))) {
		t.Errorf("Current = %v..%v, want Mar 1 00:00 .. Mar 14 end of day", got.Current.Start, got.Current.End)
	}

	single, err := r.Resolve("", &filters.DateBounds{Start: day(5), End: day(5)})
	if err != nil {
		t.Fatalf("single-day range error = %v", err)
	}
	if single.Current.Duration() != 24*time.Hour {
		t.Errorf("single-day duration = %v, want 24h", single.Current.Duration())
	}

	if _, err := r.Resolve("", &filters.DateBounds{Start: day(14), End: day(1)}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Resolve() error = %v, want ErrInvalidRange", err)
	}
	if _, err := r.Resolve("fortnight", nil); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Resolve(unknown) error = %v, want ErrInvalidRange", err)
	}
}

func TestSnapToStart(t *testing.T) {
	ts := time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC) // Wednesday

	tests := []struct {
		bucket    string
		weekStart time.Weekday
		want      time.Time
	}{
		{BucketDay, time.Sunday, day(11)},
		{BucketWeek, time.Sunday, day(8)},
		{BucketWeek, time.Monday, day(9)},
		{BucketWeek, time.Thursday, day(5)},
		{BucketMonth, time.Sunday, day(1)},
	}

	for _, tt := range tests {
		if got := SnapToStart(ts, tt.bucket, tt.weekStart); !got.Equal(tt.want) {
			t.Errorf("SnapToStart(%s, %s) = %v, want %v", tt.bucket, tt.weekStart, got, tt.want)
		}
	}
}

func TestDateRange_Label(t *testing.T) {
	r := DateRange{Start: day(8), End: endOfDay(day(14))}
	if got := r.Label(); got != "Mar 08 - Mar 14, 2026" {
		t.Errorf("Label() = %q", got)
	}
}
