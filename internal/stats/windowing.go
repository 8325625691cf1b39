package stats

import (
	"errors"
	"fmt"
	"time"

	"crm-kpi/internal/filters"
)

// ErrInvalidRange is returned for explicit bounds whose start lies after their end.
var ErrInvalidRange = errors.New("invalid date range")

// DateRange is a closed interval [Start, End]. End is the last instant that belongs to the
// range, so it covers the same instants as the half-open [Start, End+1ns).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the range as a half-open interval.
func (r DateRange) Duration() time.Duration {
	return r.End.Sub(r.Start) + time.Nanosecond
}

// Contains reports whether t lies within the range, both bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Label returns a human-readable label, e.g. "Mar 01 - Mar 07, 2026".
func (r DateRange) Label() string {
	if r.Start.Year() != r.End.Year() {
		return fmt.Sprintf("%s - %s", r.Start.Format("Jan 02, 2006"), r.End.Format("Jan 02, 2006"))
	}
	return fmt.Sprintf("%s - %s", r.Start.Format("Jan 02"), r.End.Format("Jan 02, 2006"))
}

// RangePair holds the selected range and the equally long range right before it.
type RangePair struct {
	Current  DateRange `json:"current"`
	Previous DateRange `json:"previous"`
}

// PreviousRange returns the range of identical duration ending one tick before cur.Start.
func PreviousRange(cur DateRange) DateRange {
	end := cur.Start.Add(-time.Nanosecond)
	return DateRange{
		Start: cur.Start.Add(-cur.Duration()),
		End:   end,
	}
}

// Resolver turns symbolic windows and explicit bounds into concrete ranges in the business timezone.
type Resolver struct {
	Now       func() time.Time
	Location  *time.Location
	WeekStart time.Weekday
}

// NewResolver returns a resolver on the wall clock.
func NewResolver(loc *time.Location, weekStart time.Weekday) Resolver {
	return Resolver{Now: time.Now, Location: loc, WeekStart: weekStart}
}

func (r Resolver) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// CurrentTime returns the resolver's now in the business timezone.
func (r Resolver) CurrentTime() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().In(r.location())
}

// Resolve computes the current and previous ranges relative to the resolver's clock.
func (r Resolver) Resolve(window filters.TimeWindow, explicit *filters.DateBounds) (RangePair, error) {
	return r.ResolveAt(r.CurrentTime(), window, explicit)
}

// ResolveAt is Resolve with an explicit reference time.
func (r Resolver) ResolveAt(now time.Time, window filters.TimeWindow, explicit *filters.DateBounds) (RangePair, error) {
	loc := r.location()
	now = now.In(loc)

	var cur DateRange
	switch {
	case explicit != nil:
		start := calendarDay(explicit.Start, loc)
		end := calendarDay(explicit.End, loc)
		if start.After(end) {
			return RangePair{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
				start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
		cur = DateRange{Start: start, End: SnapToEnd(end, BucketDay, r.WeekStart)}

	case window == filters.WindowCurrentMonth:
		cur = DateRange{Start: SnapToStart(now, BucketMonth, r.WeekStart), End: SnapToEnd(now, BucketMonth, r.WeekStart)}

	case window == filters.WindowLastWeek:
		cur = r.WeekOf(SnapToStart(now, BucketWeek, r.WeekStart).AddDate(0, 0, -7))

	case window == "" || window.Weeks() > 0:
		weeks := max(window.Weeks(), 1)
		week := r.WeekOf(now)
		cur = DateRange{Start: week.Start.AddDate(0, 0, -7*(weeks-1)), End: week.End}

	default:
		return RangePair{}, fmt.Errorf("%w: unknown time window %q", ErrInvalidRange, window)
	}

	return RangePair{Current: cur, Previous: PreviousRange(cur)}, nil
}

// WeekOf returns the calendar week containing t.
func (r Resolver) WeekOf(t time.Time) DateRange {
	t = t.In(r.location())
	return DateRange{
		Start: SnapToStart(t, BucketWeek, r.WeekStart),
		End:   SnapToEnd(t, BucketWeek, r.WeekStart),
	}
}

// DayOf returns the calendar day containing t.
func (r Resolver) DayOf(t time.Time) DateRange {
	t = t.In(r.location())
	return DateRange{
		Start: SnapToStart(t, BucketDay, r.WeekStart),
		End:   SnapToEnd(t, BucketDay, r.WeekStart),
	}
}

// calendarDay keeps the calendar date of t and places its midnight in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Buckets used by the snapping helpers.
const (
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"
)

// SnapToStart normalizes a timestamp to the beginning of its bucket (0:00:00).
func SnapToStart(t time.Time, bucket string, weekStart time.Weekday) time.Time {
	if t.IsZero() {
		return t
	}
	switch bucket {
	case BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case BucketWeek:
		offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
		return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
	default: // day
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// SnapToEnd normalizes a timestamp to the very end of its bucket (23:59:59.999...).
func SnapToEnd(t time.Time, bucket string, weekStart time.Weekday) time.Time {
	if t.IsZero() {
		return t
	}
	switch bucket {
	case BucketMonth:
		nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
		return nextMonth.Add(-time.Nanosecond)
	case BucketWeek:
		start := SnapToStart(t, BucketWeek, weekStart)
		return time.Date(start.Year(), start.Month(), start.Day()+6, 23, 59, 59, 999999999, t.Location())
	default: // day
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
	}
}
