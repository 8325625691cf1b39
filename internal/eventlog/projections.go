package eventlog

import (
	"cmp"
	"slices"
	"time"
)

// StageChanges summarises the transitions recorded inside one window.
type StageChanges struct {
	// PerOpportunity counts transitions keyed by opportunity ID.
	PerOpportunity map[string]int
	// Total is the number of transitions in the window.
	Total int
}

// BuildStageChanges counts real stage transitions whose timestamp lies in [start, end].
// Creation events (no FromStage) and no-op events are ignored.
func BuildStageChanges(events []StageEvent, start, end time.Time) StageChanges {
	res := StageChanges{PerOpportunity: make(map[string]int)}
	startTs, endTs := start.UnixMicro(), end.UnixMicro()

	for _, e := range events {
		if e.Timestamp < startTs || e.Timestamp > endTs {
			continue
		}
		if !e.IsTransition() {
			continue
		}
		res.PerOpportunity[e.OpportunityID]++
		res.Total++
	}
	return res
}

// ProjectStageAt replays the log and returns the stage each opportunity held at the reference time.
//
// The last event at or before ref wins. An opportunity whose first recorded event is later than
// ref resolves to that event's FromStage when known; otherwise it is absent from the result and
// the caller falls back to the opportunity's current stage.
func ProjectStageAt(events []StageEvent, ref time.Time) map[string]string {
	refTs := ref.UnixMicro()
	stages := make(map[string]string)
	decided := make(map[string]bool)

	for _, e := range sortedCopy(events) {
		if e.Timestamp <= refTs {
			stages[e.OpportunityID] = e.ToStage
			decided[e.OpportunityID] = true
			continue
		}
		if decided[e.OpportunityID] {
			continue
		}
		decided[e.OpportunityID] = true
		if e.FromStage != "" {
			stages[e.OpportunityID] = e.FromStage
		}
	}
	return stages
}

func sortedCopy(events []StageEvent) []StageEvent {
	out := make([]StageEvent, len(events))
	copy(out, events)
	slices.SortStableFunc(out, func(a, b StageEvent) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return out
}
