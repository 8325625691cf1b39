package stats

import (
	"math"
	"strings"
	"testing"
	"time"

	"crm-kpi/internal/crm"
	"crm-kpi/internal/eventlog"
	"crm-kpi/internal/filters"
)

func at(d, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func partitionAt(src crm.Sources, f filters.FilterContext) Buckets {
	r := fixedResolver(testNow, time.Sunday)
	ranges, _ := r.Resolve(f.Canonical().TimeWindow, f.Explicit)
	return Partition(src, ranges, f, testNow, r.DayOf(testNow))
}

func TestCalculatePipelineValue_PreviousSnapshot(t *testing.T) {
	src := crm.Sources{Opportunities: []crm.Opportunity{
		{ID: "O1", Stage: crm.StageLead, EstimatedValue: 100, CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), UpdatedAt: at(2, 9)},
		{ID: "O2", Stage: crm.StageProposal, EstimatedValue: 50, CreatedAt: at(9, 9), UpdatedAt: at(9, 9)},
		{ID: "O3", Stage: crm.StageClosedWon, EstimatedValue: 200, CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), UpdatedAt: at(10, 9)},
		{ID: "O4", Stage: crm.StageClosedLost, EstimatedValue: 999, CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
	}}

	got := CalculatePipelineValue(partitionAt(src, filters.Default()))

	if got.Total != 150 || got.OpportunityCount != 2 {
		t.Errorf("PipelineValue = %v over %d, want 150 over 2", got.Total, got.OpportunityCount)
	}
	if got.Trend.Estimated {
		t.Fatal("trend should be computed from the previous snapshot")
	}
	if got.Trend.Baseline != 300 {
		t.Errorf("Baseline = %v, want 300 (O1 + O3 were open at the end of last week)", got.Trend.Baseline)
	}
	if got.Trend.Value != -50 {
		t.Errorf("Trend.Value = %v, want -50", got.Trend.Value)
	}
}

func TestCalculatePipelineValue_UnknownSnapshot(t *testing.T) {
	src := crm.Sources{Opportunities: []crm.Opportunity{
		{ID: "O1", Stage: crm.StageNegotiation, EstimatedValue: 400},
	}}

	got := CalculatePipelineValue(partitionAt(src, filters.Default()))

	if got.Total != 400 {
		t.Errorf("Total = %v, want 400", got.Total)
	}
	if !got.Trend.Estimated || got.Trend.Value != 0 || got.Trend.Direction != DirectionStable {
		t.Errorf("Trend = %+v, want an estimated stable zero", got.Trend)
	}
}

func TestCalculatePipelineValue_ClampsNegativeValues(t *testing.T) {
	src := crm.Sources{Opportunities: []crm.Opportunity{
		{ID: "O1", Stage: crm.StageLead, EstimatedValue: -500, CreatedAt: at(1, 0)},
		{ID: "O2", Stage: crm.StageLead, EstimatedValue: 25, CreatedAt: at(1, 0)},
	}}

	got := CalculatePipelineValue(partitionAt(src, filters.Default()))
	if got.Total != 25 || got.OpportunityCount != 2 {
		t.Errorf("PipelineValue = %v over %d, want 25 over 2", got.Total, got.OpportunityCount)
	}
}

func TestCalculateOpportunitiesMoved(t *testing.T) {
	opps := []crm.Opportunity{
		{ID: "O1", Stage: crm.StageProposal, UpdatedAt: at(10, 9), CreatedAt: at(1, 0)},
		{ID: "O2", Stage: crm.StageNegotiation, UpdatedAt: at(12, 9), CreatedAt: at(1, 0)},
		{ID: "O3", Stage: crm.StageLead, UpdatedAt: at(4, 9), CreatedAt: at(1, 0)},
	}

	t.Run("Approximated from UpdatedAt", func(t *testing.T) {
		got := CalculateOpportunitiesMoved(partitionAt(crm.Sources{Opportunities: opps}, filters.Default()))
		if got.Count != 2 || got.StageChanges != 2 {
			t.Errorf("Count = %d, StageChanges = %d, want 2 and 2", got.Count, got.StageChanges)
		}
		if !got.Approximated {
			t.Error("Approximated = false without a stage log")
		}
		if got.Trend.Value != 100 {
			t.Errorf("Trend.Value = %v, want 100", got.Trend.Value)
		}
	})

	t.Run("From stage log", func(t *testing.T) {
		ts := func(d, h int) int64 { return at(d, h).UnixMicro() }
		src := crm.Sources{
			Opportunities:   opps,
			HasStageHistory: true,
			StageEvents: []eventlog.StageEvent{
				{OpportunityID: "O1", FromStage: "qualified", ToStage: "proposal", Timestamp: ts(9, 9)},
				{OpportunityID: "O1", FromStage: "lead", ToStage: "qualified", Timestamp: ts(8, 9)},
				{OpportunityID: "O2", FromStage: "negotiation", ToStage: "negotiation", Timestamp: ts(12, 9)},
				{OpportunityID: "O3", FromStage: "lead", ToStage: "qualified", Timestamp: ts(3, 9)},
				{OpportunityID: "O3", FromStage: "qualified", ToStage: "lead", Timestamp: ts(4, 9)},
				{OpportunityID: "GONE", FromStage: "lead", ToStage: "qualified", Timestamp: ts(10, 9)},
			},
		}
		got := CalculateOpportunitiesMoved(partitionAt(src, filters.Default()))
		if got.Count != 1 || got.StageChanges != 2 {
			t.Errorf("Count = %d, StageChanges = %d, want 1 and 2", got.Count, got.StageChanges)
		}
		if got.Approximated {
			t.Error("Approximated = true with a stage log")
		}
		if got.Trend.Value != 0 || got.Trend.Baseline != 2 {
			t.Errorf("Trend = %+v, want 0 against a baseline of 2", got.Trend)
		}
	})
}

func TestPartition_StageLogReplaysSnapshot(t *testing.T) {
	ts := func(d, h int) int64 { return at(d, h).UnixMicro() }
	src := crm.Sources{
		Opportunities: []crm.Opportunity{
			{ID: "O1", Stage: crm.StageClosedWon, EstimatedValue: 70, UpdatedAt: at(10, 0)},
			{ID: "O2", Stage: crm.StageLead, EstimatedValue: 30, UpdatedAt: at(2, 0)},
		},
		HasStageHistory: true,
		StageEvents: []eventlog.StageEvent{
			{OpportunityID: "O1", ToStage: "lead", Timestamp: ts(2, 0)},
			{OpportunityID: "O1", FromStage: "lead", ToStage: "closed-won", Timestamp: ts(10, 0)},
			{OpportunityID: "O2", FromStage: "closed-lost", ToStage: "lead", Timestamp: ts(9, 0)},
		},
	}

	b := partitionAt(src, filters.Default())
	if !b.PreviousActiveKnown {
		t.Fatal("snapshot should be known from the stage log")
	}
	if len(b.PreviousActive) != 1 || b.PreviousActive[0].ID != "O1" {
		t.Errorf("PreviousActive = %+v, want only O1 (O2 was closed-lost at the end of last week)", b.PreviousActive)
	}
}

func TestPartition_FilterScoping(t *testing.T) {
	due := at(12, 9)
	src := crm.Sources{
		Opportunities: []crm.Opportunity{
			{ID: "O1", PrincipalID: "P1", ProductID: "X", AccountManagerID: "AM1", Stage: crm.StageLead},
			{ID: "O2", PrincipalID: "P1", ProductID: "Y", AccountManagerID: "AM1", Stage: crm.StageLead},
			{ID: "O3", PrincipalID: "P2", ProductID: "X", AccountManagerID: "AM1", Stage: crm.StageLead},
			{ID: "O4", PrincipalID: "P1", ProductID: "X", AccountManagerID: "AM2", Stage: crm.StageLead},
		},
		Interactions: []crm.Interaction{
			{ID: "I1", OrganizationID: "P1", AccountManagerID: "AM1", InteractionDate: at(10, 9)},
			{ID: "I2", OrganizationID: "P2", AccountManagerID: "AM1", InteractionDate: at(10, 9)},
		},
		FollowUps: []crm.FollowUp{
			{ID: "F1", OrganizationID: "P1", AccountManagerID: "AM2", FollowUpDate: &due},
			{ID: "F2", OrganizationID: "P1", AccountManagerID: "AM1", FollowUpDate: &due},
		},
	}

	f := filters.Default()
	f.Principal = filters.SinglePrincipal("P1")
	f.Product = "X"
	f.AccountManagers = []string{"AM1"}

	b := partitionAt(src, f)
	if len(b.ActiveOpportunities) != 1 || b.ActiveOpportunities[0].ID != "O1" {
		t.Errorf("ActiveOpportunities = %+v, want only O1", b.ActiveOpportunities)
	}
	if len(b.InteractionsInCurrent) != 1 || b.InteractionsInCurrent[0].ID != "I1" {
		t.Errorf("InteractionsInCurrent = %+v, want only I1", b.InteractionsInCurrent)
	}
	if len(b.DueThisWindow) != 1 || b.DueThisWindow[0].ID != "F2" {
		t.Errorf("DueThisWindow = %+v, want only F2", b.DueThisWindow)
	}
}

func TestPartition_FollowUps(t *testing.T) {
	src := crm.Sources{
		Interactions: []crm.Interaction{
			{ID: "I1", InteractionDate: at(9, 9), FollowUpDate: ptr(at(10, 9))},
			{ID: "I2", InteractionDate: at(9, 9), FollowUpDate: ptr(at(16, 9)), FollowUpRequired: true},
			{ID: "I3", InteractionDate: at(3, 9), FollowUpDate: ptr(at(4, 9))},
			{ID: "I4", InteractionDate: at(10, 9)},
		},
		// F1 due this week, F2 overdue outside the window, F3 due later today,
		// F4 on the window start and overdue, F5 on the window end, F6 unscheduled.
		FollowUps: []crm.FollowUp{
			{ID: "F1", FollowUpDate: ptr(at(12, 9))},
			{ID: "F2", FollowUpDate: ptr(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))},
			{ID: "F3", FollowUpDate: ptr(at(11, 15))},
			{ID: "F4", FollowUpDate: ptr(at(8, 0))},
			{ID: "F5", FollowUpDate: ptr(endOfDay(day(14)))},
			{ID: "F6"},
		},
	}

	b := partitionAt(src, filters.Default())

	if got := ids(b.DueThisWindow); got != "F1,F3,F4,F5" {
		t.Errorf("DueThisWindow = %s, want F1,F3,F4,F5", got)
	}
	if got := ids(b.DueToday); got != "F3" {
		t.Errorf("DueToday = %s, want F3", got)
	}
	if got := ids(b.Overdue); got != "F2,F4" {
		t.Errorf("Overdue = %s, want F2,F4", got)
	}
	if got := ids(b.CompletedInCurrent); got != "I1" {
		t.Errorf("CompletedInCurrent = %s, want I1", got)
	}
	if got := ids(b.CompletedInPrevious); got != "I3" {
		t.Errorf("CompletedInPrevious = %s, want I3", got)
	}

	tasks := CalculateCompletedTasks(b)
	// 1 completed against 4 due + 2 overdue.
	if want := 100.0 / 7; math.Abs(tasks.CompletionRate-want) > 1e-9 {
		t.Errorf("CompletionRate = %v, want %v", tasks.CompletionRate, want)
	}
	if tasks.Trend.Value != 0 {
		t.Errorf("Trend.Value = %v, want 0 (1 vs 1)", tasks.Trend.Value)
	}

	due := CalculateActionItemsDue(b)
	if due.Count != 4 || due.DueToday != 1 {
		t.Errorf("ActionItemsDue = %+v, want 4 due and 1 today", due)
	}
}

func TestCalculateCompletedTasks_EmptyDenominator(t *testing.T) {
	if got := CalculateCompletedTasks(Buckets{}); got.CompletionRate != 0 {
		t.Errorf("CompletionRate = %v, want 0", got.CompletionRate)
	}
}

func TestCalculateInteractionsLogged_ThisWeek(t *testing.T) {
	src := crm.Sources{Interactions: []crm.Interaction{
		{ID: "I1", InteractionDate: at(10, 9)},
		{ID: "I2", InteractionDate: time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)},
		{ID: "I3", InteractionDate: time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)},
	}}

	f := filters.Default()
	f.TimeWindow = filters.WindowLast4Weeks
	b := partitionAt(src, f)

	got := CalculateInteractionsLogged(b, fixedResolver(testNow, time.Sunday).WeekOf(testNow))
	if got.Count != 2 || got.ThisWeek != 1 {
		t.Errorf("InteractionsLogged = %+v, want count 2 and thisWeek 1", got)
	}
	if got.Trend.Value != 100 {
		t.Errorf("Trend.Value = %v, want 100 (2 vs 1)", got.Trend.Value)
	}
}

func ids(items []crm.Interaction) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.ID)
	}
	return strings.Join(names, ",")
}
