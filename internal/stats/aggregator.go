package stats

import (
	"slices"
	"time"

	"crm-kpi/internal/crm"
	"crm-kpi/internal/eventlog"
	"crm-kpi/internal/filters"
)

// Buckets are the filtered and partitioned subsets every KPI is computed from.
type Buckets struct {
	StageChangedInCurrent  []crm.Opportunity
	StageChangesInCurrent  int
	StageChangedInPrevious []crm.Opportunity
	StageChangesInPrevious int
	// FromStageLog is true when stage changes came from discrete events instead of UpdatedAt.
	FromStageLog bool

	ActiveOpportunities []crm.Opportunity
	// PreviousActive is the active pipeline as of the end of the previous range.
	PreviousActive      []crm.Opportunity
	PreviousActiveKnown bool

	InteractionsInCurrent  []crm.Interaction
	InteractionsInPrevious []crm.Interaction

	DueThisWindow []crm.FollowUp
	DueToday      []crm.FollowUp
	Overdue       []crm.FollowUp

	CompletedInCurrent  []crm.Interaction
	CompletedInPrevious []crm.Interaction
}

// Partition scopes the sources by the filter context and splits them along the resolved ranges.
// today is the calendar day of now in the business timezone.
func Partition(src crm.Sources, ranges RangePair, f filters.FilterContext, now time.Time, today DateRange) Buckets {
	f = f.Canonical()
	opps := scopeOpportunities(src.Opportunities, f)
	interactions := scopeInteractions(src.Interactions, f)
	followUps := scopeInteractions(src.FollowUps, f)

	var b Buckets
	b.ActiveOpportunities = activeOpportunities(opps)

	if src.HasStageHistory {
		events := scopeEvents(src.StageEvents, opps)
		b.FromStageLog = true
		b.StageChangedInCurrent, b.StageChangesInCurrent = movedByEvents(opps, events, ranges.Current)
		b.StageChangedInPrevious, b.StageChangesInPrevious = movedByEvents(opps, events, ranges.Previous)
		b.PreviousActive, b.PreviousActiveKnown = snapshotActive(opps, eventlog.ProjectStageAt(events, ranges.Previous.End), ranges.Previous.End)
	} else {
		b.StageChangedInCurrent = updatedWithin(opps, ranges.Current)
		b.StageChangesInCurrent = len(b.StageChangedInCurrent)
		b.StageChangedInPrevious = updatedWithin(opps, ranges.Previous)
		b.StageChangesInPrevious = len(b.StageChangedInPrevious)
		b.PreviousActive, b.PreviousActiveKnown = snapshotActive(opps, nil, ranges.Previous.End)
	}

	b.InteractionsInCurrent = interactionsWithin(interactions, ranges.Current)
	b.InteractionsInPrevious = interactionsWithin(interactions, ranges.Previous)
	b.CompletedInCurrent = completed(b.InteractionsInCurrent)
	b.CompletedInPrevious = completed(b.InteractionsInPrevious)

	for _, fu := range followUps {
		if fu.FollowUpDate == nil {
			continue
		}
		due := *fu.FollowUpDate
		if ranges.Current.Contains(due) {
			b.DueThisWindow = append(b.DueThisWindow, fu)
			if today.Contains(due) {
				b.DueToday = append(b.DueToday, fu)
			}
		}
		if due.Before(now) {
			b.Overdue = append(b.Overdue, fu)
		}
	}

	return b
}

func matchesManager(f filters.FilterContext, id string) bool {
	return len(f.AccountManagers) == 0 || slices.Contains(f.AccountManagers, id)
}

func scopeOpportunities(opps []crm.Opportunity, f filters.FilterContext) []crm.Opportunity {
	var out []crm.Opportunity
	for _, o := range opps {
		if !f.Principal.Matches(o.PrincipalID) {
			continue
		}
		if f.Product != filters.AllValue && o.ProductID != f.Product {
			continue
		}
		if !matchesManager(f, o.AccountManagerID) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func scopeInteractions(items []crm.Interaction, f filters.FilterContext) []crm.Interaction {
	var out []crm.Interaction
	for _, i := range items {
		if f.Principal.Matches(i.OrganizationID) && matchesManager(f, i.AccountManagerID) {
			out = append(out, i)
		}
	}
	return out
}

// scopeEvents keeps the events of opportunities that survived scoping.
func scopeEvents(events []eventlog.StageEvent, opps []crm.Opportunity) []eventlog.StageEvent {
	ids := make(map[string]bool, len(opps))
	for _, o := range opps {
		ids[o.ID] = true
	}
	var out []eventlog.StageEvent
	for _, e := range events {
		if ids[e.OpportunityID] {
			out = append(out, e)
		}
	}
	return out
}

func activeOpportunities(opps []crm.Opportunity) []crm.Opportunity {
	var out []crm.Opportunity
	for _, o := range opps {
		if !o.Stage.IsTerminal() {
			out = append(out, o)
		}
	}
	return out
}

// updatedWithin approximates "moved" as "updated inside the range" when no stage log exists.
// It overcounts opportunities edited for unrelated reasons.
func updatedWithin(opps []crm.Opportunity, r DateRange) []crm.Opportunity {
	var out []crm.Opportunity
	for _, o := range opps {
		if !o.UpdatedAt.IsZero() && r.Contains(o.UpdatedAt) {
			out = append(out, o)
		}
	}
	return out
}

func movedByEvents(opps []crm.Opportunity, events []eventlog.StageEvent, r DateRange) ([]crm.Opportunity, int) {
	changes := eventlog.BuildStageChanges(events, r.Start, r.End)
	var out []crm.Opportunity
	for _, o := range opps {
		if changes.PerOpportunity[o.ID] > 0 {
			out = append(out, o)
		}
	}
	return out, changes.Total
}

// snapshotActive reconstructs the active pipeline at ref.
//
// With replayed stages an opportunity counts when its stage at ref was not terminal. Otherwise it
// counts when it existed at ref and is either still open or was closed after ref. The snapshot is
// unknown when a candidate lacks the CreatedAt needed to place it in time.
func snapshotActive(opps []crm.Opportunity, stagesAt map[string]string, ref time.Time) ([]crm.Opportunity, bool) {
	var out []crm.Opportunity
	for _, o := range opps {
		if !o.CreatedAt.IsZero() && o.CreatedAt.After(ref) {
			continue
		}

		if stage, ok := stagesAt[o.ID]; ok {
			if !crm.NormalizeStage(stage).IsTerminal() {
				out = append(out, o)
			}
			continue
		}

		candidate := !o.Stage.IsTerminal() || o.UpdatedAt.IsZero() || o.UpdatedAt.After(ref)
		if !candidate {
			continue
		}
		if o.CreatedAt.IsZero() {
			return nil, false
		}
		out = append(out, o)
	}
	return out, true
}

func interactionsWithin(items []crm.Interaction, r DateRange) []crm.Interaction {
	var out []crm.Interaction
	for _, i := range items {
		if !i.InteractionDate.IsZero() && r.Contains(i.InteractionDate) {
			out = append(out, i)
		}
	}
	return out
}

// completed keeps interactions whose scheduled follow-up is no longer required.
func completed(items []crm.Interaction) []crm.Interaction {
	var out []crm.Interaction
	for _, i := range items {
		if i.FollowUpDate != nil && !i.FollowUpRequired {
			out = append(out, i)
		}
	}
	return out
}
