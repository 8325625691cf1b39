package stats

import (
	"math"
	"time"

	"crm-kpi/internal/crm"
)

// OpportunitiesMoved counts pipeline movement in the current range.
type OpportunitiesMoved struct {
	Count        int   `json:"count"`
	StageChanges int   `json:"stageChanges"`
	Trend        Trend `json:"trend"`
	// Approximated is true when movement was inferred from UpdatedAt rather than a stage log.
	Approximated bool `json:"approximated"`
}

type InteractionsLogged struct {
	Count    int   `json:"count"`
	ThisWeek int   `json:"thisWeek"`
	Trend    Trend `json:"trend"`
}

// ActionItemsDue is a point-in-time metric and carries no trend.
type ActionItemsDue struct {
	Count    int `json:"count"`
	DueToday int `json:"dueToday"`
}

type PipelineValue struct {
	Total            float64 `json:"total"`
	OpportunityCount int     `json:"opportunityCount"`
	Trend            Trend   `json:"trend"`
}

type OverdueItems struct {
	Count      int `json:"count"`
	OldestDays int `json:"oldestDays"`
}

type CompletedTasks struct {
	Count          int     `json:"count"`
	CompletionRate float64 `json:"completionRate"`
	Trend          Trend   `json:"trend"`
}

// WeeklyKPIData is the result of one computation. It is never mutated after assembly.
type WeeklyKPIData struct {
	OpportunitiesMoved OpportunitiesMoved `json:"opportunitiesMoved"`
	InteractionsLogged InteractionsLogged `json:"interactionsLogged"`
	ActionItemsDue     ActionItemsDue     `json:"actionItemsDue"`
	PipelineValue      PipelineValue      `json:"pipelineValue"`
	OverdueItems       OverdueItems       `json:"overdueItems"`
	CompletedTasks     CompletedTasks     `json:"completedTasks"`

	Ranges      RangePair `json:"ranges"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func CalculateOpportunitiesMoved(b Buckets) OpportunitiesMoved {
	return OpportunitiesMoved{
		Count:        len(b.StageChangedInCurrent),
		StageChanges: b.StageChangesInCurrent,
		Trend:        NewTrend(float64(b.StageChangesInCurrent), float64(b.StageChangesInPrevious)),
		Approximated: !b.FromStageLog,
	}
}

// CalculateInteractionsLogged counts interactions in the current range; ThisWeek narrows them to
// the calendar week containing now.
func CalculateInteractionsLogged(b Buckets, week DateRange) InteractionsLogged {
	thisWeek := 0
	for _, i := range b.InteractionsInCurrent {
		if week.Contains(i.InteractionDate) {
			thisWeek++
		}
	}
	return InteractionsLogged{
		Count:    len(b.InteractionsInCurrent),
		ThisWeek: thisWeek,
		Trend:    NewTrend(float64(len(b.InteractionsInCurrent)), float64(len(b.InteractionsInPrevious))),
	}
}

func CalculateActionItemsDue(b Buckets) ActionItemsDue {
	return ActionItemsDue{
		Count:    len(b.DueThisWindow),
		DueToday: len(b.DueToday),
	}
}

// CalculatePipelineValue sums open opportunity value. Negative values count as zero.
func CalculatePipelineValue(b Buckets) PipelineValue {
	total := sumValue(b.ActiveOpportunities)

	trend := EstimatedTrend()
	if b.PreviousActiveKnown {
		trend = NewTrend(total, sumValue(b.PreviousActive))
	}

	return PipelineValue{
		Total:            total,
		OpportunityCount: len(b.ActiveOpportunities),
		Trend:            trend,
	}
}

// CalculateOverdueItems reports the overdue count and the age in whole days of the oldest item.
func CalculateOverdueItems(b Buckets, now time.Time) OverdueItems {
	oldest := 0
	for _, fu := range b.Overdue {
		if fu.FollowUpDate == nil {
			continue
		}
		days := int(math.Floor(now.Sub(*fu.FollowUpDate).Hours() / 24))
		oldest = max(oldest, days)
	}
	return OverdueItems{
		Count:      len(b.Overdue),
		OldestDays: oldest,
	}
}

// CalculateCompletedTasks relates completed follow-ups to those still outstanding (due or overdue).
func CalculateCompletedTasks(b Buckets) CompletedTasks {
	done := len(b.CompletedInCurrent)
	outstanding := len(b.DueThisWindow) + len(b.Overdue)
	return CompletedTasks{
		Count:          done,
		CompletionRate: percentage(done, done+outstanding),
		Trend:          NewTrend(float64(done), float64(len(b.CompletedInPrevious))),
	}
}

func sumValue(opps []crm.Opportunity) float64 {
	total := 0.0
	for _, o := range opps {
		total += clamp(o.EstimatedValue)
	}
	return total
}
