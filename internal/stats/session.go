package stats

import (
	"context"

	"github.com/rs/zerolog/log"

	"crm-kpi/internal/crm"
	"crm-kpi/internal/filters"
)

// Engine orchestrates one KPI computation: resolve ranges, partition, calculate, assemble.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	Resolver Resolver
}

// NewEngine creates an engine around a resolver.
func NewEngine(r Resolver) *Engine {
	return &Engine{Resolver: r}
}

// Snapshot bundles a computation with the filter state that produced it.
type Snapshot struct {
	KPIs    WeeklyKPIData         `json:"kpis"`
	Filters filters.FilterContext `json:"filters"`
	Summary filters.Summary       `json:"summary"`
}

// FetchScope returns what a source has to load for the given filters.
// The date bounds cover both the previous and the current range.
func (e *Engine) FetchScope(f filters.FilterContext) (crm.Scope, RangePair, error) {
	f = f.Canonical()
	ranges, err := e.Resolver.Resolve(f.TimeWindow, f.Explicit)
	if err != nil {
		return crm.Scope{}, RangePair{}, err
	}
	return crm.Scope{
		PrincipalIDs: f.Principal.IDs(),
		Start:        ranges.Previous.Start,
		End:          ranges.Current.End,
	}, ranges, nil
}

// Compute calculates the six KPIs over already materialized sources.
// A failed fetch (sources.Err) is returned unchanged.
func (e *Engine) Compute(f filters.FilterContext, sources crm.Sources) (WeeklyKPIData, error) {
	if sources.Err != nil {
		return WeeklyKPIData{}, sources.Err
	}

	now := e.Resolver.CurrentTime()
	f = f.Canonical()
	ranges, err := e.Resolver.ResolveAt(now, f.TimeWindow, f.Explicit)
	if err != nil {
		return WeeklyKPIData{}, err
	}

	b := Partition(sources, ranges, f, now, e.Resolver.DayOf(now))

	return WeeklyKPIData{
		OpportunitiesMoved: CalculateOpportunitiesMoved(b),
		InteractionsLogged: CalculateInteractionsLogged(b, e.Resolver.WeekOf(now)),
		ActionItemsDue:     CalculateActionItemsDue(b),
		PipelineValue:      CalculatePipelineValue(b),
		OverdueItems:       CalculateOverdueItems(b, now),
		CompletedTasks:     CalculateCompletedTasks(b),
		Ranges:             ranges,
		GeneratedAt:        now,
	}, nil
}

// Run fetches from src and computes a snapshot for f.
func (e *Engine) Run(ctx context.Context, f filters.FilterContext, src crm.Source) (Snapshot, error) {
	f = f.Canonical()
	scope, ranges, err := e.FetchScope(f)
	if err != nil {
		return Snapshot{}, err
	}

	sources := crm.Fetch(ctx, src, scope)
	kpis, err := e.Compute(f, sources)
	if err != nil {
		return Snapshot{}, err
	}

	log.Debug().
		Str("range", ranges.Current.Label()).
		Bool("stageLog", sources.HasStageHistory).
		Int("opportunities", len(sources.Opportunities)).
		Int("interactions", len(sources.Interactions)).
		Msg("KPIs computed")

	return Snapshot{
		KPIs:    kpis,
		Filters: f,
		Summary: filters.ComputeSummary(f),
	}, nil
}
