package crm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"crm-kpi/internal/eventlog"
)

// Scope narrows what a Source needs to return for one computation.
type Scope struct {
	// PrincipalIDs restricts entities to these principals. Empty means all.
	PrincipalIDs []string
	// Start and End bound interactions by date (inclusive). Zero values leave a side open.
	Start time.Time
	End   time.Time
}

// MatchesPrincipal reports whether id is inside the principal scope.
func (s Scope) MatchesPrincipal(id string) bool {
	return len(s.PrincipalIDs) == 0 || slices.Contains(s.PrincipalIDs, id)
}

// Contains reports whether t falls within the scope's date bounds.
func (s Scope) Contains(t time.Time) bool {
	if !s.Start.IsZero() && t.Before(s.Start) {
		return false
	}
	if !s.End.IsZero() && t.After(s.End) {
		return false
	}
	return true
}

// Source returns typed entity collections. Scoping is an optimisation: consumers re-filter.
type Source interface {
	Opportunities(ctx context.Context, scope Scope) ([]Opportunity, error)
	Interactions(ctx context.Context, scope Scope) ([]Interaction, error)
	FollowUps(ctx context.Context, scope Scope) ([]FollowUp, error)
}

// StageHistory is implemented by sources that keep a stage-change audit log.
// A nil slice with a nil error means the source has no log at all.
type StageHistory interface {
	StageEvents(ctx context.Context, scope Scope) ([]eventlog.StageEvent, error)
}

// Sources is a fully materialized snapshot of everything one computation reads.
type Sources struct {
	Opportunities   []Opportunity
	Interactions    []Interaction
	FollowUps       []FollowUp
	StageEvents     []eventlog.StageEvent
	HasStageHistory bool
	// Err is the composed fetch error, if any collection failed to load.
	Err error
}

// FromDataset wraps an in-memory dataset as already-resolved sources.
func FromDataset(ds Dataset) Sources {
	return Sources{
		Opportunities: ds.Opportunities,
		Interactions:  ds.Interactions,
		FollowUps:     ds.FollowUps,
	}
}

// Fetch loads every collection concurrently. Individual failures are joined into Sources.Err
// so the caller sees all of them at once.
func Fetch(ctx context.Context, src Source, scope Scope) Sources {
	var (
		out                                     Sources
		oppErr, interErr, followErr, historyErr error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out.Opportunities, oppErr = src.Opportunities(gctx, scope)
		return nil
	})

	g.Go(func() error {
		out.Interactions, interErr = src.Interactions(gctx, scope)
		return nil
	})

	g.Go(func() error {
		out.FollowUps, followErr = src.FollowUps(gctx, scope)
		return nil
	})

	if h, ok := src.(StageHistory); ok {
		g.Go(func() error {
			out.StageEvents, historyErr = h.StageEvents(gctx, scope)
			return nil
		})
	}

	_ = g.Wait()

	out.HasStageHistory = historyErr == nil && out.StageEvents != nil
	out.Err = errors.Join(
		wrapFetch("opportunities", oppErr),
		wrapFetch("interactions", interErr),
		wrapFetch("follow-ups", followErr),
		wrapFetch("stage events", historyErr),
	)
	if out.Err == nil {
		out.Err = ctx.Err()
	}
	return out
}

func wrapFetch(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}

// MemorySource serves a fixed dataset, scoping it the same way FileSource does.
type MemorySource struct {
	Data   Dataset
	Events []eventlog.StageEvent
}

func (m *MemorySource) Opportunities(ctx context.Context, scope Scope) ([]Opportunity, error) {
	return scopeOpportunities(m.Data.Opportunities, scope), nil
}

func (m *MemorySource) Interactions(ctx context.Context, scope Scope) ([]Interaction, error) {
	return scopeInteractions(m.Data.Interactions, scope, true), nil
}

func (m *MemorySource) FollowUps(ctx context.Context, scope Scope) ([]FollowUp, error) {
	return scopeInteractions(m.Data.FollowUps, scope, false), nil
}

func (m *MemorySource) StageEvents(ctx context.Context, scope Scope) ([]eventlog.StageEvent, error) {
	return scopeEvents(m.Events, scope), nil
}

func scopeOpportunities(opps []Opportunity, scope Scope) []Opportunity {
	out := make([]Opportunity, 0, len(opps))
	for _, o := range opps {
		if scope.MatchesPrincipal(o.PrincipalID) {
			out = append(out, o)
		}
	}
	return out
}

// Follow-ups are never date-bounded: overdue items stay visible until resolved.
func scopeInteractions(items []Interaction, scope Scope, byDate bool) []Interaction {
	out := make([]Interaction, 0, len(items))
	for _, i := range items {
		if !scope.MatchesPrincipal(i.OrganizationID) {
			continue
		}
		if byDate && !scope.Contains(i.InteractionDate) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Stage history is kept from the beginning up to the scope end so snapshots can be replayed.
func scopeEvents(events []eventlog.StageEvent, scope Scope) []eventlog.StageEvent {
	if events == nil {
		return nil
	}
	out := make([]eventlog.StageEvent, 0, len(events))
	for _, e := range events {
		if e.PrincipalID != "" && !scope.MatchesPrincipal(e.PrincipalID) {
			continue
		}
		if !scope.End.IsZero() && e.Time().After(scope.End) {
			continue
		}
		out = append(out, e)
	}
	return out
}
