package crm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"crm-kpi/internal/eventlog"
)

// FileSource serves a JSON dataset export plus an optional "<name>.stages.jsonl" stage log
// next to it. The export is re-read whenever its modification time changes.
type FileSource struct {
	path     string
	loc      *time.Location
	stagesID string

	mu      sync.Mutex
	modTime time.Time
	data    Dataset
	events  *eventlog.EventStore
	history bool
}

// NewFileSource creates a source for the dataset at path. Zone-less timestamps are read in loc.
func NewFileSource(path string, loc *time.Location) *FileSource {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &FileSource{
		path:     path,
		loc:      loc,
		stagesID: base + ".stages",
		events:   eventlog.NewEventStore(),
	}
}

// Path returns the dataset location.
func (s *FileSource) Path() string {
	return s.path
}

// StageLogPath returns where the optional stage log is expected.
func (s *FileSource) StageLogPath() string {
	return filepath.Join(filepath.Dir(s.path), s.stagesID+".jsonl")
}

func (s *FileSource) load(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to stat dataset: %w", err)
	}
	if !s.modTime.IsZero() && info.ModTime().Equal(s.modTime) {
		return s.data, nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read dataset: %w", err)
	}
	dto, err := DecodeDataset(raw)
	if err != nil {
		return Dataset{}, err
	}
	s.data = MapDataset(dto, s.loc)

	s.events.Clear(s.stagesID)
	if err := s.events.Load(filepath.Dir(s.path), s.stagesID); err != nil {
		return Dataset{}, err
	}
	_, statErr := os.Stat(s.StageLogPath())
	s.history = statErr == nil

	s.modTime = info.ModTime()
	log.Info().
		Str("path", s.path).
		Int("opportunities", len(s.data.Opportunities)).
		Int("interactions", len(s.data.Interactions)).
		Int("followUps", len(s.data.FollowUps)).
		Int("stageEvents", s.events.Count(s.stagesID)).
		Msg("Dataset loaded")
	return s.data, nil
}

func (s *FileSource) Opportunities(ctx context.Context, scope Scope) ([]Opportunity, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return scopeOpportunities(ds.Opportunities, scope), nil
}

func (s *FileSource) Interactions(ctx context.Context, scope Scope) ([]Interaction, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return scopeInteractions(ds.Interactions, scope, true), nil
}

func (s *FileSource) FollowUps(ctx context.Context, scope Scope) ([]FollowUp, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return scopeInteractions(ds.FollowUps, scope, false), nil
}

// StageEvents returns nil when no stage log sits next to the dataset.
func (s *FileSource) StageEvents(ctx context.Context, scope Scope) ([]eventlog.StageEvent, error) {
	if _, err := s.load(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	history := s.history
	s.mu.Unlock()
	if !history {
		return nil, nil
	}

	events := s.events.GetEventsInRange(s.stagesID, time.Time{}, scope.End)
	if events == nil {
		events = []eventlog.StageEvent{}
	}
	return scopeEvents(events, scope), nil
}
