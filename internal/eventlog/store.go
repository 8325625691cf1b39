package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventStore provides thread-safe, chronological storage for StageEvents.
type EventStore struct {
	mu   sync.RWMutex
	logs map[string][]StageEvent // Partitioned by source ID (dataset name)
}

// NewEventStore creates a new empty EventStore.
func NewEventStore() *EventStore {
	return &EventStore{
		logs: make(map[string][]StageEvent),
	}
}

// Append adds new events to the log for a given source, ensuring chronological order and deduplication.
func (s *EventStore) Append(sourceID string, events []StageEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.logs[sourceID]

	existing := make(map[string]bool, len(entries))
	for _, e := range entries {
		existing[e.identity()] = true
	}

	newCount := 0
	for _, e := range events {
		id := e.identity()
		if existing[id] {
			continue
		}
		existing[id] = true
		entries = append(entries, e)
		newCount++
	}

	if newCount == 0 {
		return
	}

	// Timestamp first, then opportunity for deterministic ordering of simultaneous moves
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp < entries[j].Timestamp
		}
		return entries[i].OpportunityID < entries[j].OpportunityID
	})

	s.logs[sourceID] = entries
}

// Clear drops every event held for a source.
func (s *EventStore) Clear(sourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, sourceID)
}

// Load reads events from a JSONL file for the given source.
// A missing file is not an error: the source simply has no stage history.
func (s *EventStore) Load(dir string, sourceID string) error {
	path := filepath.Join(dir, fmt.Sprintf("%s.jsonl", sourceID))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open stage log: %w", err)
	}
	defer file.Close()

	var events []StageEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e StageEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Skipping invalid JSON line in stage log")
			continue
		}
		if e.OpportunityID == "" || e.ToStage == "" {
			log.Warn().Str("source", sourceID).Msg("Skipping incomplete stage event")
			continue
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stage log: %w", err)
	}

	log.Debug().Str("source", sourceID).Int("count", len(events)).Msg("Loaded stage events")
	s.Append(sourceID, events)
	return nil
}

// Save persists events for the given source to a JSONL file via an atomic rename.
func (s *EventStore) Save(dir string, sourceID string) error {
	s.mu.RLock()
	logData := append([]StageEvent(nil), s.logs[sourceID]...)
	s.mu.RUnlock()

	if len(logData) == 0 {
		return nil
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.jsonl", sourceID))
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp stage log: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, e := range logData {
		if err := encoder.Encode(e); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename stage log: %w", err)
	}

	log.Info().Str("source", sourceID).Int("count", len(logData)).Msg("Stage events saved")
	return nil
}

// GetLatestTimestamp returns the timestamp of the most recent event for a source.
func (s *EventStore) GetLatestTimestamp(sourceID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logData := s.logs[sourceID]
	if len(logData) == 0 {
		return time.Time{}
	}
	return time.UnixMicro(logData[len(logData)-1].Timestamp)
}

// Count returns the number of events in the store for a source.
func (s *EventStore) Count(sourceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[sourceID])
}

// GetEventsInRange returns a copy of events within [start, end].
// A zero start or end leaves that side unbounded.
func (s *EventStore) GetEventsInRange(sourceID string, start, end time.Time) []StageEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logData, ok := s.logs[sourceID]
	if !ok {
		return nil
	}

	var result []StageEvent
	for _, e := range logData {
		if !start.IsZero() && e.Timestamp < start.UnixMicro() {
			continue
		}
		if !end.IsZero() && e.Timestamp > end.UnixMicro() {
			continue
		}
		result = append(result, e)
	}
	return result
}

// GetEventsForOpportunity returns the full stage history for a single opportunity.
func (s *EventStore) GetEventsForOpportunity(sourceID string, opportunityID string) []StageEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []StageEvent
	for _, e := range s.logs[sourceID] {
		if e.OpportunityID == opportunityID {
			result = append(result, e)
		}
	}
	return result
}

// identity computes a unique string identifier for an event to aid deduplication.
func (e StageEvent) identity() string {
	return fmt.Sprintf("%s|%d|%s|%s",
		e.OpportunityID,
		e.Timestamp,
		e.FromStage,
		e.ToStage,
	)
}
