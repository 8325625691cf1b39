package filters

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Session owns the current filter context and persists every change to a Store.
type Session struct {
	mu      sync.Mutex
	store   Store
	key     string
	current FilterContext
}

// NewSession restores the context saved under key, or starts from Default.
// A corrupt saved context is discarded with a warning.
func NewSession(store Store, key string) (*Session, error) {
	s := &Session{store: store, key: key, current: Default()}

	data, ok, err := store.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		var saved FilterContext
		if err := json.Unmarshal(data, &saved); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable filter state")
		} else {
			s.current = saved.Canonical()
		}
	}
	return s, nil
}

// Current returns a copy of the active context.
func (s *Session) Current() FilterContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Canonical()
}

func (s *Session) ApplyQuickView(preset string) (FilterContext, error) {
	return s.update(func(c FilterContext) (FilterContext, error) {
		return ApplyQuickView(c, preset)
	})
}

func (s *Session) SetField(key string, values ...string) (FilterContext, error) {
	return s.update(func(c FilterContext) (FilterContext, error) {
		return SetField(c, key, values...)
	})
}

// Replace installs a complete context.
func (s *Session) Replace(ctx FilterContext) (FilterContext, error) {
	return s.update(func(FilterContext) (FilterContext, error) {
		return ctx.Canonical(), nil
	})
}

// Reset returns to the default context.
func (s *Session) Reset() (FilterContext, error) {
	return s.Replace(Default())
}

func (s *Session) update(fn func(FilterContext) (FilterContext, error)) (FilterContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.current)
	if err != nil {
		return s.current, err
	}
	if next.Equal(s.current) {
		return next, nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		return s.current, fmt.Errorf("failed to encode filter state: %w", err)
	}
	if err := s.store.Put(s.key, data); err != nil {
		return s.current, err
	}

	s.current = next
	log.Debug().Str("key", s.key).Str("summary", ComputeSummary(next).FilterSummary).Msg("Filter state updated")
	return next, nil
}
