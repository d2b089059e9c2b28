// Package mode holds the process-wide dashboard mode: a single persisted
// slot switching the data gateway between demo fixtures and the live
// scoring service.
package mode

import (
	"fmt"
	"sync"

	"github.com/fairlens/riskwatch/internal/logger"
	"github.com/fairlens/riskwatch/internal/models"
)

// SettingKey is the persistent storage slot holding the selected mode.
const SettingKey = "fairlens-dashboard-mode"

// Persistence is the storage surface the store needs.
type Persistence interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Store is an injected, observable mode flag. Consumers read the mode at
// the start of each operation; a change triggers subscriber callbacks so
// open views re-fetch, never a mutation of an in-flight operation.
type Store struct {
	persist Persistence
	def     models.Mode

	mu     sync.Mutex
	nextID int
	subs   map[int]func(models.Mode)
}

// NewStore creates a mode store backed by persist. def applies whenever the
// slot is unset or unreadable.
func NewStore(persist Persistence, def models.Mode) *Store {
	return &Store{
		persist: persist,
		def:     def,
		subs:    make(map[int]func(models.Mode)),
	}
}

// Current returns the persisted mode, falling back to the configured
// default when the slot is empty or holds an unknown value.
func (s *Store) Current() models.Mode {
	value, err := s.persist.GetSetting(SettingKey)
	if err != nil {
		logger.Warn("Failed to read dashboard mode, using default %s: %v", s.def, err)
		return s.def
	}
	if m, ok := models.ParseMode(value); ok {
		return m
	}
	return s.def
}

// Set persists the mode and notifies all subscribers. Only explicit user
// action should call this.
func (s *Store) Set(m models.Mode) error {
	if m != models.ModeDemo && m != models.ModeLive {
		return fmt.Errorf("unknown dashboard mode %q", m)
	}
	if err := s.persist.SetSetting(SettingKey, string(m)); err != nil {
		return fmt.Errorf("failed to persist dashboard mode: %w", err)
	}

	s.mu.Lock()
	subs := make([]func(models.Mode), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may re-subscribe.
	for _, fn := range subs {
		fn(m)
	}
	return nil
}

// Subscribe registers a change callback and returns its unsubscribe func.
func (s *Store) Subscribe(fn func(models.Mode)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
