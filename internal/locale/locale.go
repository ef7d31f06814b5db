// Package locale holds the active locale as explicit process state. It is
// loaded once from client-side storage and changes are pushed to observers.
package locale

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Observer is called with the new locale after every successful change.
type Observer func(code string)

// State is the active locale. The zero value is not usable; call New.
type State struct {
	mu        sync.RWMutex
	settings  types.Table
	current   string
	observers map[int]Observer
	nextID    int
}

// New creates a State persisted in the settings table. fallback is used
// until Init finds a stored value.
func New(settings types.Table, fallback string) *State {
	if !types.IsSupportedLocale(fallback) {
		fallback = types.LocaleEnglish
	}
	return &State{settings: settings, current: fallback, observers: make(map[int]Observer)}
}

// Init loads the stored locale. A missing or unsupported stored value keeps
// the fallback.
func (s *State) Init() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	got, err := s.settings.Get(types.SettingLocale)
	if errors.Is(err, types.ErrNotFound) {
		return s.current, nil
	}
	if err != nil {
		return s.current, fmt.Errorf("loading locale: %w", err)
	}
	if st, ok := got.(*types.Setting); ok && types.IsSupportedLocale(st.Value) {
		s.current = st.Value
	}
	return s.current, nil
}

// Current returns the active locale code.
func (s *State) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set persists code and notifies observers. Setting the active locale again
// is a no-op.
func (s *State) Set(code string) error {
	if !types.IsSupportedLocale(code) {
		return fmt.Errorf("%w: %q", types.ErrUnknownLocale, code)
	}

	s.mu.Lock()
	if code == s.current {
		s.mu.Unlock()
		return nil
	}
	if _, err := s.settings.Set(types.SettingLocale, &types.Setting{Key: types.SettingLocale, Value: code}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("saving locale: %w", err)
	}
	s.current = code
	observers := make([]Observer, 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if o, ok := s.observers[id]; ok {
			observers = append(observers, o)
		}
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(code)
	}
	return nil
}

// Subscribe registers o and returns a function that removes it. Observers
// run in subscription order, outside the State lock.
func (s *State) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}
