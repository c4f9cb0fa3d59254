// Package tabs implements a set of mutually exclusive panels selected by
// key, with exactly one panel visible at a time.
package tabs

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownTab = errors.New("unknown tab")
	ErrNoTabs     = errors.New("tab set needs at least one tab")
	ErrDuplicate  = errors.New("duplicate tab key")
)

// Tab is one control and the panel it reveals.
type Tab struct {
	Key   string
	Label string
}

// Control is a tab as rendered: its label and whether it is active.
type Control struct {
	Tab
	Active bool
}

// Set is a fixed, ordered tab set. The first tab is active after
// construction.
type Set struct {
	mu     sync.RWMutex
	tabs   []Tab
	index  map[string]int
	active int
}

// New creates a set with the first tab active. Keys must be unique; an
// empty label defaults to the key.
func New(tabs ...Tab) (*Set, error) {
	if len(tabs) == 0 {
		return nil, ErrNoTabs
	}
	s := &Set{
		tabs:  make([]Tab, len(tabs)),
		index: make(map[string]int, len(tabs)),
	}
	for i, t := range tabs {
		if _, ok := s.index[t.Key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, t.Key)
		}
		if t.Label == "" {
			t.Label = t.Key
		}
		s.tabs[i] = t
		s.index[t.Key] = i
	}
	return s, nil
}

// Select activates the control keyed by key and shows only its panel. An
// unknown key leaves the set as it was.
func (s *Set) Select(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTab, key)
	}
	s.active = i
	return nil
}

// SelectIndex selects the i-th tab, zero based.
func (s *Set) SelectIndex(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.tabs) {
		return fmt.Errorf("%w: index %d", ErrUnknownTab, i)
	}
	s.active = i
	return nil
}

// Next moves to the following tab, wrapping around.
func (s *Set) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = (s.active + 1) % len(s.tabs)
	return s.tabs[s.active].Key
}

// Prev moves to the preceding tab, wrapping around.
func (s *Set) Prev() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = (s.active - 1 + len(s.tabs)) % len(s.tabs)
	return s.tabs[s.active].Key
}

// Active returns the key of the active tab.
func (s *Set) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tabs[s.active].Key
}

// ActiveIndex returns the position of the active tab.
func (s *Set) ActiveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Visible reports whether the panel named key is shown.
func (s *Set) Visible(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[key]
	return ok && i == s.active
}

// Controls returns every tab with its active flag, in order.
func (s *Set) Controls() []Control {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Control, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = Control{Tab: t, Active: i == s.active}
	}
	return out
}

// Len returns the number of tabs.
func (s *Set) Len() int { return len(s.tabs) }
