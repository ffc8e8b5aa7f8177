// SPDX-License-Identifier: MPL-2.0

package gate

import "sync"

// State holds the three memoized readiness facts. Facts are monotonic: once
// a mark method sets one true it stays true for the life of the process.
// The ordering invariant (up implies installed, initialized implies up) is
// enforced by the Gate's verification sequence, not by State itself: the
// facts are independent bits and the mark methods accept any order.
type State struct {
	mu          sync.Mutex
	installed   bool
	up          bool
	initialized bool
}

// NewState returns a State with all facts unset.
func NewState() *State {
	return &State{}
}

// Installed reports the memoized installation fact.
func (s *State) Installed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installed
}

// Up reports the memoized running fact.
func (s *State) Up() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.up
}

// Initialized reports the memoized initialization fact.
func (s *State) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *State) markInstalled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installed = true
}

func (s *State) markUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.up = true
}

func (s *State) markInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
}
