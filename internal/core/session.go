package core

import (
	"context"
	"sync"
	"time"
)

// MemorySession is a single-slot Session held in process memory
type MemorySession struct {
	mu       sync.RWMutex
	state    SessionState
	set      bool
	lastSeen time.Time
}

// NewMemorySession creates an empty session
func NewMemorySession() *MemorySession {
	return &MemorySession{lastSeen: time.Now()}
}

// Put replaces the most recent entry
func (s *MemorySession) Put(ctx context.Context, app LoanApplication, result *ScoringResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.state = SessionState{Application: app, Result: result, UpdatedAt: now}
	s.set = true
	s.lastSeen = now
	return nil
}

// Get returns the most recent entry
func (s *MemorySession) Get(ctx context.Context) (SessionState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = time.Now()
	return s.state, s.set, nil
}

// LastSeen returns when the session was last read or written
func (s *MemorySession) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
