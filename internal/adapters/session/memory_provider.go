package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/metrics"
	"go.uber.org/zap"
)

// MemoryProvider keeps sessions in process memory and drops idle ones
type MemoryProvider struct {
	sessions    map[string]*core.MemorySession
	mu          sync.Mutex
	logger      *zap.Logger
	idleTimeout time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryProvider creates a new in-memory session provider
func NewMemoryProvider(logger *zap.Logger, idleTimeout time.Duration) *MemoryProvider {
	p := &MemoryProvider{
		sessions:    make(map[string]*core.MemorySession),
		logger:      logger,
		idleTimeout: idleTimeout,
		stopCh:      make(chan struct{}),
	}

	if idleTimeout > 0 {
		go p.startSweepTask()
	}

	return p
}

// Session returns the session for id, creating it on first use
func (p *MemoryProvider) Session(ctx context.Context, id string) (core.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[id]
	if !ok {
		s = core.NewMemorySession()
		p.sessions[id] = s
		metrics.ActiveSessions.Set(float64(len(p.sessions)))
	}
	return s, nil
}

// Len returns the number of held sessions
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout
func (p *MemoryProvider) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := time.Now().Add(-p.idleTimeout)
	dropped := 0
	for id, s := range p.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(p.sessions, id)
			dropped++
		}
	}
	metrics.ActiveSessions.Set(float64(len(p.sessions)))

	if dropped > 0 {
		p.logger.Debug("Dropped idle sessions", zap.Int("dropped", dropped))
	}
	return dropped
}

func (p *MemoryProvider) startSweepTask() {
	interval := p.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Sweep()
		case <-p.stopCh:
			return
		}
	}
}

// Stop stops the background sweep
func (p *MemoryProvider) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}
