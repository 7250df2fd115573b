// Package session keeps one selection machine per guardian browsing session.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Domenick1991/tutorbooking/internal/pricing"
	"github.com/Domenick1991/tutorbooking/internal/selection"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session: not found")

type entry struct {
	machine  *selection.Machine
	lastSeen time.Time
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	pricing  *pricing.Calculator
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a manager whose idle sessions expire after ttl. A zero ttl disables expiry.
func NewManager(calc *pricing.Calculator, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		pricing:  calc,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *Manager) Create() (string, *selection.Machine) {
	id := uuid.NewString()
	machine := selection.New(m.pricing)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &entry{machine: machine, lastSeen: m.now()}
	return id, machine
}

func (m *Manager) Get(id string) (*selection.Machine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = m.now()
	return e.machine, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the ttl and returns how many were removed.
// Sessions with a submission in flight are kept.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) && !e.machine.View().Submitting {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
