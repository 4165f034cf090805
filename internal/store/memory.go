package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a process-local Store. Contents are lost on restart.
type Memory struct {
	mu        sync.RWMutex
	schedules map[uuid.UUID]*Schedule
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{schedules: make(map[uuid.UUID]*Schedule)}
}

func (m *Memory) Save(_ context.Context, s *Schedule) error {
	cp := *s
	m.mu.Lock()
	m.schedules[s.ID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (*Schedule, error) {
	m.mu.RLock()
	s, ok := m.schedules[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.schedules {
		if s.CreatedAt.Before(cutoff) {
			delete(m.schedules, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
