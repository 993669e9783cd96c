package storage

import (
	"context"
	"sync"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
)

// Memory is an in-process Store, used by tests and dry runs.
type Memory struct {
	mu    sync.Mutex
	obs   *model.Observation
	saves int
}

// NewMemory creates a memory store, optionally pre-seeded with an observation.
func NewMemory(seed *model.Observation) *Memory {
	m := &Memory{}
	if seed != nil {
		cp := seed.WithCheckedAt(seed.CheckedAt)
		m.obs = &cp
	}
	return m
}

func (m *Memory) Load(_ context.Context) (*model.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.obs == nil {
		return nil, ErrNotFound
	}
	cp := m.obs.WithCheckedAt(m.obs.CheckedAt)
	return &cp, nil
}

func (m *Memory) Save(_ context.Context, obs model.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := obs.WithCheckedAt(obs.CheckedAt)
	m.obs = &cp
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Memory) Close() error { return nil }
