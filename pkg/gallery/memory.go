package gallery

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process gallery store. It backs tests and single-user
// CLI sessions where standing up MongoDB would be ceremony.
type Memory struct {
	mu       sync.RWMutex
	drawings map[string]Drawing
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{drawings: make(map[string]Drawing)}
}

// Save stores a new drawing.
func (m *Memory) Save(ctx context.Context, d *Drawing) error {
	if err := normalize(d); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.drawings[d.ID]; taken {
		return fmt.Errorf("save %s: %w", d.ID, ErrExists)
	}
	m.drawings[d.ID] = *d
	return nil
}

// Get returns the drawing with the given ID.
func (m *Memory) Get(ctx context.Context, id string) (*Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drawings[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return &d, nil
}

// List returns the newest drawings, most recent first.
func (m *Memory) List(ctx context.Context, limit int) ([]Summary, error) {
	m.mu.RLock()
	entries := make([]Summary, 0, len(m.drawings))
	for _, d := range m.drawings {
		entries = append(entries, Summary{
			ID:        d.ID,
			Source:    d.Source,
			Formula:   d.Formula,
			CreatedAt: d.CreatedAt,
		})
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})

	if n := clampLimit(limit); len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Close is a no-op.
func (m *Memory) Close(ctx context.Context) error {
	return nil
}

var _ Store = (*Memory)(nil)
