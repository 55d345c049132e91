package auditmock

import (
	"context"
	"sync"

	domain "loan-backoffice/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo records every created entry so tests can assert on the audit trail.
// CreateFn, when set, replaces the recording.
type Repo struct {
	CreateFn func(ctx context.Context, e *domain.Entry) error

	mu      sync.Mutex
	Entries []*domain.Entry
}

func (m *Repo) Create(ctx context.Context, e *domain.Entry) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *Repo) ListByEntity(_ context.Context, entityType, entityID string) ([]*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Entry
	for _, e := range m.Entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Actions returns the recorded action names in order.
func (m *Repo) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Action
	}
	return out
}
