package accrualmock

import (
	"context"

	domain "loan-backoffice/internal/domain/accrual"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	UpsertFn       func(ctx context.Context, a *domain.InterestAccrual) error
	ListByNoteFn   func(ctx context.Context, noteID string) ([]*domain.InterestAccrual, error)
	LatestByNoteFn func(ctx context.Context, noteIDs []string) (map[string]*domain.InterestAccrual, error)
}

func (m *Repo) Upsert(ctx context.Context, a *domain.InterestAccrual) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, a)
	}
	return nil
}

func (m *Repo) ListByNote(ctx context.Context, noteID string) ([]*domain.InterestAccrual, error) {
	if m.ListByNoteFn != nil {
		return m.ListByNoteFn(ctx, noteID)
	}
	return nil, nil
}

func (m *Repo) LatestByNote(ctx context.Context, noteIDs []string) (map[string]*domain.InterestAccrual, error) {
	if m.LatestByNoteFn != nil {
		return m.LatestByNoteFn(ctx, noteIDs)
	}
	return map[string]*domain.InterestAccrual{}, nil
}
