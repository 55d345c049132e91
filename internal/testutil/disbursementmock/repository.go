package disbursementmock

import (
	"context"

	domain "loan-backoffice/internal/domain/disbursement"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes succeed.
type Repo struct {
	CreateFn              func(ctx context.Context, d *domain.Disbursement) error
	GetByIDFn             func(ctx context.Context, id string) (*domain.Disbursement, error)
	ListFn                func(ctx context.Context, f domain.Filter) ([]*domain.Disbursement, error)
	CompareAndSetStatusFn func(ctx context.Context, id string, from []domain.Status, to domain.Status, c domain.Changes) (bool, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Disbursement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Disbursement, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]*domain.Disbursement, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) CompareAndSetStatus(ctx context.Context, id string, from []domain.Status, to domain.Status, c domain.Changes) (bool, error) {
	if m.CompareAndSetStatusFn != nil {
		return m.CompareAndSetStatusFn(ctx, id, from, to, c)
	}
	return false, context.Canceled
}
