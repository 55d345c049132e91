package notemock

import (
	"context"

	domain "loan-backoffice/internal/domain/note"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn              func(ctx context.Context, n *domain.PromissoryNote) error
	GetByIDFn             func(ctx context.Context, id string) (*domain.PromissoryNote, error)
	GetByDisbursementIDFn func(ctx context.Context, disbursementID string) (*domain.PromissoryNote, error)
	ListFn                func(ctx context.Context, f domain.Filter) ([]*domain.PromissoryNote, error)
	CountByNumberPrefixFn func(ctx context.Context, prefix string) (int64, error)
	CompareAndSetStatusFn func(ctx context.Context, id string, from []domain.Status, to domain.Status, s *domain.Settlement) (bool, error)
}

func (m *Repo) Create(ctx context.Context, n *domain.PromissoryNote) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, n)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.PromissoryNote, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

// GetByDisbursementID defaults to ErrNotFound, the common case when issuing.
func (m *Repo) GetByDisbursementID(ctx context.Context, disbursementID string) (*domain.PromissoryNote, error) {
	if m.GetByDisbursementIDFn != nil {
		return m.GetByDisbursementIDFn(ctx, disbursementID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]*domain.PromissoryNote, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	if m.CountByNumberPrefixFn != nil {
		return m.CountByNumberPrefixFn(ctx, prefix)
	}
	return 0, nil
}

func (m *Repo) CompareAndSetStatus(ctx context.Context, id string, from []domain.Status, to domain.Status, s *domain.Settlement) (bool, error) {
	if m.CompareAndSetStatusFn != nil {
		return m.CompareAndSetStatusFn(ctx, id, from, to, s)
	}
	return false, context.Canceled
}
