package banktxmock

import (
	"context"
	"time"

	domain "loan-backoffice/internal/domain/banktx"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn         func(ctx context.Context, t *domain.BankTransaction) error
	GetByIDFn        func(ctx context.Context, id string) (*domain.BankTransaction, error)
	ListFn           func(ctx context.Context, f domain.Filter) ([]*domain.BankTransaction, error)
	MatchedNoteIDsFn func(ctx context.Context) ([]string, error)
	MarkMatchedFn    func(ctx context.Context, id, noteID, userID string, at time.Time) (bool, error)
	ClearMatchFn     func(ctx context.Context, id string) error
}

func (m *Repo) Create(ctx context.Context, t *domain.BankTransaction) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.BankTransaction, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]*domain.BankTransaction, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) MatchedNoteIDs(ctx context.Context) ([]string, error) {
	if m.MatchedNoteIDsFn != nil {
		return m.MatchedNoteIDsFn(ctx)
	}
	return nil, nil
}

func (m *Repo) MarkMatched(ctx context.Context, id, noteID, userID string, at time.Time) (bool, error) {
	if m.MarkMatchedFn != nil {
		return m.MarkMatchedFn(ctx, id, noteID, userID, at)
	}
	return false, context.Canceled
}

func (m *Repo) ClearMatch(ctx context.Context, id string) error {
	if m.ClearMatchFn != nil {
		return m.ClearMatchFn(ctx, id)
	}
	return nil
}
