package uowmock

import (
	"context"
	"errors"
	"testing"

	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/testutil/disbursementmock"
	"loan-backoffice/internal/testutil/notemock"
)

func TestUoW_WithinTx_ForwardsRepos(t *testing.T) {
	ctx := context.Background()
	disb := &disbursementmock.Repo{}
	notes := &notemock.Repo{}
	repos := uow.Repos{Disbursements: disb, Notes: notes}

	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			return fn(repos)
		},
	}
	called := false
	err := m.WithinTx(ctx, func(r uow.Repos) error {
		called = true
		if r.Disbursements != disb || r.Notes != notes {
			t.Fatalf("WithinTx: repos not forwarded")
		}
		return nil
	})
	if err != nil || !called {
		t.Fatalf("WithinTx: err=%v called=%v", err, called)
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	m := Passthrough(uow.Repos{})
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	m := &UoW{}
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_FluentSetterAndReset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}
	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil })
	if m.WithinTxFn == nil {
		t.Fatalf("fluent setter didn't assign")
	}
	m.Reset()
	if m.WithinTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
