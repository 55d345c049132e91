package disbursement

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-backoffice/internal/domain/apperr"
	"loan-backoffice/internal/domain/audit"
	domain "loan-backoffice/internal/domain/disbursement"
	"loan-backoffice/internal/domain/note"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/testutil/auditmock"
	"loan-backoffice/internal/testutil/dbtest"
	"loan-backoffice/internal/testutil/disbursementmock"
	"loan-backoffice/internal/testutil/uowmock"

	"github.com/shopspring/decimal"
)

func TestUsecase_Create(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"positive amount", "1500.456", nil},
		{"zero amount", "0", apperr.ErrValidation},
		{"negative amount", "-10", apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *domain.Disbursement
			uc := NewUsecase(&disbursementmock.Repo{
				CreateFn: func(_ context.Context, d *domain.Disbursement) error {
					created = d
					return nil
				},
			}, uowmock.New())

			got, err := uc.Create(context.Background(), CreateInput{
				RequestedAmount: decimal.RequireFromString(tt.amount),
				RequestDate:     time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC),
				CreatedBy:       "u1",
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				if created != nil {
					t.Fatal("repo.Create must not be called on invalid input")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if got.Status != domain.StatusPending {
				t.Errorf("status = %s, want pending", got.Status)
			}
			if len(got.ID) != 32 {
				t.Errorf("id length = %d", len(got.ID))
			}
			if !got.RequestedAmount.Equal(decimal.RequireFromString("1500.46")) {
				t.Errorf("amount = %s, want 1500.46", got.RequestedAmount)
			}
			if got.RequestDate.Hour() != 0 {
				t.Errorf("request date not truncated: %v", got.RequestDate)
			}
			if got.ApprovedBy != nil || got.ApprovedAt != nil {
				t.Error("approval fields must be empty on create")
			}
		})
	}
}

func TestUsecase_Approve(t *testing.T) {
	pending := func() *domain.Disbursement { return &domain.Disbursement{ID: "D1", Status: domain.StatusPending} }

	tests := []struct {
		name       string
		casOK      bool
		casErr     error
		current    *domain.Disbursement
		getErr     error
		wantErr    error
		wantAudits int
	}{
		{
			name:       "pending to approved",
			casOK:      true,
			current:    &domain.Disbursement{ID: "D1", Status: domain.StatusApproved},
			wantAudits: 1,
		},
		{
			name:    "already approved",
			casOK:   false,
			current: &domain.Disbursement{ID: "D1", Status: domain.StatusApproved},
			wantErr: apperr.ErrInvalidState,
		},
		{
			name:    "cancelled",
			casOK:   false,
			current: &domain.Disbursement{ID: "D1", Status: domain.StatusCancelled},
			wantErr: apperr.ErrInvalidState,
		},
		{
			name:    "unknown id",
			casOK:   false,
			getErr:  domain.ErrNotFound,
			wantErr: apperr.ErrNotFound,
		},
		{
			name:    "store failure",
			casErr:  errors.New("db down"),
			current: pending(),
			wantErr: errors.New("db down"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotChanges domain.Changes
			var gotFrom []domain.Status
			repo := &disbursementmock.Repo{
				CompareAndSetStatusFn: func(_ context.Context, id string, from []domain.Status, to domain.Status, c domain.Changes) (bool, error) {
					if to != domain.StatusApproved {
						t.Fatalf("target = %s", to)
					}
					gotFrom, gotChanges = from, c
					return tt.casOK, tt.casErr
				},
				GetByIDFn: func(context.Context, string) (*domain.Disbursement, error) {
					return tt.current, tt.getErr
				},
			}
			audits := &auditmock.Repo{}
			uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Disbursements: repo, Audit: audits}))

			_, err := uc.Approve(context.Background(), "D1", "checker-7")
			switch {
			case tt.casErr != nil:
				if err == nil || err.Error() != tt.casErr.Error() {
					t.Fatalf("want %v, got %v", tt.casErr, err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
			case err != nil:
				t.Fatalf("unexpected err: %v", err)
			}
			if len(audits.Entries) != tt.wantAudits {
				t.Fatalf("audit entries = %d, want %d", len(audits.Entries), tt.wantAudits)
			}
			if tt.wantAudits == 1 {
				e := audits.Entries[0]
				if e.Action != audit.ActionDisbursementApproved || e.ActorID != "checker-7" || e.EntityID != "D1" {
					t.Fatalf("audit entry = %+v", e)
				}
				if len(gotFrom) != 1 || gotFrom[0] != domain.StatusPending {
					t.Fatalf("guard = %v, want [pending]", gotFrom)
				}
				if gotChanges.ApprovedBy == nil || *gotChanges.ApprovedBy != "checker-7" || gotChanges.ApprovedAt == nil {
					t.Fatalf("approval fields not written together: %+v", gotChanges)
				}
			}
		})
	}
}

func TestUsecase_Lifecycle_SQLite(t *testing.T) {
	ctx := context.Background()
	l := dbtest.NewLedger(t)
	uc := NewUsecase(l.Repos.Disbursements, l.UoW)

	newPending := func() *domain.Disbursement {
		d, err := uc.Create(ctx, CreateInput{RequestedAmount: decimal.NewFromInt(5000), RequestDate: time.Now(), CreatedBy: "maker"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return d
	}

	t.Run("cancel then approve is invalid", func(t *testing.T) {
		d := newPending()
		if _, err := uc.Cancel(ctx, d.ID, "maker"); err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		if _, err := uc.Approve(ctx, d.ID, "checker"); !errors.Is(err, apperr.ErrInvalidState) {
			t.Fatalf("Approve after cancel: want InvalidState, got %v", err)
		}
		got, _ := uc.Get(ctx, d.ID)
		if got.Status != domain.StatusCancelled || got.ApprovedBy != nil {
			t.Fatalf("record changed by rejected approve: %+v", got)
		}
	})

	t.Run("approve sets approver once and audits", func(t *testing.T) {
		d := newPending()
		got, err := uc.Approve(ctx, d.ID, "checker")
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if got.Status != domain.StatusApproved || got.ApprovedBy == nil || *got.ApprovedBy != "checker" || got.ApprovedAt == nil {
			t.Fatalf("approved record = %+v", got)
		}
		if _, err := uc.Approve(ctx, d.ID, "someone-else"); !errors.Is(err, apperr.ErrInvalidState) {
			t.Fatalf("second Approve: want InvalidState, got %v", err)
		}
		again, _ := uc.Get(ctx, d.ID)
		if *again.ApprovedBy != "checker" {
			t.Fatalf("approver overwritten: %s", *again.ApprovedBy)
		}
		entries, err := l.Repos.Audit.ListByEntity(ctx, "disbursement", d.ID)
		if err != nil || len(entries) != 1 || entries[0].ActorID != "checker" {
			t.Fatalf("audit = %+v, %v", entries, err)
		}
	})

	t.Run("update only while pending", func(t *testing.T) {
		d := newPending()
		amt := decimal.RequireFromString("7250.10")
		desc := "bridge loan"
		got, err := uc.Update(ctx, d.ID, UpdateInput{RequestedAmount: &amt, Description: &desc})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if !got.RequestedAmount.Equal(amt) || got.Description != desc || got.Status != domain.StatusPending {
			t.Fatalf("updated = %+v", got)
		}
		if _, err := uc.Approve(ctx, d.ID, "checker"); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if _, err := uc.Update(ctx, d.ID, UpdateInput{Description: &desc}); !errors.Is(err, apperr.ErrInvalidState) {
			t.Fatalf("Update after approve: want InvalidState, got %v", err)
		}
	})

	t.Run("cancel approved is allowed, unknown is not found", func(t *testing.T) {
		d := newPending()
		if _, err := uc.Approve(ctx, d.ID, "checker"); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if _, err := uc.Cancel(ctx, d.ID, "checker"); err != nil {
			t.Fatalf("Cancel approved: %v", err)
		}
		if _, err := uc.Cancel(ctx, d.ID, "checker"); !errors.Is(err, apperr.ErrInvalidState) {
			t.Fatalf("Cancel twice: want InvalidState, got %v", err)
		}
		if _, err := uc.Cancel(ctx, "ffffffffffffffffffffffffffffffff", "checker"); !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("Cancel unknown: want NotFound, got %v", err)
		}
	})

	t.Run("cancel refused once a note is issued", func(t *testing.T) {
		d := newPending()
		if _, err := uc.Approve(ctx, d.ID, "checker"); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		if err := l.Repos.Notes.Create(ctx, &note.PromissoryNote{
			ID:                 "0123456789abcdef0123456789abcdef",
			Number:             note.FormatNumber(2025, 1),
			DisbursementID:     d.ID,
			PrincipalAmount:    d.RequestedAmount,
			InterestRateAnnual: decimal.RequireFromString("0.145"),
			IssueDate:          issued,
			DueDate:            issued.AddDate(1, 0, 0),
			Status:             note.StatusActive,
		}); err != nil {
			t.Fatalf("seed note: %v", err)
		}
		if _, err := uc.Cancel(ctx, d.ID, "checker"); !errors.Is(err, apperr.ErrInvalidState) {
			t.Fatalf("Cancel with note: want InvalidState, got %v", err)
		}
		got, _ := uc.Get(ctx, d.ID)
		if got.Status != domain.StatusApproved {
			t.Fatalf("status = %s, want approved", got.Status)
		}
		entries, _ := l.Repos.Audit.ListByEntity(ctx, "disbursement", d.ID)
		if len(entries) != 1 {
			t.Fatalf("audit entries = %d, want only the approval", len(entries))
		}
	})

	t.Run("list filters by status", func(t *testing.T) {
		got, err := uc.List(ctx, ListInput{Status: "cancelled"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for _, d := range got {
			if d.Status != domain.StatusCancelled {
				t.Fatalf("unexpected status %s", d.Status)
			}
		}
		if len(got) != 2 {
			t.Fatalf("cancelled count = %d, want 2", len(got))
		}
		if _, err := uc.List(ctx, ListInput{Status: "bogus"}); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("bogus status: want validation error, got %v", err)
		}
	})
}
