package disbursement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"loan-backoffice/internal/domain/apperr"
	"loan-backoffice/internal/domain/audit"
	domain "loan-backoffice/internal/domain/disbursement"
	"loan-backoffice/internal/domain/note"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/infrastructure/metrics"
	"loan-backoffice/pkg/calendar"
	"loan-backoffice/pkg/id"
)

type Usecase struct {
	repo domain.Repository
	uow  uow.UnitOfWork
	now  func() time.Time
}

func NewUsecase(r domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{repo: r, uow: tx, now: func() time.Time { return time.Now().UTC() }}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.Disbursement, error) {
	if !in.RequestedAmount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if in.RequestDate.IsZero() {
		in.RequestDate = u.now()
	}
	d := &domain.Disbursement{
		ID:              id.NewID32(),
		RequestedAmount: in.RequestedAmount.Round(2),
		RequestDate:     calendar.Day(in.RequestDate),
		Description:     strings.TrimSpace(in.Description),
		Status:          domain.StatusPending,
		CreatedBy:       in.CreatedBy,
	}
	if err := u.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (u *Usecase) Get(ctx context.Context, disbursementID string) (*domain.Disbursement, error) {
	return u.repo.GetByID(ctx, disbursementID)
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]*domain.Disbursement, error) {
	f := domain.Filter{From: in.From, To: in.To}
	if in.Status != "" {
		s := domain.Status(in.Status)
		if !s.Valid() {
			return nil, fmt.Errorf("unknown disbursement status %q: %w", in.Status, apperr.ErrValidation)
		}
		f.Statuses = []domain.Status{s}
	}
	return u.repo.List(ctx, f)
}

// Update edits a disbursement that is still pending. The status guard makes a
// concurrent approve and edit mutually exclusive.
func (u *Usecase) Update(ctx context.Context, disbursementID string, in UpdateInput) (*domain.Disbursement, error) {
	c := domain.Changes{Description: in.Description}
	if in.RequestedAmount != nil {
		if !in.RequestedAmount.IsPositive() {
			return nil, domain.ErrInvalidAmount
		}
		amt := in.RequestedAmount.Round(2)
		c.RequestedAmount = &amt
	}
	if in.RequestDate != nil {
		day := calendar.Day(*in.RequestDate)
		c.RequestDate = &day
	}
	return transition(ctx, u.repo, disbursementID, domain.ActionEdit, c)
}

// Approve moves a pending disbursement to approved and records who did it.
func (u *Usecase) Approve(ctx context.Context, disbursementID, actor string) (*domain.Disbursement, error) {
	now := u.now()
	var out *domain.Disbursement
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := transition(ctx, r.Disbursements, disbursementID, domain.ActionApprove, domain.Changes{
			ApprovedBy: &actor,
			ApprovedAt: &now,
		})
		if err != nil {
			return err
		}
		out = d
		return r.Audit.Create(ctx, &audit.Entry{
			Action:     audit.ActionDisbursementApproved,
			EntityType: "disbursement",
			EntityID:   d.ID,
			ActorID:    actor,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.StatusTransitions.WithLabelValues("disbursement", string(domain.StatusApproved)).Inc()
	log.Printf("disbursement %s approved by %s", out.ID, actor)
	return out, nil
}

// Cancel is only legal before money has moved (pending or approved) and
// before a promissory note has been issued against the disbursement.
func (u *Usecase) Cancel(ctx context.Context, disbursementID, actor string) (*domain.Disbursement, error) {
	var out *domain.Disbursement
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		switch n, err := r.Notes.GetByDisbursementID(ctx, disbursementID); {
		case err == nil:
			return fmt.Errorf("%w: note %s already issued", domain.ErrInvalidTransition, n.Number)
		case !errors.Is(err, note.ErrNotFound):
			return err
		}
		d, err := transition(ctx, r.Disbursements, disbursementID, domain.ActionCancel, domain.Changes{})
		if err != nil {
			return err
		}
		out = d
		return r.Audit.Create(ctx, &audit.Entry{
			Action:     audit.ActionDisbursementCancelled,
			EntityType: "disbursement",
			EntityID:   d.ID,
			ActorID:    actor,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.StatusTransitions.WithLabelValues("disbursement", string(domain.StatusCancelled)).Inc()
	log.Printf("disbursement %s cancelled by %s", out.ID, actor)
	return out, nil
}

// transition applies a through one conditional write, then re-reads the row.
// When the guard fails the re-read tells NotFound apart from InvalidState.
func transition(ctx context.Context, repo domain.Repository, disbursementID string, a domain.Action, c domain.Changes) (*domain.Disbursement, error) {
	ok, err := repo.CompareAndSetStatus(ctx, disbursementID, domain.From(a), domain.Target(a), c)
	if err != nil {
		return nil, err
	}
	d, err := repo.GetByID(ctx, disbursementID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot %s from %s", domain.ErrInvalidTransition, a, d.Status)
	}
	return d, nil
}
