package note

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"loan-backoffice/internal/domain/apperr"
	"loan-backoffice/internal/domain/audit"
	"loan-backoffice/internal/domain/disbursement"
	domain "loan-backoffice/internal/domain/note"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/infrastructure/metrics"
	"loan-backoffice/pkg/calendar"
	"loan-backoffice/pkg/id"

	"github.com/shopspring/decimal"
)

// numberAttempts bounds the retry loop when two notes race for the same number.
const numberAttempts = 5

type Usecase struct {
	notes         domain.Repository
	disbursements disbursement.Repository
	uow           uow.UnitOfWork
	defaultRate   decimal.Decimal
	now           func() time.Time
}

// NewUsecase issues notes at defaultRate unless the caller names a rate.
// A zero defaultRate is honoured and issues interest-free notes.
func NewUsecase(notes domain.Repository, disbursements disbursement.Repository, tx uow.UnitOfWork, defaultRate decimal.Decimal) *Usecase {
	return &Usecase{
		notes:         notes,
		disbursements: disbursements,
		uow:           tx,
		defaultRate:   defaultRate,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create issues the note for an approved disbursement.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.PromissoryNote, error) {
	d, err := u.disbursements.GetByID(ctx, in.DisbursementID)
	if err != nil {
		return nil, err
	}
	if d.Status != disbursement.StatusApproved && d.Status != disbursement.StatusDisbursed {
		return nil, fmt.Errorf("cannot issue a note for a %s disbursement: %w", d.Status, apperr.ErrInvalidState)
	}
	switch _, err := u.notes.GetByDisbursementID(ctx, d.ID); {
	case err == nil:
		return nil, domain.ErrAlreadyExists
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	n, err := u.terms(d, in)
	if err != nil {
		return nil, err
	}

	year := n.IssueDate.Year()
	for attempt := 0; attempt < numberAttempts; attempt++ {
		seq, err := u.notes.CountByNumberPrefix(ctx, domain.NumberPrefix(year))
		if err != nil {
			return nil, err
		}
		n.Number = domain.FormatNumber(year, seq+1+int64(attempt))
		err = u.notes.Create(ctx, n)
		if err == nil {
			log.Printf("note %s issued for disbursement %s", n.Number, d.ID)
			return n, nil
		}
		if !errors.Is(err, domain.ErrDuplicateNumber) {
			return nil, err
		}
		log.Printf("note number %s taken, retrying", n.Number)
	}
	return nil, fmt.Errorf("allocate note number for %d: %w", year, domain.ErrDuplicateNumber)
}

func (u *Usecase) terms(d *disbursement.Disbursement, in CreateInput) (*domain.PromissoryNote, error) {
	principal := in.Principal
	if principal.IsZero() {
		principal = d.RequestedAmount
	}
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", domain.ErrInvalidTerms)
	}
	rate := u.defaultRate
	if in.Rate != nil {
		rate = *in.Rate
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: annual rate %s outside [0, 1]", domain.ErrInvalidTerms, rate)
	}
	issue := calendar.Day(in.IssueDate)
	if in.IssueDate.IsZero() {
		issue = calendar.Day(u.now())
	}
	if in.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", domain.ErrInvalidTerms)
	}
	due := calendar.Day(in.DueDate)
	if due.Before(issue) {
		return nil, fmt.Errorf("%w: due date precedes issue date", domain.ErrInvalidTerms)
	}
	return &domain.PromissoryNote{
		ID:                 id.NewID32(),
		DisbursementID:     d.ID,
		PrincipalAmount:    principal.Round(2),
		InterestRateAnnual: rate,
		IssueDate:          issue,
		DueDate:            due,
		Status:             domain.StatusActive,
		CreatedBy:          in.CreatedBy,
	}, nil
}

func (u *Usecase) Get(ctx context.Context, noteID string) (*domain.PromissoryNote, error) {
	return u.notes.GetByID(ctx, noteID)
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]*domain.PromissoryNote, error) {
	var f domain.Filter
	if in.Status != "" {
		s := domain.Status(in.Status)
		if !s.Valid() {
			return nil, fmt.Errorf("unknown note status %q: %w", in.Status, apperr.ErrValidation)
		}
		f.Statuses = []domain.Status{s}
	}
	return u.notes.List(ctx, f)
}

// MarkOverdueBatch moves every active note due before asOf to overdue and
// returns how many it changed. A note that fails is logged and skipped.
func (u *Usecase) MarkOverdueBatch(ctx context.Context, asOf time.Time) (int, error) {
	cutoff := calendar.Day(asOf)
	due, err := u.notes.List(ctx, domain.Filter{
		Statuses:  domain.From(domain.ActionMarkOverdue),
		DueBefore: &cutoff,
	})
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, n := range due {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		ok, err := u.notes.CompareAndSetStatus(ctx, n.ID, domain.From(domain.ActionMarkOverdue), domain.StatusOverdue, nil)
		if err != nil {
			log.Printf("mark overdue: note %s: %v", n.ID, err)
			continue
		}
		if ok {
			changed++
		}
	}
	metrics.StatusTransitions.WithLabelValues("note", string(domain.StatusOverdue)).Add(float64(changed))
	log.Printf("mark overdue as of %s: %d of %d notes", calendar.Format(cutoff), changed, len(due))
	return changed, nil
}

// Settle closes a note and settles its disbursement in one unit of work.
func (u *Usecase) Settle(ctx context.Context, noteID string, in SettleInput) (*domain.PromissoryNote, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("settlement amount must be positive: %w", apperr.ErrValidation)
	}
	date := calendar.Day(in.Date)
	if in.Date.IsZero() {
		date = calendar.Day(u.now())
	}
	var out *domain.PromissoryNote
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ok, err := r.Notes.CompareAndSetStatus(ctx, noteID, domain.From(domain.ActionSettle), domain.StatusSettled,
			&domain.Settlement{Amount: in.Amount.Round(2), Date: date})
		if err != nil {
			return err
		}
		n, err := r.Notes.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: cannot settle from %s", domain.ErrInvalidTransition, n.Status)
		}
		out = n
		if err := settleDisbursement(ctx, r.Disbursements, n.DisbursementID); err != nil {
			return err
		}
		return r.Audit.Create(ctx, &audit.Entry{
			Action:     audit.ActionNoteSettled,
			EntityType: "note",
			EntityID:   n.ID,
			ActorID:    in.Actor,
			Details:    fmt.Sprintf("amount=%s date=%s", in.Amount.StringFixed(2), calendar.Format(date)),
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.StatusTransitions.WithLabelValues("note", string(domain.StatusSettled)).Inc()
	log.Printf("note %s settled by %s", out.ID, in.Actor)
	return out, nil
}

// settleDisbursement is the guarded cascade of a note settlement. An already
// settled disbursement is left alone; any other refusal is logged, not fatal.
func settleDisbursement(ctx context.Context, repo disbursement.Repository, disbursementID string) error {
	a := disbursement.ActionSettle
	ok, err := repo.CompareAndSetStatus(ctx, disbursementID, disbursement.From(a), disbursement.Target(a), disbursement.Changes{})
	if err != nil || ok {
		return err
	}
	d, err := repo.GetByID(ctx, disbursementID)
	if err != nil {
		return err
	}
	if d.Status != disbursement.StatusSettled {
		log.Printf("settle cascade: disbursement %s left %s", d.ID, d.Status)
	}
	return nil
}
