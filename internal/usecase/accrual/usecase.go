package accrual

import (
	"context"
	"log"
	"time"

	domain "loan-backoffice/internal/domain/accrual"
	"loan-backoffice/internal/domain/note"
	"loan-backoffice/internal/infrastructure/metrics"
	"loan-backoffice/pkg/calendar"

	"github.com/shopspring/decimal"
)

// Config is passed to every run so a batch never reads ambient settings.
// The annual rate always comes from the note, which fixes it at issue.
type Config struct {
	DayBasis int
}

func (c Config) normalized() Config {
	if c.DayBasis <= 0 {
		c.DayBasis = domain.DefaultDayBasis
	}
	return c
}

type RunResult struct {
	Date          time.Time       `json:"date"`
	Processed     int             `json:"processed"`
	Failed        int             `json:"failed"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

type Usecase struct {
	notes    note.Repository
	accruals domain.Repository
}

func NewUsecase(notes note.Repository, accruals domain.Repository) *Usecase {
	return &Usecase{notes: notes, accruals: accruals}
}

// Compute is the accrual snapshot of n as of today. It does not touch the store.
func Compute(n *note.PromissoryNote, today time.Time, cfg Config) *domain.InterestAccrual {
	cfg = cfg.normalized()
	day := calendar.Day(today)
	rate := n.InterestRateAnnual
	days := calendar.DaysBetween(n.IssueDate, day)
	if days < 0 {
		days = 0
	}
	return &domain.InterestAccrual{
		ID:              domain.ID(n.ID, day),
		NoteID:          n.ID,
		DisbursementID:  n.DisbursementID,
		PrincipalAmount: n.PrincipalAmount,
		AnnualRate:      rate,
		DaysOutstanding: days,
		DayBasis:        cfg.DayBasis,
		InterestAmount:  domain.Interest(n.PrincipalAmount, rate, days, cfg.DayBasis),
		CalculationDate: day,
	}
}

// AccrueAll writes today's snapshot for every active or overdue note.
// Re-running the same day overwrites the same rows. A note whose write fails
// is logged and counted as failed; the run carries on.
func (u *Usecase) AccrueAll(ctx context.Context, today time.Time, cfg Config) (*RunResult, error) {
	start := time.Now()
	defer func() { metrics.AccrualRunDuration.Observe(time.Since(start).Seconds()) }()

	res := &RunResult{Date: calendar.Day(today), TotalInterest: decimal.Zero}
	notes, err := u.notes.List(ctx, note.Filter{Statuses: []note.Status{note.StatusActive, note.StatusOverdue}})
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			log.Printf("accrual %s interrupted after %d notes: %v", calendar.Format(res.Date), res.Processed, err)
			return res, err
		}
		a := Compute(n, res.Date, cfg)
		if err := u.accruals.Upsert(ctx, a); err != nil {
			res.Failed++
			metrics.AccrualNotes.WithLabelValues("failed").Inc()
			log.Printf("accrual %s: note %s: %v", calendar.Format(res.Date), n.ID, err)
			continue
		}
		res.Processed++
		res.TotalInterest = res.TotalInterest.Add(a.InterestAmount)
		metrics.AccrualNotes.WithLabelValues("accrued").Inc()
	}
	log.Printf("accrual %s: processed=%d failed=%d interest=%s",
		calendar.Format(res.Date), res.Processed, res.Failed, res.TotalInterest.StringFixed(2))
	return res, nil
}

// History lists a note's daily snapshots, oldest first.
func (u *Usecase) History(ctx context.Context, noteID string) ([]*domain.InterestAccrual, error) {
	if _, err := u.notes.GetByID(ctx, noteID); err != nil {
		return nil, err
	}
	return u.accruals.ListByNote(ctx, noteID)
}
