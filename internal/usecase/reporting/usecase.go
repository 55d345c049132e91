package reporting

import (
	"context"
	"fmt"
	"time"

	"loan-backoffice/internal/domain/accrual"
	"loan-backoffice/internal/domain/apperr"
	"loan-backoffice/internal/domain/disbursement"
	"loan-backoffice/internal/domain/note"
	"loan-backoffice/internal/usecase/reconciliation"
	"loan-backoffice/pkg/calendar"

	"github.com/shopspring/decimal"
)

// Summarizer is the reconciliation read the reports embed.
type Summarizer interface {
	Summary(ctx context.Context) (*reconciliation.Summary, error)
}

// Usecase only reads.
type Usecase struct {
	disbursements disbursement.Repository
	notes         note.Repository
	accruals      accrual.Repository
	recon         Summarizer
}

func NewUsecase(d disbursement.Repository, n note.Repository, a accrual.Repository, recon Summarizer) *Usecase {
	return &Usecase{disbursements: d, notes: n, accruals: a, recon: recon}
}

func (u *Usecase) Dashboard(ctx context.Context, asOf time.Time) (*Dashboard, error) {
	ds, err := u.disbursements.List(ctx, disbursement.Filter{})
	if err != nil {
		return nil, err
	}
	out := &Dashboard{
		AsOf:                 calendar.Day(asOf),
		TotalDisbursed:       decimal.Zero,
		OutstandingPrincipal: decimal.Zero,
		AccruedInterest:      decimal.Zero,
	}
	for _, d := range ds {
		switch d.Status {
		case disbursement.StatusApproved, disbursement.StatusDisbursed, disbursement.StatusSettled:
			out.TotalDisbursed = out.TotalDisbursed.Add(d.RequestedAmount)
		case disbursement.StatusPending:
			out.PendingDisbursements++
		}
	}

	notes, latest, err := u.notesWithInterest(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		switch n.Status {
		case note.StatusActive:
			out.ActiveNotes++
		case note.StatusOverdue:
			out.OverdueNotes++
		case note.StatusSettled:
			out.SettledNotes++
		}
		if !n.Status.Accruing() {
			continue
		}
		out.OutstandingPrincipal = out.OutstandingPrincipal.Add(n.PrincipalAmount)
		if a, ok := latest[n.ID]; ok {
			out.AccruedInterest = out.AccruedInterest.Add(a.InterestAmount)
		}
	}
	out.OutstandingBalance = out.OutstandingPrincipal.Add(out.AccruedInterest)

	if out.Reconciliation, err = u.recon.Summary(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) notesWithInterest(ctx context.Context) ([]*note.PromissoryNote, map[string]*accrual.InterestAccrual, error) {
	notes, err := u.notes.List(ctx, note.Filter{})
	if err != nil {
		return nil, nil, err
	}
	var open []string
	for _, n := range notes {
		if n.Status.Accruing() {
			open = append(open, n.ID)
		}
	}
	latest, err := u.accruals.LatestByNote(ctx, open)
	if err != nil {
		return nil, nil, err
	}
	return notes, latest, nil
}

// Bucket classifies a note by days past due as of asOf.
func Bucket(status note.Status, daysPastDue int) string {
	switch {
	case status == note.StatusSettled:
		return BucketSettled
	case daysPastDue <= 0:
		return BucketCurrent
	case daysPastDue <= 30:
		return Bucket1To30
	case daysPastDue <= 60:
		return Bucket31To60
	case daysPastDue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// Aging lists every note with its bucket, plus per-bucket totals.
func (u *Usecase) Aging(ctx context.Context, asOf time.Time) (*Aging, error) {
	day := calendar.Day(asOf)
	notes, latest, err := u.notesWithInterest(ctx)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]*BucketTotal, len(bucketOrder))
	for _, b := range bucketOrder {
		totals[b] = &BucketTotal{Bucket: b, Principal: decimal.Zero}
	}
	out := &Aging{AsOf: day, Notes: make([]AgingRow, 0, len(notes))}
	for _, n := range notes {
		row := AgingRow{
			NoteID:          n.ID,
			Number:          n.Number,
			DisbursementID:  n.DisbursementID,
			Status:          n.Status,
			PrincipalAmount: n.PrincipalAmount,
			AccruedInterest: decimal.Zero,
			IssueDate:       n.IssueDate,
			DueDate:         n.DueDate,
		}
		if n.Status.Accruing() {
			row.DaysOutstanding = max(calendar.DaysBetween(n.IssueDate, day), 0)
			row.DaysPastDue = max(calendar.DaysBetween(n.DueDate, day), 0)
			if a, ok := latest[n.ID]; ok {
				row.AccruedInterest = a.InterestAmount
			}
		}
		row.Bucket = Bucket(n.Status, row.DaysPastDue)
		t := totals[row.Bucket]
		t.Count++
		t.Principal = t.Principal.Add(n.PrincipalAmount)
		out.Notes = append(out.Notes, row)
	}
	for _, b := range bucketOrder {
		out.Buckets = append(out.Buckets, *totals[b])
	}
	return out, nil
}

// Period reports disbursements requested in [from, to].
func (u *Usecase) Period(ctx context.Context, from, to time.Time) (*Period, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("period end %s before start %s: %w", calendar.Format(to), calendar.Format(from), apperr.ErrValidation)
	}
	ds, err := u.disbursements.List(ctx, disbursement.Filter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	out := &Period{From: from, To: to, TotalRequested: decimal.Zero, Disbursements: ds}
	byStatus := map[disbursement.Status]*StatusTotal{}
	var order []disbursement.Status
	for _, d := range ds {
		out.Count++
		out.TotalRequested = out.TotalRequested.Add(d.RequestedAmount)
		st, ok := byStatus[d.Status]
		if !ok {
			st = &StatusTotal{Status: d.Status, Amount: decimal.Zero}
			byStatus[d.Status] = st
			order = append(order, d.Status)
		}
		st.Count++
		st.Amount = st.Amount.Add(d.RequestedAmount)
	}
	out.ByStatus = make([]StatusTotal, 0, len(order))
	for _, s := range order {
		out.ByStatus = append(out.ByStatus, *byStatus[s])
	}
	if out.Disbursements == nil {
		out.Disbursements = []*disbursement.Disbursement{}
	}
	return out, nil
}

func (u *Usecase) ReconciliationSummary(ctx context.Context) (*reconciliation.Summary, error) {
	return u.recon.Summary(ctx)
}
