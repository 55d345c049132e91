package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"loan-backoffice/internal/domain/audit"
	"loan-backoffice/internal/domain/banktx"
	"loan-backoffice/internal/domain/disbursement"
	"loan-backoffice/internal/domain/note"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/infrastructure/metrics"
	"loan-backoffice/pkg/calendar"
	"loan-backoffice/pkg/id"

	"github.com/shopspring/decimal"
)

const (
	// maxDateDiffDays is how far a statement date may sit from the request date.
	maxDateDiffDays = 2
	maxSuggestions  = 5
)

type Usecase struct {
	txs           banktx.Repository
	notes         note.Repository
	disbursements disbursement.Repository
	uow           uow.UnitOfWork
	now           func() time.Time
}

func NewUsecase(txs banktx.Repository, notes note.Repository, disbursements disbursement.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{
		txs:           txs,
		notes:         notes,
		disbursements: disbursements,
		uow:           tx,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) ImportTransaction(ctx context.Context, in TransactionInput) (*banktx.BankTransaction, error) {
	row := Row{"Date": in.Date, "Amount": in.Amount, "Description": in.Description, "Reference": in.Reference}
	t, err := u.insert(ctx, row, "")
	if err != nil {
		metrics.ImportedTransactions.WithLabelValues("single", "rejected").Inc()
		return nil, err
	}
	metrics.ImportedTransactions.WithLabelValues("single", "imported").Inc()
	return t, nil
}

// ImportBatch inserts every usable row. Bad rows are reported in Errors and
// never stop the rows after them.
func (u *Usecase) ImportBatch(ctx context.Context, rows []Row) (*ImportResult, error) {
	numbered := make([]numberedRow, len(rows))
	for i, row := range rows {
		numbered[i] = numberedRow{line: i + 1, row: row}
	}
	return u.importRows(ctx, numbered, "batch")
}

// numberedRow keeps the 1-based data line a row came from for error reports.
type numberedRow struct {
	line int
	row  Row
}

func (u *Usecase) importRows(ctx context.Context, rows []numberedRow, source string) (*ImportResult, error) {
	res := &ImportResult{BatchID: id.NewID32(), Errors: []string{}}
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", r.line, err))
			return res, err
		}
		if _, err := u.insert(ctx, r.row, res.BatchID); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", r.line, err))
			continue
		}
		res.ImportedCount++
	}
	res.Success = len(res.Errors) == 0
	metrics.ImportedTransactions.WithLabelValues(source, "imported").Add(float64(res.ImportedCount))
	metrics.ImportedTransactions.WithLabelValues(source, "rejected").Add(float64(len(res.Errors)))
	log.Printf("import %s (%s): %d imported, %d rejected", res.BatchID, source, res.ImportedCount, len(res.Errors))
	return res, nil
}

func (u *Usecase) insert(ctx context.Context, row Row, batchID string) (*banktx.BankTransaction, error) {
	n, err := row.normalize()
	if err != nil {
		return nil, err
	}
	t := &banktx.BankTransaction{
		ID:              id.NewID32(),
		TransactionDate: n.Date,
		Amount:          n.Amount,
		Description:     n.Description,
		Reference:       n.Reference,
		ImportBatchID:   batchID,
	}
	if err := u.txs.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *Usecase) Get(ctx context.Context, txID string) (*banktx.BankTransaction, error) {
	return u.txs.GetByID(ctx, txID)
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]*banktx.BankTransaction, error) {
	return u.txs.List(ctx, banktx.Filter{Matched: in.Matched})
}

// SuggestMatches proposes notes whose principal equals the transaction amount
// exactly, whose disbursement is approved or disbursed and requested within
// two days of the transaction, and that no matched transaction points at yet.
// Closest dates come first; equal distances keep store order.
func (u *Usecase) SuggestMatches(ctx context.Context, txID string) ([]Candidate, error) {
	t, err := u.txs.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	notes, err := u.notes.List(ctx, note.Filter{Principal: &t.Amount})
	if err != nil {
		return nil, err
	}
	taken, err := u.txs.MatchedNoteIDs(ctx)
	if err != nil {
		return nil, err
	}
	linked := make(map[string]struct{}, len(taken))
	for _, noteID := range taken {
		linked[noteID] = struct{}{}
	}

	var disbursementIDs []string
	for _, n := range notes {
		disbursementIDs = append(disbursementIDs, n.DisbursementID)
	}
	if len(disbursementIDs) == 0 {
		return []Candidate{}, nil
	}
	ds, err := u.disbursements.List(ctx, disbursement.Filter{
		IDs:      disbursementIDs,
		Statuses: []disbursement.Status{disbursement.StatusApproved, disbursement.StatusDisbursed},
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*disbursement.Disbursement, len(ds))
	for _, d := range ds {
		byID[d.ID] = d
	}

	out := []Candidate{}
	for _, n := range notes {
		if !n.PrincipalAmount.Equal(t.Amount) {
			continue
		}
		if _, ok := linked[n.ID]; ok {
			continue
		}
		d, ok := byID[n.DisbursementID]
		if !ok {
			continue
		}
		diff := calendar.AbsDays(t.TransactionDate, d.RequestDate)
		if diff > maxDateDiffDays {
			continue
		}
		out = append(out, Candidate{
			NoteID:             n.ID,
			NoteNumber:         n.Number,
			DisbursementID:     d.ID,
			DisbursementStatus: d.Status,
			PrincipalAmount:    n.PrincipalAmount,
			RequestDate:        d.RequestDate,
			DateDiffDays:       diff,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateDiffDays < out[j].DateDiffDays })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}

// Match links a transaction to a note. The link is a single conditional
// write on matched = false, so of two concurrent callers exactly one wins and
// the other gets ErrAlreadyMatched. The note's disbursement advances from
// approved to disbursed; in any other state it is left as is.
func (u *Usecase) Match(ctx context.Context, txID, noteID, actor string) (*banktx.BankTransaction, error) {
	var out *banktx.BankTransaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		n, err := r.Notes.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		ok, err := r.Transactions.MarkMatched(ctx, txID, n.ID, actor, u.now())
		if err != nil {
			return err
		}
		t, err := r.Transactions.GetByID(ctx, txID)
		if err != nil {
			return err
		}
		if !ok {
			return banktx.ErrAlreadyMatched
		}
		out = t

		a := disbursement.ActionDisburse
		advanced, err := r.Disbursements.CompareAndSetStatus(ctx, n.DisbursementID, disbursement.From(a), disbursement.Target(a), disbursement.Changes{})
		if err != nil {
			return err
		}
		if advanced {
			metrics.StatusTransitions.WithLabelValues("disbursement", string(disbursement.StatusDisbursed)).Inc()
		}
		return r.Audit.Create(ctx, &audit.Entry{
			Action:     audit.ActionTransactionMatched,
			EntityType: "bank_transaction",
			EntityID:   t.ID,
			ActorID:    actor,
			Details:    "note=" + n.ID,
		})
	})
	switch {
	case errors.Is(err, banktx.ErrAlreadyMatched):
		metrics.Reconciliations.WithLabelValues("match", "already_matched").Inc()
		return nil, err
	case err != nil:
		metrics.Reconciliations.WithLabelValues("match", "error").Inc()
		return nil, err
	}
	metrics.Reconciliations.WithLabelValues("match", "ok").Inc()
	log.Printf("bank transaction %s matched to note %s by %s", txID, noteID, actor)
	return out, nil
}

// Unmatch clears any link. The disbursement is not moved back.
func (u *Usecase) Unmatch(ctx context.Context, txID, actor string) (*banktx.BankTransaction, error) {
	var out *banktx.BankTransaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		prev, err := r.Transactions.GetByID(ctx, txID)
		if err != nil {
			return err
		}
		if err := r.Transactions.ClearMatch(ctx, txID); err != nil {
			return err
		}
		if out, err = r.Transactions.GetByID(ctx, txID); err != nil {
			return err
		}
		if !prev.Matched {
			return nil
		}
		details := ""
		if prev.MatchedNoteID != nil {
			details = "note=" + *prev.MatchedNoteID
		}
		return r.Audit.Create(ctx, &audit.Entry{
			Action:     audit.ActionTransactionUnmatched,
			EntityType: "bank_transaction",
			EntityID:   txID,
			ActorID:    actor,
			Details:    details,
		})
	})
	if err != nil {
		metrics.Reconciliations.WithLabelValues("unmatch", "error").Inc()
		return nil, err
	}
	metrics.Reconciliations.WithLabelValues("unmatch", "ok").Inc()
	log.Printf("bank transaction %s unmatched by %s", txID, actor)
	return out, nil
}

func (u *Usecase) Summary(ctx context.Context) (*Summary, error) {
	all, err := u.txs.List(ctx, banktx.Filter{})
	if err != nil {
		return nil, err
	}
	s := &Summary{TotalAmount: decimal.Zero, MatchedAmount: decimal.Zero, UnmatchedAmount: decimal.Zero}
	for _, t := range all {
		s.TotalCount++
		s.TotalAmount = s.TotalAmount.Add(t.Amount)
		if t.Matched {
			s.MatchedCount++
			s.MatchedAmount = s.MatchedAmount.Add(t.Amount)
		} else {
			s.UnmatchedCount++
			s.UnmatchedAmount = s.UnmatchedAmount.Add(t.Amount)
		}
	}
	return s, nil
}
