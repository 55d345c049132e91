package reconciliation

import (
	"time"

	"loan-backoffice/internal/domain/disbursement"

	"github.com/shopspring/decimal"
)

// TransactionInput is a single manually entered statement line. Values use
// the same tolerant parsing as imported rows.
type TransactionInput struct {
	Date        string
	Amount      string
	Description string
	Reference   string
}

type ImportResult struct {
	Success       bool     `json:"success"`
	ImportedCount int      `json:"imported_count"`
	Errors        []string `json:"errors"`
	BatchID       string   `json:"batch_id"`
}

type Candidate struct {
	NoteID             string              `json:"promissory_note_id"`
	NoteNumber         string              `json:"promissory_note_number"`
	DisbursementID     string              `json:"disbursement_id"`
	DisbursementStatus disbursement.Status `json:"disbursement_status"`
	PrincipalAmount    decimal.Decimal     `json:"principal_amount"`
	RequestDate        time.Time           `json:"request_date"`
	DateDiffDays       int                 `json:"date_diff_days"`
}

type Summary struct {
	TotalCount      int             `json:"total_count"`
	MatchedCount    int             `json:"matched_count"`
	UnmatchedCount  int             `json:"unmatched_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	MatchedAmount   decimal.Decimal `json:"matched_amount"`
	UnmatchedAmount decimal.Decimal `json:"unmatched_amount"`
}

type ListInput struct {
	Matched *bool
}
