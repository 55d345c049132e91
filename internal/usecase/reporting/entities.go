package reporting

import (
	"time"

	"loan-backoffice/internal/domain/disbursement"
	"loan-backoffice/internal/domain/note"
	"loan-backoffice/internal/usecase/reconciliation"

	"github.com/shopspring/decimal"
)

type Dashboard struct {
	AsOf                 time.Time               `json:"as_of"`
	TotalDisbursed       decimal.Decimal         `json:"total_disbursed"`
	OutstandingPrincipal decimal.Decimal         `json:"outstanding_principal"`
	AccruedInterest      decimal.Decimal         `json:"accrued_interest"`
	OutstandingBalance   decimal.Decimal         `json:"outstanding_balance"`
	PendingDisbursements int                     `json:"pending_disbursements"`
	ActiveNotes          int                     `json:"active_notes"`
	OverdueNotes         int                     `json:"overdue_notes"`
	SettledNotes         int                     `json:"settled_notes"`
	Reconciliation       *reconciliation.Summary `json:"reconciliation"`
}

const (
	BucketCurrent = "current"
	Bucket1To30   = "1-30"
	Bucket31To60  = "31-60"
	Bucket61To90  = "61-90"
	BucketOver90  = "90+"
	BucketSettled = "settled"
)

var bucketOrder = []string{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, BucketOver90, BucketSettled}

type AgingRow struct {
	NoteID          string          `json:"promissory_note_id"`
	Number          string          `json:"number"`
	DisbursementID  string          `json:"disbursement_id"`
	Status          note.Status     `json:"status"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	IssueDate       time.Time       `json:"issue_date"`
	DueDate         time.Time       `json:"due_date"`
	DaysOutstanding int             `json:"days_outstanding"`
	DaysPastDue     int             `json:"days_past_due"`
	Bucket          string          `json:"bucket"`
}

type BucketTotal struct {
	Bucket    string          `json:"bucket"`
	Count     int             `json:"count"`
	Principal decimal.Decimal `json:"principal"`
}

type Aging struct {
	AsOf    time.Time     `json:"as_of"`
	Notes   []AgingRow    `json:"notes"`
	Buckets []BucketTotal `json:"buckets"`
}

type StatusTotal struct {
	Status disbursement.Status `json:"status"`
	Count  int                 `json:"count"`
	Amount decimal.Decimal     `json:"amount"`
}

type Period struct {
	From           time.Time                    `json:"from"`
	To             time.Time                    `json:"to"`
	Count          int                          `json:"count"`
	TotalRequested decimal.Decimal              `json:"total_requested"`
	ByStatus       []StatusTotal                `json:"by_status"`
	Disbursements  []*disbursement.Disbursement `json:"disbursements"`
}
