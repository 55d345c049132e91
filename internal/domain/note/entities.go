package note

import (
	"fmt"
	"time"

	"loan-backoffice/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = fmt.Errorf("promissory note %w", apperr.ErrNotFound)
	ErrAlreadyExists     = fmt.Errorf("promissory note for disbursement %w", apperr.ErrAlreadyExists)
	ErrInvalidTransition = fmt.Errorf("promissory note: %w", apperr.ErrInvalidState)
	ErrInvalidTerms      = fmt.Errorf("promissory note: invalid terms: %w", apperr.ErrValidation)
	// ErrDuplicateNumber is returned by repositories when the generated number is taken.
	ErrDuplicateNumber = fmt.Errorf("promissory note number %w", apperr.ErrAlreadyExists)
)

// DefaultAnnualRate applies when a note is issued without an explicit rate.
var DefaultAnnualRate = decimal.RequireFromString("0.145")

type Status string

const (
	StatusActive  Status = "active"
	StatusOverdue Status = "overdue"
	StatusSettled Status = "settled"
)

type Action string

const (
	ActionMarkOverdue Action = "mark_overdue"
	ActionSettle      Action = "settle"
)

// Notes only move forward; settled is terminal. Settling an overdue note is
// allowed so that late payers can still be closed out.
var transitions = map[Status]map[Action]Status{
	StatusActive: {
		ActionMarkOverdue: StatusOverdue,
		ActionSettle:      StatusSettled,
	},
	StatusOverdue: {
		ActionSettle: StatusSettled,
	},
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusOverdue || s == StatusSettled
}

// Accruing reports whether interest is still computed for a note in s.
func (s Status) Accruing() bool { return s == StatusActive || s == StatusOverdue }

func (s Status) Next(a Action) (Status, error) {
	if to, ok := transitions[s][a]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, a, s)
}

func From(a Action) []Status {
	var out []Status
	for _, s := range []Status{StatusActive, StatusOverdue, StatusSettled} {
		if _, ok := transitions[s][a]; ok {
			out = append(out, s)
		}
	}
	return out
}

type PromissoryNote struct {
	ID                 string              `gorm:"primaryKey;size:32;column:id" json:"id"`
	Number             string              `gorm:"size:32;not null;uniqueIndex:ux_notes_number;column:number" json:"number"`
	DisbursementID     string              `gorm:"size:32;not null;uniqueIndex:ux_notes_disbursement;column:disbursement_id" json:"disbursement_id"`
	PrincipalAmount    decimal.Decimal     `gorm:"type:decimal(18,2);not null;index;column:principal_amount" json:"principal_amount"`
	InterestRateAnnual decimal.Decimal     `gorm:"type:decimal(9,6);not null;column:interest_rate_annual" json:"interest_rate_annual"`
	IssueDate          time.Time           `gorm:"type:date;not null;column:issue_date" json:"issue_date"`
	DueDate            time.Time           `gorm:"type:date;not null;index;column:due_date" json:"due_date"`
	Status             Status              `gorm:"size:16;not null;index;column:status" json:"status"`
	SettlementDate     *time.Time          `gorm:"type:date;column:settlement_date" json:"settlement_date,omitempty"`
	SettlementAmount   decimal.NullDecimal `gorm:"type:decimal(18,2);column:settlement_amount" json:"settlement_amount"`
	CreatedBy          string              `gorm:"size:64;column:created_by" json:"created_by"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PromissoryNote) TableName() string { return "promissory_notes" }

// NumberPrefix is the per-year prefix shared by every note number issued in year.
func NumberPrefix(year int) string { return fmt.Sprintf("PN-%d-", year) }

// FormatNumber renders the human-readable note number.
func FormatNumber(year int, seq int64) string { return fmt.Sprintf("%s%04d", NumberPrefix(year), seq) }

type Settlement struct {
	Amount decimal.Decimal
	Date   time.Time
}

type Filter struct {
	Statuses  []Status
	Principal *decimal.Decimal
	DueBefore *time.Time
	IDs       []string
}
