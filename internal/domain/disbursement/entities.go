package disbursement

import (
	"fmt"
	"time"

	"loan-backoffice/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = fmt.Errorf("disbursement %w", apperr.ErrNotFound)
	ErrInvalidTransition = fmt.Errorf("disbursement: %w", apperr.ErrInvalidState)
	ErrInvalidAmount     = fmt.Errorf("disbursement: requested amount must be positive: %w", apperr.ErrValidation)
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDisbursed Status = "disbursed"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
)

type Action string

const (
	ActionApprove  Action = "approve"
	ActionDisburse Action = "disburse"
	ActionSettle   Action = "settle"
	ActionCancel   Action = "cancel"
	ActionEdit     Action = "edit"
)

// transitions is the whole state machine; a missing (from, action) pair is illegal.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionCancel:  StatusCancelled,
		ActionEdit:    StatusPending,
	},
	StatusApproved: {
		ActionDisburse: StatusDisbursed,
		ActionSettle:   StatusSettled,
		ActionCancel:   StatusCancelled,
	},
	StatusDisbursed: {
		ActionSettle: StatusSettled,
	},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDisbursed, StatusSettled, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusSettled || s == StatusCancelled }

// Next returns the state reached by applying a to s.
func (s Status) Next(a Action) (Status, error) {
	if to, ok := transitions[s][a]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, a, s)
}

// From lists the states in which a is legal, in a stable order. It is used
// as the guard of conditional writes.
func From(a Action) []Status {
	var out []Status
	for _, s := range []Status{StatusPending, StatusApproved, StatusDisbursed, StatusSettled, StatusCancelled} {
		if _, ok := transitions[s][a]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Target is the single state a leads to. Every action in the table has one.
func Target(a Action) Status {
	for _, byAction := range transitions {
		if to, ok := byAction[a]; ok {
			return to
		}
	}
	return ""
}

type Disbursement struct {
	ID              string          `gorm:"primaryKey;size:32;column:id" json:"id"`
	RequestedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;column:requested_amount" json:"requested_amount"`
	RequestDate     time.Time       `gorm:"type:date;not null;index;column:request_date" json:"request_date"`
	Description     string          `gorm:"type:text;column:description" json:"description"`
	Status          Status          `gorm:"size:16;not null;index;column:status" json:"status"`
	ApprovedBy      *string         `gorm:"size:64;column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedBy       string          `gorm:"size:64;column:created_by" json:"created_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Disbursement) TableName() string { return "disbursements" }

// Changes carries the columns written together with a status change.
// Nil fields are left untouched.
type Changes struct {
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RequestedAmount *decimal.Decimal
	RequestDate     *time.Time
	Description     *string
}

type Filter struct {
	Statuses []Status
	From     *time.Time // request_date >= From
	To       *time.Time // request_date <= To
	IDs      []string
}
