package note

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInput zero values fall back to: Principal = disbursement amount,
// Rate = configured default, IssueDate = today.
type CreateInput struct {
	DisbursementID string
	Principal      decimal.Decimal
	Rate           *decimal.Decimal
	IssueDate      time.Time
	DueDate        time.Time
	CreatedBy      string
}

type SettleInput struct {
	Amount decimal.Decimal
	Date   time.Time
	Actor  string
}

type ListInput struct {
	Status string
}
