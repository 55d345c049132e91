package disbursement

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateInput struct {
	RequestedAmount decimal.Decimal
	RequestDate     time.Time
	Description     string
	CreatedBy       string
}

// UpdateInput fields left nil are kept.
type UpdateInput struct {
	RequestedAmount *decimal.Decimal
	RequestDate     *time.Time
	Description     *string
}

type ListInput struct {
	Status string
	From   *time.Time
	To     *time.Time
}
