package uow

import (
	"context"

	"loan-backoffice/internal/domain/accrual"
	"loan-backoffice/internal/domain/audit"
	"loan-backoffice/internal/domain/banktx"
	"loan-backoffice/internal/domain/disbursement"
	"loan-backoffice/internal/domain/note"
)

// Repos are bound to one transaction inside WithinTx.
type Repos struct {
	Disbursements disbursement.Repository
	Notes         note.Repository
	Transactions  banktx.Repository
	Accruals      accrual.Repository
	Audit         audit.Repository
}

type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
