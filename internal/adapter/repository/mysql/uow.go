package mysql

import (
	"context"

	"loan-backoffice/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

// NewRepos binds every repository to db (a pool or a transaction).
func NewRepos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Disbursements: &DisbursementRepository{db: db},
		Notes:         &NoteRepository{db: db},
		Transactions:  &BankTransactionRepository{db: db},
		Accruals:      &AccrualRepository{db: db},
		Audit:         &AuditRepository{db: db},
	}
}
