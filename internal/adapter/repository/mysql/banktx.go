package mysql

import (
	"context"
	"errors"
	"time"

	"loan-backoffice/internal/domain/banktx"

	"gorm.io/gorm"
)

type BankTransactionRepository struct{ db *gorm.DB }

var _ banktx.Repository = (*BankTransactionRepository)(nil)

func NewBankTransactionRepository(db *gorm.DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

func (r *BankTransactionRepository) Create(ctx context.Context, t *banktx.BankTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *BankTransactionRepository) GetByID(ctx context.Context, id string) (*banktx.BankTransaction, error) {
	var out banktx.BankTransaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, banktx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BankTransactionRepository) List(ctx context.Context, f banktx.Filter) ([]*banktx.BankTransaction, error) {
	q := r.db.WithContext(ctx).Model(&banktx.BankTransaction{})
	if f.Matched != nil {
		q = q.Where("matched = ?", *f.Matched)
	}
	var out []*banktx.BankTransaction
	err := q.Order("transaction_date ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *BankTransactionRepository) MatchedNoteIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&banktx.BankTransaction{}).
		Where("matched = ? AND matched_note_id IS NOT NULL", true).
		Distinct().
		Pluck("matched_note_id", &ids).Error
	return ids, err
}

// MarkMatched is the compare-and-swap that keeps a transaction from being
// matched twice: only one UPDATE can observe matched = false.
func (r *BankTransactionRepository) MarkMatched(ctx context.Context, id, noteID, userID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&banktx.BankTransaction{}).
		Where("id = ? AND matched = ?", id, false).
		Updates(map[string]any{
			"matched":         true,
			"matched_note_id": noteID,
			"matched_at":      at,
			"matched_by":      userID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BankTransactionRepository) ClearMatch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&banktx.BankTransaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"matched":         false,
			"matched_note_id": nil,
			"matched_at":      nil,
			"matched_by":      nil,
		}).Error
}
