package mysql

import (
	"context"

	"loan-backoffice/internal/domain/accrual"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccrualRepository struct{ db *gorm.DB }

var _ accrual.Repository = (*AccrualRepository)(nil)

func NewAccrualRepository(db *gorm.DB) *AccrualRepository { return &AccrualRepository{db: db} }

// Upsert relies on the deterministic (note, day) primary key: MySQL renders
// ON DUPLICATE KEY UPDATE, SQLite renders ON CONFLICT DO UPDATE.
func (r *AccrualRepository) Upsert(ctx context.Context, a *accrual.InterestAccrual) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"principal_amount", "annual_rate", "days_outstanding",
				"day_basis", "interest_amount", "updated_at",
			}),
		}).
		Create(a).Error
}

func (r *AccrualRepository) ListByNote(ctx context.Context, noteID string) ([]*accrual.InterestAccrual, error) {
	var out []*accrual.InterestAccrual
	err := r.db.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("calculation_date ASC").
		Find(&out).Error
	return out, err
}

func (r *AccrualRepository) LatestByNote(ctx context.Context, noteIDs []string) (map[string]*accrual.InterestAccrual, error) {
	out := make(map[string]*accrual.InterestAccrual, len(noteIDs))
	if len(noteIDs) == 0 {
		return out, nil
	}
	var rows []*accrual.InterestAccrual
	err := r.db.WithContext(ctx).
		Where("note_id IN ?", noteIDs).
		Order("calculation_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, a := range rows {
		out[a.NoteID] = a
	}
	return out, nil
}
