package mysql

import (
	"context"
	"errors"

	"loan-backoffice/internal/domain/disbursement"

	"gorm.io/gorm"
)

type DisbursementRepository struct{ db *gorm.DB }

func NewDisbursementRepository(db *gorm.DB) *DisbursementRepository {
	return &DisbursementRepository{db: db}
}

func (r *DisbursementRepository) Create(ctx context.Context, d *disbursement.Disbursement) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DisbursementRepository) GetByID(ctx context.Context, id string) (*disbursement.Disbursement, error) {
	var out disbursement.Disbursement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, disbursement.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *DisbursementRepository) List(ctx context.Context, f disbursement.Filter) ([]*disbursement.Disbursement, error) {
	q := r.db.WithContext(ctx).Model(&disbursement.Disbursement{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(f.Statuses))
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.From != nil {
		q = q.Where("request_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("request_date <= ?", *f.To)
	}
	var out []*disbursement.Disbursement
	err := q.Order("request_date ASC, id ASC").Find(&out).Error
	return out, err
}

// CompareAndSetStatus is a single guarded UPDATE; the WHERE clause on status
// is what serializes concurrent transitions of the same row.
func (r *DisbursementRepository) CompareAndSetStatus(ctx context.Context, id string, from []disbursement.Status, to disbursement.Status, c disbursement.Changes) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	cols := map[string]any{"status": string(to)}
	if c.ApprovedBy != nil {
		cols["approved_by"] = *c.ApprovedBy
	}
	if c.ApprovedAt != nil {
		cols["approved_at"] = *c.ApprovedAt
	}
	if c.RequestedAmount != nil {
		cols["requested_amount"] = *c.RequestedAmount
	}
	if c.RequestDate != nil {
		cols["request_date"] = *c.RequestDate
	}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	res := r.db.WithContext(ctx).
		Model(&disbursement.Disbursement{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
