package mysql

import (
	"context"

	"loan-backoffice/internal/domain/audit"
	"loan-backoffice/pkg/id"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

var _ audit.Repository = (*AuditRepository)(nil)

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	if e.ID == "" {
		e.ID = id.NewID32()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*audit.Entry, error) {
	var out []*audit.Entry
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
