package audit

import (
	"context"
	"time"
)

const (
	ActionDisbursementApproved  = "disbursement.approved"
	ActionDisbursementCancelled = "disbursement.cancelled"
	ActionNoteSettled           = "note.settled"
	ActionTransactionMatched    = "bank_transaction.matched"
	ActionTransactionUnmatched  = "bank_transaction.unmatched"
)

type Entry struct {
	ID         string    `gorm:"primaryKey;size:32;column:id" json:"id"`
	Action     string    `gorm:"size:64;not null;index;column:action" json:"action"`
	EntityType string    `gorm:"size:32;not null;index:idx_audit_entity;column:entity_type" json:"entity_type"`
	EntityID   string    `gorm:"size:32;not null;index:idx_audit_entity;column:entity_id" json:"entity_id"`
	ActorID    string    `gorm:"size:64;column:actor_id" json:"actor_id"`
	Details    string    `gorm:"type:text;column:details" json:"details,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "audit_entries" }

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*Entry, error)
}
