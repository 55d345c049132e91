package banktx

import (
	"fmt"
	"time"

	"loan-backoffice/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = fmt.Errorf("bank transaction %w", apperr.ErrNotFound)
	ErrAlreadyMatched = fmt.Errorf("bank transaction %w", apperr.ErrAlreadyMatched)
)

// BankTransaction is one imported statement line. Amount is always stored as
// a positive magnitude; Matched is true exactly when MatchedNoteID is set.
type BankTransaction struct {
	ID              string          `gorm:"primaryKey;size:32;column:id" json:"id"`
	TransactionDate time.Time       `gorm:"type:date;not null;index;column:transaction_date" json:"transaction_date"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null;index;column:amount" json:"amount"`
	Description     string          `gorm:"type:text;column:description" json:"description"`
	Reference       string          `gorm:"size:128;column:reference" json:"reference"`
	Matched         bool            `gorm:"not null;default:false;index;column:matched" json:"matched"`
	MatchedNoteID   *string         `gorm:"size:32;index;column:matched_note_id" json:"matched_promissory_note_id,omitempty"`
	MatchedAt       *time.Time      `gorm:"column:matched_at" json:"matched_at,omitempty"`
	MatchedBy       *string         `gorm:"size:64;column:matched_by" json:"matched_by,omitempty"`
	ImportBatchID   string          `gorm:"size:32;index;column:import_batch_id" json:"import_batch_id,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BankTransaction) TableName() string { return "bank_transactions" }

type Filter struct {
	Matched *bool
}
