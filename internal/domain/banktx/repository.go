package banktx

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t *BankTransaction) error
	GetByID(ctx context.Context, id string) (*BankTransaction, error)
	List(ctx context.Context, f Filter) ([]*BankTransaction, error)
	// MatchedNoteIDs returns the note ids currently linked to a matched transaction.
	MatchedNoteIDs(ctx context.Context) ([]string, error)

	// MarkMatched links the transaction to noteID only while it is unmatched.
	// It reports false when the guard failed or the row does not exist.
	MarkMatched(ctx context.Context, id, noteID, userID string, at time.Time) (bool, error)
	// ClearMatch unconditionally removes any link.
	ClearMatch(ctx context.Context, id string) error
}
