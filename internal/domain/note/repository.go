package note

import "context"

type Repository interface {
	// Create returns ErrAlreadyExists when the disbursement already has a note
	// and ErrDuplicateNumber when n.Number is taken.
	Create(ctx context.Context, n *PromissoryNote) error
	GetByID(ctx context.Context, id string) (*PromissoryNote, error)
	GetByDisbursementID(ctx context.Context, disbursementID string) (*PromissoryNote, error)
	List(ctx context.Context, f Filter) ([]*PromissoryNote, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)

	// CompareAndSetStatus moves the note to `to` only while its status is one
	// of `from`. settlement is written only when non-nil.
	CompareAndSetStatus(ctx context.Context, id string, from []Status, to Status, settlement *Settlement) (bool, error)
}
