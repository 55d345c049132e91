package disbursement

import "context"

type Repository interface {
	Create(ctx context.Context, d *Disbursement) error
	// GetByID returns ErrNotFound when id is unknown.
	GetByID(ctx context.Context, id string) (*Disbursement, error)
	List(ctx context.Context, f Filter) ([]*Disbursement, error)

	// CompareAndSetStatus atomically moves the row to `to` only while its
	// current status is one of `from`. It reports whether a row was changed.
	CompareAndSetStatus(ctx context.Context, id string, from []Status, to Status, c Changes) (bool, error)
}
