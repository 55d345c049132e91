package accrual

import "context"

type Repository interface {
	// Upsert inserts a or overwrites the row with the same ID.
	Upsert(ctx context.Context, a *InterestAccrual) error
	ListByNote(ctx context.Context, noteID string) ([]*InterestAccrual, error)
	// LatestByNote returns the most recent accrual of each note in noteIDs.
	LatestByNote(ctx context.Context, noteIDs []string) (map[string]*InterestAccrual, error)
}
