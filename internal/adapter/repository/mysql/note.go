package mysql

import (
	"context"
	"errors"

	"loan-backoffice/internal/domain/note"

	"gorm.io/gorm"
)

type NoteRepository struct{ db *gorm.DB }

func NewNoteRepository(db *gorm.DB) *NoteRepository { return &NoteRepository{db: db} }

func (r *NoteRepository) Create(ctx context.Context, n *note.PromissoryNote) error {
	err := r.db.WithContext(ctx).Create(n).Error
	if !isDuplicate(err) {
		return err
	}
	// Two unique indexes can fire; tell them apart by looking for the owner.
	if _, getErr := r.GetByDisbursementID(ctx, n.DisbursementID); getErr == nil {
		return note.ErrAlreadyExists
	}
	return note.ErrDuplicateNumber
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*note.PromissoryNote, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *NoteRepository) GetByDisbursementID(ctx context.Context, disbursementID string) (*note.PromissoryNote, error) {
	return r.first(ctx, "disbursement_id = ?", disbursementID)
}

func (r *NoteRepository) first(ctx context.Context, query string, args ...any) (*note.PromissoryNote, error) {
	var out note.PromissoryNote
	err := r.db.WithContext(ctx).Where(query, args...).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, note.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *NoteRepository) List(ctx context.Context, f note.Filter) ([]*note.PromissoryNote, error) {
	q := r.db.WithContext(ctx).Model(&note.PromissoryNote{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(f.Statuses))
	}
	if f.Principal != nil {
		q = q.Where("principal_amount = ?", *f.Principal)
	}
	if f.DueBefore != nil {
		q = q.Where("due_date < ?", *f.DueBefore)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	var out []*note.PromissoryNote
	err := q.Order("issue_date ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *NoteRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&note.PromissoryNote{}).
		Where("number LIKE ?", prefix+"%").
		Count(&n).Error
	return n, err
}

func (r *NoteRepository) CompareAndSetStatus(ctx context.Context, id string, from []note.Status, to note.Status, s *note.Settlement) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	cols := map[string]any{"status": string(to)}
	if s != nil {
		cols["settlement_amount"] = s.Amount
		cols["settlement_date"] = s.Date
	}
	res := r.db.WithContext(ctx).
		Model(&note.PromissoryNote{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
