package mysql

import (
	"errors"
	"strings"

	"loan-backoffice/internal/domain/disbursement"
	"loan-backoffice/internal/domain/note"

	"gorm.io/gorm"
)

// isDuplicate covers both translated errors (TranslateError: true) and raw
// driver messages from MySQL / SQLite.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

func statusStrings[S ~string](in []S) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

var (
	_ disbursement.Repository = (*DisbursementRepository)(nil)
	_ note.Repository         = (*NoteRepository)(nil)
)
