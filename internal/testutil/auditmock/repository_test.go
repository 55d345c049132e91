package auditmock

import (
	"context"
	"reflect"
	"testing"

	domain "loan-backoffice/internal/domain/audit"
)

func TestRepo_RecordsEntries(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	_ = m.Create(ctx, &domain.Entry{Action: domain.ActionNoteSettled, EntityType: "note", EntityID: "N1"})
	_ = m.Create(ctx, &domain.Entry{Action: domain.ActionTransactionMatched, EntityType: "bank_transaction", EntityID: "T1"})

	if got := m.Actions(); !reflect.DeepEqual(got, []string{domain.ActionNoteSettled, domain.ActionTransactionMatched}) {
		t.Fatalf("Actions() = %v", got)
	}
	got, _ := m.ListByEntity(ctx, "note", "N1")
	if len(got) != 1 || got[0].Action != domain.ActionNoteSettled {
		t.Fatalf("ListByEntity = %+v", got)
	}
}
