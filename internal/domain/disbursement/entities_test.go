package disbursement

import (
	"errors"
	"reflect"
	"testing"

	"loan-backoffice/internal/domain/apperr"
)

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from    Status
		action  Action
		want    Status
		wantErr bool
	}{
		{StatusPending, ActionApprove, StatusApproved, false},
		{StatusPending, ActionCancel, StatusCancelled, false},
		{StatusApproved, ActionCancel, StatusCancelled, false},
		{StatusApproved, ActionDisburse, StatusDisbursed, false},
		{StatusDisbursed, ActionSettle, StatusSettled, false},
		{StatusApproved, ActionApprove, "", true},
		{StatusCancelled, ActionApprove, "", true},
		{StatusDisbursed, ActionCancel, "", true},
		{StatusSettled, ActionCancel, "", true},
		{StatusPending, ActionDisburse, "", true},
		{StatusApproved, ActionEdit, "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := tt.from.Next(tt.action)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrInvalidState) {
					t.Fatalf("want invalid state, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Next() = %s, %v; want %s", got, err, tt.want)
			}
		})
	}
}

func TestFromAndTarget(t *testing.T) {
	if got := From(ActionCancel); !reflect.DeepEqual(got, []Status{StatusPending, StatusApproved}) {
		t.Fatalf("From(cancel) = %v", got)
	}
	if got := From(ActionSettle); !reflect.DeepEqual(got, []Status{StatusApproved, StatusDisbursed}) {
		t.Fatalf("From(settle) = %v", got)
	}
	if got := Target(ActionDisburse); got != StatusDisbursed {
		t.Fatalf("Target(disburse) = %s", got)
	}
}

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []Status{StatusSettled, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
		for _, a := range []Action{ActionApprove, ActionDisburse, ActionSettle, ActionCancel, ActionEdit} {
			if _, err := s.Next(a); err == nil {
				t.Errorf("%s should reject %s", s, a)
			}
		}
	}
	if StatusPending.Terminal() || !StatusPending.Valid() || Status("bogus").Valid() {
		t.Fatal("unexpected Terminal/Valid result")
	}
}
