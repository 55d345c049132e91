package http

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestHex32Validation(t *testing.T) {
	type P struct {
		NoteID string `json:"promissory_note_id" validate:"hex32"`
	}
	cv := NewValidator()

	// valid: 32-char lowercase hex
	ok := P{NoteID: strings.Repeat("a", 32)}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	for _, s := range []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
	} {
		err := cv.Validate(P{NoteID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "promissory_note_id", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestMoneyValidation(t *testing.T) {
	type S struct {
		Amount string `json:"amount" validate:"money"`
	}
	type F struct {
		Amount float64 `json:"amount" validate:"money"`
	}
	type D struct {
		Amount decimal.Decimal `json:"amount" validate:"money"`
	}
	cv := NewValidator()

	for _, v := range []string{"1", "100000", "100000.5", "0.01", " 25.10 "} {
		if err := cv.Validate(S{Amount: v}); err != nil {
			t.Fatalf("expected money OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"0", "-5", "1.234", "abc", ""} {
		err := cv.Validate(S{Amount: v})
		if err == nil {
			t.Fatalf("expected money error for %q", v)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "amount", "at most 2 decimal places") {
			t.Fatalf("expected money message for %q, got %+v", v, fe)
		}
	}
	if err := cv.Validate(F{Amount: 1500.25}); err != nil {
		t.Fatalf("float: %v", err)
	}
	if err := cv.Validate(F{Amount: 1.005}); err == nil {
		t.Fatalf("expected float with 3 decimals to fail")
	}
	if err := cv.Validate(D{Amount: decimal.RequireFromString("99.99")}); err != nil {
		t.Fatalf("decimal: %v", err)
	}
	if err := cv.Validate(D{Amount: decimal.Zero}); err == nil {
		t.Fatalf("expected zero decimal to fail")
	}
}

func TestRateValidation(t *testing.T) {
	type P struct {
		Rate string `json:"interest_rate_annual" validate:"rate"`
	}
	cv := NewValidator()

	for _, v := range []string{"0", "0.145", "1", "0.000001"} {
		if err := cv.Validate(P{Rate: v}); err != nil {
			t.Fatalf("expected rate OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"-0.01", "1.01", "14.5", "x"} {
		err := cv.Validate(P{Rate: v})
		if err == nil {
			t.Fatalf("expected rate error for %q", v)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "interest_rate_annual", "between 0 and 1") {
			t.Fatalf("expected rate message for %q, got %+v", v, fe)
		}
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name string `validate:"required"`
		Min  int    `json:"min" validate:"gte=10"`
		Max  int    `json:"max" validate:"lte=5"`
		Date string `json:"date" validate:"datetime=2006-01-02"`
	}
	cv := NewValidator()

	err := cv.Validate(P{Name: "", Min: 9, Max: 6, Date: "14/02/2025"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	// untagged fields keep their Go name
	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	if !containsFieldMsg(fe, "min", "greater than or equal to 10") {
		t.Fatalf("missing gte message for min: %+v", fe)
	}
	if !containsFieldMsg(fe, "max", "less than or equal to 5") {
		t.Fatalf("missing lte message for max: %+v", fe)
	}
	if !containsFieldMsg(fe, "date", "2006-01-02") {
		t.Fatalf("missing datetime message for date: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
