package reconciliation

import (
	"fmt"
	"strings"
	"time"

	"loan-backoffice/internal/domain/apperr"
	"loan-backoffice/pkg/calendar"

	"github.com/shopspring/decimal"
)

// Row is one statement line keyed by its header.
type Row map[string]string

// Candidate headers per logical column, tried in order.
var (
	dateColumns        = []string{"Date", "Transaction Date", "date"}
	amountColumns      = []string{"Amount", "amount", "Credit", "Debit"}
	descriptionColumns = []string{"Description", "description", "Memo"}
	referenceColumns   = []string{"Reference", "reference", "Check Number"}
)

var dateLayouts = []string{
	calendar.DateLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2-Jan-2006",
}

// lookup returns the first non-blank value among names.
func (r Row) lookup(names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r[name]); v != "" {
			return v
		}
	}
	return ""
}

// parseAmount keeps digits, '.' and '-' and returns the absolute value:
// statement lines are stored as magnitudes.
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("missing amount: %w", apperr.ErrValidation)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, apperr.ErrValidation)
	}
	return d.Abs().Round(2), nil
}

// parseDate accepts the layouts banks commonly export and drops the time of day.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date: %w", apperr.ErrValidation)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendar.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, apperr.ErrValidation)
}

type normalizedRow struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Reference   string
}

func (r Row) normalize() (normalizedRow, error) {
	date, err := parseDate(r.lookup(dateColumns))
	if err != nil {
		return normalizedRow{}, err
	}
	amount, err := parseAmount(r.lookup(amountColumns))
	if err != nil {
		return normalizedRow{}, err
	}
	return normalizedRow{
		Date:        date,
		Amount:      amount,
		Description: r.lookup(descriptionColumns),
		Reference:   r.lookup(referenceColumns),
	}, nil
}
