package accrual

import (
	"time"

	"loan-backoffice/pkg/calendar"

	"github.com/shopspring/decimal"
)

// DefaultDayBasis is the banker's 360-day year.
const DefaultDayBasis = 360

// InterestAccrual is the interest owed on a note as of one calendar day.
// It is a snapshot, not an increment: each day's row replaces nothing and
// re-running a day overwrites that day's row.
type InterestAccrual struct {
	ID              string          `gorm:"primaryKey;size:64;column:id" json:"id"`
	NoteID          string          `gorm:"size:32;not null;index;column:note_id" json:"note_id"`
	DisbursementID  string          `gorm:"size:32;not null;index;column:disbursement_id" json:"disbursement_id"`
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;column:principal_amount" json:"principal_amount"`
	AnnualRate      decimal.Decimal `gorm:"type:decimal(9,6);not null;column:annual_rate" json:"annual_rate"`
	DaysOutstanding int             `gorm:"not null;column:days_outstanding" json:"days_outstanding"`
	DayBasis        int             `gorm:"not null;column:day_basis" json:"day_basis"`
	InterestAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;column:interest_amount" json:"interest_amount"`
	CalculationDate time.Time       `gorm:"type:date;not null;index;column:calculation_date" json:"calculation_date"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InterestAccrual) TableName() string { return "interest_accruals" }

// ID derives the primary key from (noteID, day), which is what makes the
// daily upsert idempotent.
func ID(noteID string, day time.Time) string {
	return noteID + ":" + calendar.Format(day)
}

// Interest is principal * rate * days / basis, rounded to cents.
func Interest(principal, annualRate decimal.Decimal, days, basis int) decimal.Decimal {
	if days <= 0 || basis <= 0 {
		return decimal.Zero
	}
	return principal.
		Mul(annualRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(int64(basis))).
		Round(2)
}
