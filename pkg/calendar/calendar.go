// Package calendar works with calendar days. All values are normalized to
// midnight UTC so that day arithmetic is independent of wall-clock time.
package calendar

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is Day(time.Now()).
func Today() time.Time { return Day(time.Now()) }

// DaysBetween returns the whole number of days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(math.Floor(Day(b).Sub(Day(a)).Hours() / 24))
}

// AbsDays is |DaysBetween(a, b)|.
func AbsDays(a, b time.Time) int {
	n := DaysBetween(a, b)
	if n < 0 {
		return -n
	}
	return n
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string { return Day(t).Format(DateLayout) }
