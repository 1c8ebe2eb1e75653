package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component. Due dates are
// compared by calendar ordering, never by timestamp arithmetic, so a task due
// "2030-05-01" means the same day in every timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the calendar date of the received time in its location.
func NewDate(t time.Time) Date {
	year, month, day := t.Date()

	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, WrapErrorf(err, ErrorCodeInvalidArgument, "time.Parse")
	}

	return NewDate(t), nil
}

// Time returns the date at midnight UTC, the canonical instant used when a
// time.Time is unavoidable, such as when writing DATE columns.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "json.Unmarshal")
	}

	res, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = res

	return nil
}
