package vibe

import "time"

const dateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. It carries no time or zone.
type Date string

// LocalDate is the one place a timestamp becomes a calendar date. The date is
// taken in t's own location, so callers pass "now" already converted to the
// device zone.
func LocalDate(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// ParseDate reads a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", err
	}
	return Date(t.Format(dateLayout)), nil
}

// AddDays shifts the date by n calendar days. An unparseable date is returned unchanged.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(dateLayout))
}

func (d Date) Yesterday() Date {
	return d.AddDays(-1)
}

func (d Date) String() string {
	return string(d)
}

// datePtr returns a pointer to a copy of d.
func datePtr(d Date) *Date {
	return &d
}
