package schedule

import (
	"fmt"
	"time"
)

// YearMonth identifies one UTC calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses a "YYYY-MM" string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.ParseInLocation("2006-01", s, time.UTC)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the UTC calendar month containing t.
func MonthOf(t time.Time) YearMonth {
	u := t.UTC()
	return YearMonth{Year: u.Year(), Month: u.Month()}
}

// Index returns the month as a single signed count, so that the difference
// between two months is their distance in months.
func (m YearMonth) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Bounds returns the [start, end) instants of the month in UTC.
func (m YearMonth) Bounds() (time.Time, time.Time) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Start returns the first instant of the month in UTC.
func (m YearMonth) Start() time.Time {
	start, _ := m.Bounds()
	return start
}

func (m YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
