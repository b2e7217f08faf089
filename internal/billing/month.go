// internal/billing/month.go
package billing

import (
	"fmt"
	"time"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

// Month is one calendar month with every day in order.
type Month struct {
	Year  int
	Month time.Month
	Days  []models.Date
	Start models.Date
	End   models.Date
}

func MonthInfo(year int, month time.Month) (Month, error) {
	if month < time.January || month > time.December {
		return Month{}, fmt.Errorf("month must be within 1..12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("year must be within 1..9999, got %d", year)
	}

	// day 0 of the next month is the last day of this one
	daysCount := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	days := make([]models.Date, 0, daysCount)
	for d := 1; d <= daysCount; d++ {
		days = append(days, models.NewDate(year, month, d))
	}

	return Month{
		Year:  year,
		Month: month,
		Days:  days,
		Start: days[0],
		End:   days[len(days)-1],
	}, nil
}

// MonthOf returns the month the date belongs to.
func MonthOf(d models.Date) Month {
	m, _ := MonthInfo(d.Year(), d.Month())
	return m
}

func (m Month) Prev() (int, time.Month) {
	t := time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

func (m Month) Next() (int, time.Month) {
	t := time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ParseMonth reads YYYY-MM.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, use YYYY-MM: %w", s, err)
	}
	return MonthInfo(t.Year(), t.Month())
}
