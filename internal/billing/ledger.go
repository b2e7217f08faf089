// internal/billing/ledger.go
package billing

import (
	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

const DefaultPrice = 130

// AttendanceCounter is the part of the store the ledger needs.
type AttendanceCounter interface {
	CountAttendance(studentID int64, start, end models.Date) (int, error)
	CountAllAttendance(start, end models.Date) (int, error)
}

type Ledger struct {
	counter AttendanceCounter
	price   int
}

func NewLedger(counter AttendanceCounter, price int) *Ledger {
	if price <= 0 {
		price = DefaultPrice
	}
	return &Ledger{counter: counter, price: price}
}

func (l *Ledger) Price() int {
	return l.price
}

func (l *Ledger) Amount(lessons int) int {
	return lessons * l.price
}

// MonthSum bills one student for the lessons attended within [start, end].
func (l *Ledger) MonthSum(studentID int64, start, end models.Date) (int, error) {
	n, err := l.counter.CountAttendance(studentID, start, end)
	if err != nil {
		return 0, err
	}
	return l.Amount(n), nil
}

// Total bills every student for the lessons within [start, end].
func (l *Ledger) Total(start, end models.Date) (int, error) {
	n, err := l.counter.CountAllAttendance(start, end)
	if err != nil {
		return 0, err
	}
	return l.Amount(n), nil
}

// Bill is one row of a monthly statement.
type Bill struct {
	StudentID int64  `json:"student_id"`
	Name      string `json:"name"`
	Lessons   int    `json:"lessons"`
	MonthSum  int    `json:"month_sum"`
}

// Statement builds the bills of the given students from their attendance in m.
func (l *Ledger) Statement(students []models.Student, attendance []models.Attendance, m Month) ([]Bill, int) {
	lessons := make(map[int64]int, len(students))
	for _, a := range attendance {
		if a.Date.Before(m.Start.Time) || a.Date.After(m.End.Time) {
			continue
		}
		lessons[a.StudentID]++
	}

	bills := make([]Bill, 0, len(students))
	for _, s := range students {
		b := Bill{
			StudentID: s.ID,
			Name:      s.Name,
			Lessons:   lessons[s.ID],
			MonthSum:  l.Amount(lessons[s.ID]),
		}
		bills = append(bills, b)
	}
	return bills, Sum(bills)
}

// Sum adds up the month sums of the bills.
func Sum(bills []Bill) int {
	total := 0
	for _, b := range bills {
		total += b.MonthSum
	}
	return total
}
