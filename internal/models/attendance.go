package models

// unique (student_id, date) is handled on DB level
type Attendance struct {
	ID        int64 `db:"id" json:"id"`
	StudentID int64 `db:"student_id" json:"student_id"`
	Date      Date  `db:"date" json:"date"`
}
