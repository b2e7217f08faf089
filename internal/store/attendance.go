package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

// ToggleAttendance deletes the (student, date) row if present and inserts it otherwise.
// It reports whether the student is now marked present. A concurrent insert of the
// same pair fails on the unique index with ErrUniqueViolation.
func (s *BaseStore) ToggleAttendance(studentID int64, date models.Date) (bool, error) {
	present := false
	err := s.inTx(func(tx *sqlx.Tx) error {
		res, err := tx.Exec(
			s.Converter(`DELETE FROM attendance WHERE student_id = ? AND date = ?`),
			studentID,
			date,
		)
		if err != nil {
			return fmt.Errorf("failed to delete attendance: %w", err)
		}
		deleted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if deleted > 0 {
			return nil
		}

		if err := s.mustExist(tx, `SELECT COUNT(*) FROM students WHERE id = ?`, studentID, ErrMissingStudent); err != nil {
			return err
		}
		if _, err := tx.Exec(
			s.Converter(`INSERT INTO attendance (student_id, date) VALUES (?, ?)`),
			studentID,
			date,
		); err != nil {
			return s.wrapWrite(err, "insert attendance")
		}
		present = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return present, nil
}

func (s *BaseStore) ListAttendance(start, end models.Date) ([]models.Attendance, error) {
	rows := []models.Attendance{}
	query := s.Converter(`
		SELECT id, student_id, date
		FROM attendance
		WHERE date BETWEEN ? AND ?
		ORDER BY student_id, date
	`)
	if err := s.DB.Select(&rows, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) CountAttendance(studentID int64, start, end models.Date) (int, error) {
	var n int
	query := s.Converter(`
		SELECT COUNT(*)
		FROM attendance
		WHERE student_id = ?
		AND date BETWEEN ? AND ?
	`)
	if err := s.DB.Get(&n, query, studentID, start, end); err != nil {
		return 0, fmt.Errorf("failed to count attendance of student %d: %w", studentID, err)
	}
	return n, nil
}

func (s *BaseStore) CountAllAttendance(start, end models.Date) (int, error) {
	var n int
	query := s.Converter(`SELECT COUNT(*) FROM attendance WHERE date BETWEEN ? AND ?`)
	if err := s.DB.Get(&n, query, start, end); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return n, nil
}
