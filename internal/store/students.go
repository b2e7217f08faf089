package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

func (s *BaseStore) CreateStudent(student *models.Student) error {
	query := s.Converter(`
		INSERT INTO students (name, parent_id)
		VALUES (?, ?)
		RETURNING id
	`)
	if err := s.DB.Get(&student.ID, query, student.Name, student.ParentID); err != nil {
		return s.wrapWrite(err, "create student")
	}
	return nil
}

func (s *BaseStore) GetStudent(id int64) (*models.Student, error) {
	var student models.Student
	found, err := s.get(&student, `SELECT id, name, parent_id FROM students WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &student, nil
}

func (s *BaseStore) GetStudentByName(name string) (*models.Student, error) {
	var student models.Student
	found, err := s.get(&student, `
		SELECT id, name, parent_id
		FROM students
		WHERE name = ?
		ORDER BY id
		LIMIT 1
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get student by name: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &student, nil
}

func (s *BaseStore) ListStudents() ([]models.Student, error) {
	students := []models.Student{}
	if err := s.DB.Select(&students, `SELECT id, name, parent_id FROM students ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) ListStudentsByParent(parentID int64) ([]models.Student, error) {
	students := []models.Student{}
	query := s.Converter(`
		SELECT id, name, parent_id
		FROM students
		WHERE parent_id = ?
		ORDER BY id
	`)
	if err := s.DB.Select(&students, query, parentID); err != nil {
		return nil, fmt.Errorf("failed to list students of parent %d: %w", parentID, err)
	}
	return students, nil
}

func (s *BaseStore) SetStudentParent(studentID, parentID int64) error {
	_, err := s.DB.Exec(s.Converter(`UPDATE students SET parent_id = ? WHERE id = ?`), parentID, studentID)
	if err != nil {
		return fmt.Errorf("failed to set parent of student %d: %w", studentID, err)
	}
	return nil
}

// DeleteStudent removes song links and attendance before the student row itself
func (s *BaseStore) DeleteStudent(id int64) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		for _, query := range []string{
			`DELETE FROM student_songs WHERE student_id = ?`,
			`DELETE FROM attendance WHERE student_id = ?`,
			`DELETE FROM students WHERE id = ?`,
		} {
			if _, err := tx.Exec(s.Converter(query), id); err != nil {
				return fmt.Errorf("failed to delete student %d: %w", id, err)
			}
		}
		return nil
	})
}
