package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

type JournalStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CountUsers() (int, error)
	CreateUser(user *models.User) error
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)

	CreateStudent(student *models.Student) error
	GetStudent(id int64) (*models.Student, error)
	GetStudentByName(name string) (*models.Student, error)
	ListStudents() ([]models.Student, error)
	ListStudentsByParent(parentID int64) ([]models.Student, error)
	SetStudentParent(studentID, parentID int64) error
	DeleteStudent(id int64) error

	CreateSong(song *models.Song) error
	GetSongByTitle(title string) (*models.Song, error)
	ListSongs() ([]models.Song, error)
	DeleteSong(id int64) error

	AssignSong(studentID, songID int64) error
	UnassignSong(studentID, songID int64) error
	ListAssignments() ([]models.Assignment, error)

	ToggleAttendance(studentID int64, date models.Date) (bool, error)
	ListAttendance(start, end models.Date) ([]models.Attendance, error)
	CountAttendance(studentID int64, start, end models.Date) (int, error)
	CountAllAttendance(start, end models.Date) (int, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB *sqlx.DB
	// Converter rewrites ? placeholders into the dialect's bindvars
	Converter func(string) string
	// IsUniqueViolation recognises the driver's unique constraint error
	IsUniqueViolation func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory in file name order, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Info.Printf("Applying migration: %s", file.Name())
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) wrapWrite(err error, what string) error {
	if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
		return fmt.Errorf("failed to %s: %w", what, ErrUniqueViolation)
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}

// inTx runs fn in a transaction and commits only if fn succeeds
func (s *BaseStore) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error.Printf("Rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *BaseStore) get(dest interface{}, query string, args ...interface{}) (bool, error) {
	err := s.DB.Get(dest, s.Converter(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
