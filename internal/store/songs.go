package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

func (s *BaseStore) CreateSong(song *models.Song) error {
	query := s.Converter(`
		INSERT INTO songs (title, author, difficulty)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	if err := s.DB.Get(&song.ID, query, song.Title, song.Author, song.Difficulty); err != nil {
		return s.wrapWrite(err, "create song")
	}
	return nil
}

func (s *BaseStore) GetSongByTitle(title string) (*models.Song, error) {
	var song models.Song
	found, err := s.get(&song, `SELECT id, title, author, difficulty FROM songs WHERE title = ?`, title)
	if err != nil {
		return nil, fmt.Errorf("failed to get song by title: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &song, nil
}

func (s *BaseStore) ListSongs() ([]models.Song, error) {
	songs := []models.Song{}
	if err := s.DB.Select(&songs, `SELECT id, title, author, difficulty FROM songs ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

func (s *BaseStore) DeleteSong(id int64) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		for _, query := range []string{
			`DELETE FROM student_songs WHERE song_id = ?`,
			`DELETE FROM songs WHERE id = ?`,
		} {
			if _, err := tx.Exec(s.Converter(query), id); err != nil {
				return fmt.Errorf("failed to delete song %d: %w", id, err)
			}
		}
		return nil
	})
}

// AssignSong is an upsert, assigning the same pair twice is not an error
func (s *BaseStore) AssignSong(studentID, songID int64) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		if err := s.mustExist(tx, `SELECT COUNT(*) FROM students WHERE id = ?`, studentID, ErrMissingStudent); err != nil {
			return err
		}
		if err := s.mustExist(tx, `SELECT COUNT(*) FROM songs WHERE id = ?`, songID, ErrMissingSong); err != nil {
			return err
		}

		_, err := tx.Exec(s.Converter(`
			INSERT INTO student_songs (student_id, song_id)
			VALUES (?, ?)
			ON CONFLICT (student_id, song_id) DO NOTHING
		`), studentID, songID)
		if err != nil {
			return fmt.Errorf("failed to assign song %d to student %d: %w", songID, studentID, err)
		}
		return nil
	})
}

func (s *BaseStore) UnassignSong(studentID, songID int64) error {
	_, err := s.DB.Exec(
		s.Converter(`DELETE FROM student_songs WHERE student_id = ? AND song_id = ?`),
		studentID,
		songID,
	)
	if err != nil {
		return fmt.Errorf("failed to unassign song %d from student %d: %w", songID, studentID, err)
	}
	return nil
}

func (s *BaseStore) ListAssignments() ([]models.Assignment, error) {
	assignments := []models.Assignment{}
	err := s.DB.Select(&assignments, `
		SELECT
			ss.student_id,
			s.id,
			s.title,
			s.author,
			s.difficulty
		FROM student_songs ss
		JOIN songs s ON s.id = ss.song_id
		ORDER BY ss.student_id, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *BaseStore) mustExist(tx *sqlx.Tx, query string, id int64, missing error) error {
	var n int
	if err := tx.Get(&n, s.Converter(query), id); err != nil {
		return fmt.Errorf("failed to check existence of %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, missing)
	}
	return nil
}
