package models

import "database/sql"

type Student struct {
	ID       int64         `db:"id" json:"id"`
	Name     string        `db:"name" json:"name"`
	ParentID sql.NullInt64 `db:"parent_id" json:"-"`
}

func (s *Student) OwnedBy(userID int64) bool {
	return s.ParentID.Valid && s.ParentID.Int64 == userID
}

type Song struct {
	ID         int64  `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	Author     string `db:"author" json:"author"`
	Difficulty int    `db:"difficulty" json:"difficulty"`
}

// StudentSong links a song to the student it is assigned to.
type StudentSong struct {
	StudentID int64 `db:"student_id" json:"student_id"`
	SongID    int64 `db:"song_id" json:"song_id"`
}

// Assignment is a StudentSong joined with the song it points to.
type Assignment struct {
	StudentID int64 `db:"student_id"`
	Song
}
