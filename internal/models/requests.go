package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ID accepts both 7 and "7" in JSON, the journal script sends data-* attributes as strings.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

type ToggleRequest struct {
	StudentID ID     `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
}

type StudentRequest struct {
	Name string `json:"name" validate:"required"`
}

type SongRequest struct {
	Title      string          `json:"title" validate:"required"`
	Author     string          `json:"author" validate:"required"`
	Difficulty json.RawMessage `json:"difficulty"`
}

type AssignRequest struct {
	StudentID ID `json:"student_id" validate:"required"`
	SongID    ID `json:"song_id" validate:"required"`
}

type ParentRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type RegisterForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Role     string `validate:"oneof=parent teacher"`
}

func (r *StudentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *SongRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
}

// DifficultyOrDefault falls back to 1 when the value is absent or not a number.
func (r *SongRequest) DifficultyOrDefault() int {
	raw := bytes.Trim(bytes.TrimSpace(r.Difficulty), `"`)
	if n, err := strconv.Atoi(string(raw)); err == nil {
		return n
	}
	return 1
}

func (f *LoginForm) Normalize() {
	f.Email = NormalizeEmail(f.Email)
}

func (f *RegisterForm) Normalize() {
	f.Email = NormalizeEmail(f.Email)
	if f.Role == "" {
		f.Role = RoleParent
	}
}

// Validate checks the struct tags of any request payload.
func Validate(v interface{}) error {
	return validate.Struct(v)
}
