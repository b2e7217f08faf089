package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

type User struct {
	ID       int64  `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	Password string `db:"password" json:"-"`
	Role     string `db:"role" json:"role"`
}

func (u *User) IsTeacher() bool {
	return u != nil && u.Role == RoleTeacher
}

func (u *User) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
