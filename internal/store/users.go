package store

import (
	"fmt"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

func (s *BaseStore) CountUsers() (int, error) {
	var n int
	if err := s.DB.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *BaseStore) CreateUser(user *models.User) error {
	query := s.Converter(`
		INSERT INTO users (email, password, role)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	if err := s.DB.Get(&user.ID, query, user.Email, user.Password, user.Role); err != nil {
		return s.wrapWrite(err, "create user")
	}
	return nil
}

func (s *BaseStore) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	found, err := s.get(&user, `SELECT id, email, password, role FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (s *BaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	found, err := s.get(&user, `SELECT id, email, password, role FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}
