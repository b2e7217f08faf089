// internal/app/auth.go
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
	"github.com/shrimpsizemoose/zhurnal/internal/store"
)

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return invalid(strings.ToLower(fe.Field()), fmt.Sprintf("failed on %q", fe.Tag()))
	}
	return invalid("request", err.Error())
}

func (s *Service) Register(form models.RegisterForm) (*models.User, error) {
	form.Normalize()
	if err := models.Validate(&form); err != nil {
		return nil, validationError(err)
	}

	existing, err := s.Store.GetUserByEmail(form.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	user := &models.User{Email: form.Email, Role: form.Role}
	if err := user.SetPassword(form.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.Store.CreateUser(user); err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	logger.Info.Printf("Registered %s as %s", user.Email, user.Role)
	return user, nil
}

// Login checks the credentials and opens a session, the returned token goes into the cookie.
func (s *Service) Login(ctx context.Context, form models.LoginForm) (string, *models.User, error) {
	form.Normalize()
	if err := models.Validate(&form); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.Store.GetUserByEmail(form.Email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.CheckPassword(form.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Sessions.Create(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Destroy(ctx, token)
}

// Authenticate turns a session token into the user it was issued to.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrAuthRequired
	}

	userID, err := s.Sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.Store.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d is gone", ErrAuthRequired, userID)
	}
	return user, nil
}

func RequireAdmin(actor *models.User) error {
	if actor == nil {
		return ErrAuthRequired
	}
	if !actor.IsTeacher() {
		return ErrForbidden
	}
	return nil
}
