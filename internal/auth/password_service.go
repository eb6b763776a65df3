package auth

import (
	"context"
	"errors"

	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

// PasswordService handles password authentication.
type PasswordService struct {
	users *repository.UsersRepository
}

// NewPasswordService creates a new password service.
func NewPasswordService(users *repository.UsersRepository) *PasswordService {
	return &PasswordService{users: users}
}

// Authenticate verifies email and password, returning the user on
// success. Unknown emails and wrong passwords both come back as
// ErrInvalidCredentials so callers cannot probe for accounts.
func (s *PasswordService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	hash, err := s.users.PasswordHash(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, hash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}
	return user, nil
}
