package user

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/platform/crypto"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register hashes password and stores a new account. The email lookup runs
// first so a taken address is rejected without paying for bcrypt; a
// concurrent registration is caught by the store as apperror.ErrDuplicateKey.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return User{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	newUser := &User{
		Email:    email,
		Password: hashed,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return *newUser, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, email)
}
