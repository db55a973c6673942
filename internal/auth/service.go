package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookstore/internal/apperror"
	"bookstore/internal/httpx"
	"bookstore/internal/platform/crypto"
	"bookstore/internal/user"
)

var (
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "Invalid credentials")
	ErrUserExists         = apperror.New(http.StatusBadRequest, "User already exists")
	ErrUserGone           = apperror.New(http.StatusUnauthorized, "User no longer exists")
)

// Session is the result of a successful registration or login.
type Session struct {
	Token string
	User  user.User
}

type Service struct {
	secret      string
	ttl         time.Duration
	userService *user.Service
}

func NewService(secret string, ttl time.Duration, userService *user.Service) *Service {
	return &Service{
		secret:      secret,
		ttl:         ttl,
		userService: userService,
	}
}

// Register creates an account and signs a token for it.
func (s *Service) Register(ctx context.Context, email, password string) (Session, error) {
	u, err := s.userService.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return Session{}, ErrUserExists
		}
		return Session{}, err
	}

	return s.issue(u)
}

// Login verifies credentials. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.userService.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return Session{}, ErrInvalidCredentials
	}

	return s.issue(u)
}

// ResolveIdentity implements httpx.IdentityResolver.
func (s *Service) ResolveIdentity(ctx context.Context, userID string) (httpx.Identity, error) {
	u, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return httpx.Identity{}, ErrUserGone
		}
		return httpx.Identity{}, err
	}
	return httpx.Identity{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}, nil
}

func (s *Service) issue(u user.User) (Session, error) {
	token, err := crypto.GenerateToken(s.secret, u.ID, u.Email, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, User: u}, nil
}
