package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and
// inactive accounts alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService coordinates account creation and login.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	IsStaff     bool
	IsSuperuser bool
}

func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// Authenticate checks username and password and returns the active user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, mapRepoErr(err, "user")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Create hashes the password and stores a new active user.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, errorutil.NewValidationError("invalid user", map[string]any{"username": "This field is required."})
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, errorutil.NewValidationError("invalid user", map[string]any{"password": err.Error()})
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		IsStaff:      input.IsStaff || input.IsSuperuser,
		IsSuperuser:  input.IsSuperuser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapRepoErr(err, "user")
	}
	return user, nil
}

// GetByUsername loads a user by login name.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	return user, nil
}

// List returns every user ordered by username.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	return users, mapRepoErr(err, "user")
}

func (s *UserService) Count(ctx context.Context) (int, error) {
	users, err := s.List(ctx)
	return len(users), err
}
