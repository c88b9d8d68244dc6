package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/qoolink/server/internal/auth"
	"github.com/qoolink/server/internal/store"
	"github.com/qoolink/server/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// AuthService implements signup and login over the user repository and the
// password hasher. Session issuance lives in the session package; handlers
// compose the two.
type AuthService struct {
	repo UserRepository
}

func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Login verifies credentials and returns the matching user. Unknown email,
// missing credential, and wrong password all map to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("look up user: %w", err)
	}

	if user.PasswordHash == "" || !auth.VerifyPassword(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// SignupInput carries the signup form fields.
type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
}

// Signup validates the input, hashes the password, and creates the user.
// The email unique constraint is the race authority: a duplicate insert
// surfaces as ErrEmailTaken no matter how the pre-state looked.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (types.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	verr := newValidationError()
	if _, err := mail.ParseAddress(input.Email); err != nil {
		verr.add("email", "The email should be valid")
	}
	if input.Password == "" {
		verr.add("password", "Please provide a password")
	}
	if input.ConfirmPassword != input.Password {
		verr.add("confirmPassword", "It's not equal to the password")
	}
	if input.Name == "" {
		verr.add("name", "Please provide a name")
	}
	if err := verr.orNil(); err != nil {
		return types.User{}, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}
