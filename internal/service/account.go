package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
	"github.com/sakif/second-brain/internal/validation"
)

// SignupInput carries a registration request. The length limits are the
// ones existing clients were built against.
type SignupInput struct {
	Email     string `json:"email"     validate:"required,min=10,max=30,email"`
	Password  string `json:"password"  validate:"required,min=8,max=30"`
	FirstName string `json:"firstName" validate:"required,min=5,max=10"`
	LastName  string `json:"lastName"  validate:"required,min=1,max=10"`
}

// SigninInput carries a login request.
type SigninInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AccountService handles signup, signin and profile lookups.
//
//	AccountHandler (HTTP) → AccountService → UserRepository (DB)
//	                                       ↘ TokenService (JWT), PasswordService (bcrypt)
type AccountService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validate  *validation.Validator
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all required dependencies.
func NewAccountService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	validate *validation.Validator,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		validate:  validate,
		logger:    logger,
	}
}

// Register validates the input, hashes the password and creates the user.
//
// Uniqueness is left to the store's unique index on email rather than a
// check-then-insert, so two concurrent signups for the same address cannot
// both succeed. The loser gets apperror.ErrDuplicateAccount.
func (s *AccountService) Register(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password",
				fmt.Sprintf("password must not exceed %d bytes", auth.MaxPasswordBytes))
		}
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.DuplicateAccount()
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/account: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return user, nil
}

// Authenticate checks the credentials and returns a signed token for the user.
//
// An unknown email is apperror.ErrNotFound and a wrong password is
// apperror.ErrInvalidCredentials. Clients have always been able to tell
// the two apart.
func (s *AccountService) Authenticate(ctx context.Context, in SigninInput) (string, error) {
	if err := s.validate.Validate(in); err != nil {
		return "", err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.NotFoundMessage("user not found")
		}
		return "", fmt.Errorf("service/account: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", apperror.InvalidCredentials()
		}
		return "", fmt.Errorf("service/account: verifying password for user %s: %w", user.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("service/account: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))
	return token, nil
}

// GetProfile returns the public part of the user's record.
// A token whose user has since been deleted yields apperror.ErrNotFound.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*model.Owner, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("user id missing from request")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/account: fetching user %s: %w", userID, err)
	}

	return &model.Owner{ID: user.ID, FirstName: user.FirstName}, nil
}
