package repository

import (
	"context"
	"errors"
	"time"

	"github.com/riskids/riskids-betest/internal/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrLoginNotFound = errors.New("account login not found")

	ErrDuplicateAccountNumber      = errors.New("account number already exists")
	ErrDuplicateEmail              = errors.New("email address already exists")
	ErrDuplicateRegistrationNumber = errors.New("registration number already exists")
	ErrDuplicateAccountID          = errors.New("account id already exists")
)

// UserRepository is the authoritative store for users and their logins.
// Uniqueness of account number, email, registration number and account id is
// enforced at the storage layer.
type UserRepository interface {
	// CreateUser persists a user and its paired login in one transaction,
	// user row first.
	CreateUser(ctx context.Context, user *domain.User, login *domain.AccountLogin) error

	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, error)
	GetUserByRegistrationNumber(ctx context.Context, registrationNumber string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, emailAddress string) (*domain.User, error)

	// UpdateUser applies a partial update and returns the resulting snapshot.
	// The userId itself is immutable and not part of the patch.
	UpdateUser(ctx context.Context, userID string, patch *domain.UpdateUserRequest) (*domain.User, error)

	// DeleteUser removes the user and its login in one transaction and
	// returns the deleted snapshot.
	DeleteUser(ctx context.Context, userID string) (*domain.User, error)

	GetLoginByUserID(ctx context.Context, userID string) (*domain.AccountLogin, error)
	GetLoginByAccountID(ctx context.Context, accountID string) (*domain.AccountLogin, error)
	TouchLastLogin(ctx context.Context, accountID string, t time.Time) error

	// ListStaleLogins reports logins whose last login precedes the cutoff,
	// each joined with its user. The scan is a one-shot cursor over the store.
	ListStaleLogins(ctx context.Context, before time.Time) ([]domain.InactiveAccount, error)
}
