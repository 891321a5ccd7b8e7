package service

import (
	"context"

	"github.com/riskids/riskids-betest/internal/domain"
)

// UserService coordinates the record store and the lookup cache around the
// user lifecycle. For every mutation the store commit strictly precedes any
// cache write, so the cache can only ever lag reality within its TTL.
type UserService interface {
	CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserResponse, error)
	GetUserByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, error)
	GetUserByRegistrationNumber(ctx context.Context, registrationNumber string) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
	GetInactiveAccounts(ctx context.Context) ([]domain.InactiveAccount, error)
}

// AuthService authenticates logins and records login/logout activity.
type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResult, error)
	Logout(ctx context.Context, accountID string) error
}
