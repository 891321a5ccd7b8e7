package domain

import (
	"time"
)

// User is the authoritative account record. AccountNumber, EmailAddress and
// RegistrationNumber are each globally unique; UserID is immutable once assigned.
type User struct {
	UserID             string `json:"userId"`
	FullName           string `json:"fullName"`
	AccountNumber      string `json:"accountNumber"`
	EmailAddress       string `json:"emailAddress"`
	RegistrationNumber string `json:"registrationNumber"`
}

// AccountLogin is the authentication record paired one-to-one with a User.
type AccountLogin struct {
	AccountID         string    `json:"accountId"`
	UserName          string    `json:"userName"`
	Password          string    `json:"-"`
	LastLoginDateTime time.Time `json:"lastLoginDateTime"`
	UserID            string    `json:"userId"`
}

// CreateUserRequest is the payload for registering a new user.
// UserID and UserName are optional; the service fills them in when absent.
type CreateUserRequest struct {
	UserID             string `json:"userId"`
	FullName           string `json:"fullName" binding:"required"`
	AccountNumber      string `json:"accountNumber" binding:"required"`
	EmailAddress       string `json:"emailAddress" binding:"required,email"`
	RegistrationNumber string `json:"registrationNumber" binding:"required"`
	UserName           string `json:"userName"`
	Password           string `json:"password" binding:"required,min=6"`
}

// UpdateUserRequest is a partial update. The immutable userId is deliberately
// not part of this payload, so it can never be overwritten.
type UpdateUserRequest struct {
	FullName           *string `json:"fullName"`
	AccountNumber      *string `json:"accountNumber"`
	EmailAddress       *string `json:"emailAddress" binding:"omitempty,email"`
	RegistrationNumber *string `json:"registrationNumber"`
}

// LoginRequest is the payload for authenticating.
type LoginRequest struct {
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

// UserResponse is the public projection of a User returned from create/login.
type UserResponse struct {
	UserID       string `json:"userId"`
	FullName     string `json:"fullName"`
	EmailAddress string `json:"emailAddress"`
}

// LoginResult carries the authenticated user's public fields and a bearer token.
type LoginResult struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// InactiveAccount is a stale login joined with its user, as reported by the
// inactivity scan.
type InactiveAccount struct {
	AccountID         string    `json:"accountId"`
	UserName          string    `json:"userName"`
	LastLoginDateTime time.Time `json:"lastLoginDateTime"`
	User              User      `json:"user"`
}

// ToPublic converts a User to its public projection.
func (u *User) ToPublic() UserResponse {
	return UserResponse{
		UserID:       u.UserID,
		FullName:     u.FullName,
		EmailAddress: u.EmailAddress,
	}
}
