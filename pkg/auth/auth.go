package auth

import (
	"context"
	"errors"

	"minicloud/pkg/client"
)

var (
	ErrEmptyUsername    = errors.New("username is required")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrWeakPassword     = errors.New("password does not meet the requirements")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyPassword    = errors.New("password is required")
	ErrNotSignedIn      = errors.New("not signed in")
)

// API is the part of the backend the auth flows talk to
type API interface {
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, username, email, password string) (*client.RegisterResponse, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// RegisterInput is the registration form as entered
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Confirm  string
	// Language is stored as the initial UI language when set
	Language string
}
