package client

import (
	"context"
	"net/http"

	"minicloud/pkg/types"
)

// LoginResponse is the response from POST /auth/login.
type LoginResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// RegisterResponse is the response from POST /auth/register.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// Login exchanges credentials for a token and the user profile.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, request{
		method:    http.MethodPost,
		route:     "/auth/login",
		path:      "/auth/login",
		anonymous: true,
	}, map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	err := c.doJSON(ctx, request{
		method:    http.MethodPost,
		route:     "/auth/register",
		path:      "/auth/register",
		anonymous: true,
	}, map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the signed-in user's own password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/auth/change-password",
		path:   "/auth/change-password",
	}, map[string]string{
		"current_password": current,
		"new_password":     next,
	}, nil)
}

// Me returns the profile behind the current token.
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var out types.User
	if err := c.do(ctx, request{method: http.MethodGet, route: "/auth/me", path: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetLanguage persists the UI language preference server side.
func (c *Client) SetLanguage(ctx context.Context, lang string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/user/language",
		path:   "/user/language",
	}, map[string]string{"language": lang}, nil)
}

// Stats returns the account-wide usage totals.
func (c *Client) Stats(ctx context.Context) (*types.Stats, error) {
	var out types.Stats
	if err := c.do(ctx, request{method: http.MethodGet, route: "/user/stats", path: "/user/stats"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
