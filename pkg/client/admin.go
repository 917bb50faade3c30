package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"minicloud/pkg/types"
)

// ListUsers lists all accounts with their per-account stats.
func (c *Client) ListUsers(ctx context.Context) ([]types.AdminUser, error) {
	var out []types.AdminUser
	if err := c.do(ctx, request{method: http.MethodGet, route: "/admin/users", path: "/admin/users"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeRole promotes a user to admin or demotes them to user.
func (c *Client) ChangeRole(ctx context.Context, userID string, makeAdmin bool) error {
	role := types.RoleUser
	if makeAdmin {
		role = types.RoleAdmin
	}
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/admin/change-role",
		path:   "/admin/change-role",
	}, struct {
		UserID    string `json:"user_id"`
		Role      string `json:"role"`
		MakeAdmin bool   `json:"make_admin"`
	}{userID, role, makeAdmin}, nil)
}

// AdminChangePassword sets another account's password.
func (c *Client) AdminChangePassword(ctx context.Context, userID, newPassword string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/admin/change-password",
		path:   "/admin/change-password",
	}, map[string]string{
		"user_id":      userID,
		"new_password": newPassword,
	}, nil)
}

// DeleteUser removes an account and all its content.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/admin/delete-user/{id}",
		path:   "/admin/delete-user/" + url.PathEscape(userID),
	}, nil)
}

// PluginRecord is a plugin as the backend stores it; Settings is opaque here.
type PluginRecord struct {
	Name        string          `json:"name"`
	Enabled     bool            `json:"enabled"`
	Description string          `json:"description,omitempty"`
	Settings    json.RawMessage `json:"settings,omitempty"`
}

// PluginUpdate changes the enabled flag, the settings, or both.
type PluginUpdate struct {
	Enabled  *bool           `json:"enabled,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// ListPlugins lists the server-side plugins.
func (c *Client) ListPlugins(ctx context.Context) ([]PluginRecord, error) {
	var out []PluginRecord
	if err := c.do(ctx, request{method: http.MethodGet, route: "/admin/plugins", path: "/admin/plugins"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePlugin applies update to the named plugin and returns the stored record.
func (c *Client) UpdatePlugin(ctx context.Context, name string, update PluginUpdate) (*PluginRecord, error) {
	var out PluginRecord
	err := c.doJSON(ctx, request{
		method: http.MethodPut,
		route:  "/admin/plugins/{name}",
		path:   "/admin/plugins/" + url.PathEscape(name),
	}, update, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
