package client

import (
	"context"
	"net/http"
	"net/url"

	"minicloud/pkg/types"
)

// FolderTree returns every folder of the account with its recursive size.
func (c *Client) FolderTree(ctx context.Context) ([]types.FolderNode, error) {
	var out []types.FolderNode
	if err := c.do(ctx, request{method: http.MethodGet, route: "/folders/tree", path: "/folders/tree"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFolder creates name below parentID and returns the new folder id.
func (c *Client) CreateFolder(ctx context.Context, name string, parentID *string) (string, error) {
	var out struct {
		FolderID string `json:"folder_id"`
	}
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/folders/create",
		path:   "/folders/create",
	}, struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parent_id"`
	}{name, parentID}, &out)
	if err != nil {
		return "", err
	}
	return out.FolderID, nil
}

// DeleteFolder deletes a folder with its subtree and files.
func (c *Client) DeleteFolder(ctx context.Context, folderID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/folders/delete/{id}",
		path:   "/folders/delete/" + url.PathEscape(folderID),
	}, nil)
}

// MoveFolder re-parents a folder; nil target is the root.
func (c *Client) MoveFolder(ctx context.Context, folderID string, target *string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/folders/move",
		path:   "/folders/move",
	}, struct {
		FolderID       string  `json:"folder_id"`
		TargetParentID *string `json:"target_parent_id"`
	}{folderID, target}, nil)
}

// Breadcrumb returns the ancestor chain from the root down to folderID.
func (c *Client) Breadcrumb(ctx context.Context, folderID string) ([]types.BreadcrumbEntry, error) {
	var out []types.BreadcrumbEntry
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/folders/breadcrumb/{id}",
		path:   "/folders/breadcrumb/" + url.PathEscape(folderID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
