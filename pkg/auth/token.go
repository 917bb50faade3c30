package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the backend puts into its access tokens.
type Claims struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	jwt.RegisteredClaims
}

// TokenInfo is what the client can learn from a token without the signing key.
type TokenInfo struct {
	UserID       string
	Username     string
	Role         string
	IsSuperAdmin bool
	ExpiresAt    time.Time
}

// Expired reports whether the token's exp claim lies before now. The token
// is still sent; the server decides.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// InspectToken decodes the claims of token without verifying its signature.
func InspectToken(token string) (*TokenInfo, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	info := &TokenInfo{
		UserID:       claims.UserID,
		Username:     claims.Username,
		Role:         claims.Role,
		IsSuperAdmin: claims.IsSuperAdmin,
	}
	if claims.Subject != "" && info.UserID == "" {
		info.UserID = claims.Subject
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
