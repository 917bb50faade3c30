package apitest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"minicloud/pkg/auth"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type userJSON struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	Language     string `json:"language,omitempty"`
}

func (a *account) json() userJSON {
	return userJSON{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		Role:         a.Role,
		IsSuperAdmin: a.IsSuperAdmin,
		Language:     a.Language,
	}
}

func (s *Server) issueToken(a *account) (string, error) {
	now := s.now()
	claims := auth.Claims{
		UserID:       a.ID,
		Username:     a.Username,
		Role:         a.Role,
		IsSuperAdmin: a.IsSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.tokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var claims auth.Claims
		_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if errors.Is(err, jwt.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Token expired")
			return
		}
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		s.mu.Lock()
		a := s.accounts[claims.UserID]
		s.mu.Unlock()
		if a == nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, a)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		isAdmin := currentAccount(r.Context()).Role == "admin"
		s.mu.Unlock()
		if !isAdmin {
			writeError(w, http.StatusForbidden, "Access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accountByName(req.Username)
	if a == nil || bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.issueToken(a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": a.json()})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if msg := passwordProblem(req.Password); msg != "" {
		writeValidation(w, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountByName(req.Username) != nil {
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	}
	for _, a := range s.accounts {
		if a.Email == req.Email {
			writeError(w, http.StatusBadRequest, "Email already exists")
			return
		}
	}

	a := s.addAccount(req.Username, req.Email, req.Password, "user", false)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Registration successful", "user_id": a.ID})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if msg := passwordProblem(req.NewPassword); msg != "" {
		writeValidation(w, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := currentAccount(r.Context())
	if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(req.CurrentPassword)) != nil {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	a.PasswordHash, _ = bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	writeMessage(w, "Password changed successfully")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, currentAccount(r.Context()).json())
}

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Language == "" {
		writeError(w, http.StatusBadRequest, "Language is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	currentAccount(r.Context()).Language = req.Language
	writeMessage(w, "Language updated")
}

// passwordProblem returns the first failed rule as the backend words it.
func passwordProblem(pw string) string {
	check := auth.CheckPassword(pw)
	switch {
	case !check.Rule(auth.RuleLength):
		return "Password must be at least 8 characters"
	case !check.Rule(auth.RuleUpper):
		return "Password must contain at least one uppercase letter"
	case !check.Rule(auth.RuleLower):
		return "Password must contain at least one lowercase letter"
	case !check.Rule(auth.RuleSpecial):
		return "Password must contain at least one special character"
	}
	return ""
}
