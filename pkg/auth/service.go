package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"minicloud/pkg/session"
	"minicloud/pkg/types"

	"go.uber.org/zap"
)

// Service runs the login, registration and password flows and keeps the
// session store in step with them.
type Service struct {
	api    API
	store  *session.Store
	logger *zap.Logger
}

// NewService creates an auth service.
func NewService(api API, store *session.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, store: store, logger: logger}
}

// Login exchanges credentials for a token and stores the new session.
func (s *Service) Login(ctx context.Context, username, password string) (types.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return types.Session{}, ErrEmptyUsername
	}
	if password == "" {
		return types.Session{}, ErrEmptyPassword
	}

	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return types.Session{}, err
	}

	sess := types.Session{Token: resp.Token, User: resp.User}
	if err := s.store.Save(sess); err != nil {
		return types.Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	if resp.User.Language != "" {
		if err := s.store.SetLanguage(resp.User.Language); err != nil {
			s.logger.Warn("Failed to store account language", zap.Error(err))
		}
	}

	s.logger.Info("Signed in",
		zap.String("user_id", sess.User.ID),
		zap.String("role", sess.User.Role))
	return sess, nil
}

// ValidateRegistration checks the form without contacting the server.
func ValidateRegistration(in RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return ErrEmptyUsername
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		return ErrInvalidEmail
	}
	return ValidateNewPassword(in.Password, in.Confirm)
}

// Register creates the account and signs in with the same credentials.
func (s *Service) Register(ctx context.Context, in RegisterInput) (types.Session, error) {
	if err := ValidateRegistration(in); err != nil {
		return types.Session{}, err
	}

	username := strings.TrimSpace(in.Username)
	resp, err := s.api.Register(ctx, username, strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		return types.Session{}, err
	}
	s.logger.Info("Registered account", zap.String("user_id", resp.UserID))

	if in.Language != "" {
		if err := s.store.SetLanguage(in.Language); err != nil {
			s.logger.Warn("Failed to store language", zap.Error(err))
		}
	}
	return s.Login(ctx, username, in.Password)
}

// Logout drops the stored session. Theme and language survive.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info("Signed out")
	return nil
}

// ChangePassword changes the signed-in user's password after checking
// the new password's rules and confirmation.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if s.store.Token() == "" {
		return ErrNotSignedIn
	}
	if current == "" {
		return ErrEmptyPassword
	}
	if err := ValidateNewPassword(next, confirm); err != nil {
		return err
	}
	return s.api.ChangePassword(ctx, current, next)
}
