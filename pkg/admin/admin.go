// Package admin is the view model of the user management panel. The
// backend enforces the same rules; they are checked here first so that a
// forbidden action never leaves the client.
package admin

import (
	"context"
	"errors"
	"sync"

	"minicloud/pkg/auth"
	"minicloud/pkg/client"
	"minicloud/pkg/i18n"
	"minicloud/pkg/notify"
	"minicloud/pkg/types"

	"go.uber.org/zap"
)

var (
	ErrSuperAdmin    = errors.New("the super admin cannot be modified")
	ErrRequiresSuper = errors.New("only the super admin can modify admin users")
	ErrSelfDelete    = errors.New("cannot delete your own account")
	ErrUnknownUser   = errors.New("unknown user")
	ErrNotConfirmed  = errors.New("deletion not confirmed")
)

// API is the admin part of the backend.
type API interface {
	ListUsers(ctx context.Context) ([]types.AdminUser, error)
	ChangeRole(ctx context.Context, userID string, makeAdmin bool) error
	AdminChangePassword(ctx context.Context, userID, newPassword string) error
	DeleteUser(ctx context.Context, userID string) error
}

// Summary aggregates the loaded user list.
type Summary struct {
	Users   int
	Admins  int
	Files   int
	Folders int
	Storage int64
}

// Summarize computes the totals shown above the user table.
func Summarize(users []types.AdminUser) Summary {
	var s Summary
	for _, u := range users {
		s.Users++
		if u.IsAdmin() {
			s.Admins++
		}
		s.Files += u.FileCount
		s.Folders += u.FolderCount
		s.Storage += u.StorageUsed
	}
	return s
}

// Confirmer asks before an account is deleted.
type Confirmer func(user types.AdminUser) bool

type Option func(*Panel)

func WithNotifier(n notify.Notifier) Option {
	return func(p *Panel) { p.notifier = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Panel) { p.logger = logger }
}

func WithConfirmer(c Confirmer) Option {
	return func(p *Panel) { p.confirm = c }
}

func WithTranslator(t i18n.Lookup) Option {
	return func(p *Panel) { p.t = t }
}

// Panel is the admin view model, acting on behalf of actor.
type Panel struct {
	api      API
	actor    types.User
	notifier notify.Notifier
	logger   *zap.Logger
	confirm  Confirmer
	t        i18n.Lookup

	mu    sync.Mutex
	users []types.AdminUser
}

func New(api API, actor types.User, opts ...Option) *Panel {
	p := &Panel{
		api:      api,
		actor:    actor,
		notifier: notify.Nop,
		logger:   zap.NewNop(),
		confirm:  func(types.AdminUser) bool { return false },
		t: func(key string, args ...any) string {
			return i18n.Translate("en", key, args...)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads the user list.
func (p *Panel) Load(ctx context.Context) error {
	users, err := p.api.ListUsers(ctx)
	if err != nil {
		p.logger.Warn("Failed to list users", zap.Error(err))
		notify.Error(p.notifier, client.Message(err, p.t("request.failed")))
		return err
	}
	if users == nil {
		users = []types.AdminUser{}
	}

	p.mu.Lock()
	p.users = users
	p.mu.Unlock()

	p.logger.Debug("Users loaded", zap.Int("count", len(users)))
	return nil
}

// Users returns a copy of the loaded list.
func (p *Panel) Users() []types.AdminUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.AdminUser(nil), p.users...)
}

func (p *Panel) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Summarize(p.users)
}

// User looks up a loaded account by id.
func (p *Panel) User(id string) (types.AdminUser, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.users {
		if u.ID == id {
			return u, true
		}
	}
	return types.AdminUser{}, false
}

// ChangeRole promotes or demotes userID.
func (p *Panel) ChangeRole(ctx context.Context, userID string, makeAdmin bool) error {
	target, err := p.guard(userID)
	if err != nil {
		return err
	}

	if err := p.api.ChangeRole(ctx, userID, makeAdmin); err != nil {
		return p.fail("Failed to change role", userID, err)
	}

	role := types.RoleUser
	if makeAdmin {
		role = types.RoleAdmin
	}
	p.logger.Info("Role changed", zap.String("user_id", userID), zap.String("role", role))
	notify.Success(p.notifier, p.t("admin.role_changed", target.Username, role))
	return p.Load(ctx)
}

// ChangePassword sets a new password for userID. The password rules are
// checked before anything is sent.
func (p *Panel) ChangePassword(ctx context.Context, userID, newPassword string) error {
	target, err := p.guard(userID)
	if err != nil {
		return err
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		notify.Error(p.notifier, err.Error())
		return err
	}

	if err := p.api.AdminChangePassword(ctx, userID, newPassword); err != nil {
		return p.fail("Failed to change password", userID, err)
	}

	p.logger.Info("Password changed by admin", zap.String("user_id", userID))
	notify.Success(p.notifier, p.t("admin.password_changed", target.Username))
	return p.Load(ctx)
}

// DeleteUser removes userID and all of its content once confirmed.
func (p *Panel) DeleteUser(ctx context.Context, userID string) error {
	if userID == p.actor.ID {
		notify.Error(p.notifier, p.t("admin.self_delete"))
		return ErrSelfDelete
	}
	target, err := p.guard(userID)
	if err != nil {
		return err
	}
	if !p.confirm(target) {
		return ErrNotConfirmed
	}

	if err := p.api.DeleteUser(ctx, userID); err != nil {
		return p.fail("Failed to delete user", userID, err)
	}

	p.logger.Info("User deleted", zap.String("user_id", userID), zap.String("username", target.Username))
	notify.Success(p.notifier, p.t("admin.user_deleted", target.Username))
	return p.Load(ctx)
}

// guard applies the modification rules to a loaded account.
func (p *Panel) guard(userID string) (types.AdminUser, error) {
	target, ok := p.User(userID)
	switch {
	case !ok:
		notify.Error(p.notifier, p.t("admin.unknown_user"))
		return target, ErrUnknownUser
	case target.IsSuperAdmin:
		notify.Error(p.notifier, p.t("admin.super_admin"))
		return target, ErrSuperAdmin
	case target.IsAdmin() && !p.actor.IsSuperAdmin:
		notify.Error(p.notifier, p.t("admin.requires_super"))
		return target, ErrRequiresSuper
	}
	return target, nil
}

func (p *Panel) fail(msg, userID string, err error) error {
	p.logger.Warn(msg, zap.String("user_id", userID), zap.Error(err))
	notify.Error(p.notifier, client.Message(err, p.t("request.failed")))
	return err
}
