// Package app holds the application-scoped objects every command needs:
// configuration, the session store, the active language, the API client,
// notifications, logging and metrics. There is exactly one Context per
// process and the session is reached only through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"minicloud/pkg/admin"
	"minicloud/pkg/auth"
	"minicloud/pkg/client"
	"minicloud/pkg/config"
	"minicloud/pkg/directory"
	"minicloud/pkg/i18n"
	"minicloud/pkg/metrics"
	"minicloud/pkg/notify"
	"minicloud/pkg/plugins"
	"minicloud/pkg/session"
	"minicloud/pkg/types"

	"go.uber.org/zap"
)

var ErrAdminRequired = errors.New("admin access required")

// Options configures New. Only Config is required.
type Options struct {
	Config   *config.ClientConfig
	Logger   *zap.Logger
	Notifier notify.Notifier
	Metrics  *metrics.ClientMetrics
	// Storage overrides the session backend selected by Config.
	Storage session.Storage
}

type Context struct {
	Config   *config.ClientConfig
	Store    *session.Store
	I18n     *i18n.Provider
	API      *client.Client
	Notifier notify.Notifier
	Logger   *zap.Logger
	Metrics  *metrics.ClientMetrics

	auth   *auth.Service
	closer io.Closer
}

// New opens the session storage and wires the application objects.
func New(opts Options) (*Context, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogger(logger)
	}

	storage := opts.Storage
	var closer io.Closer
	if storage == nil {
		var err error
		storage, closer, err = openStorage(opts.Config)
		if err != nil {
			return nil, err
		}
	}
	store := session.NewStore(storage)

	lang := store.Language()
	if lang == "" {
		lang = opts.Config.Language
	}

	api := client.New(client.Config{
		BaseURL: opts.Config.Server,
		Timeout: opts.Config.RequestTimeout(),
		Tokens:  store,
		Metrics: opts.Metrics,
		Logger:  logger.Named("client"),
	})

	c := &Context{
		Config:   opts.Config,
		Store:    store,
		I18n:     i18n.NewProvider(lang),
		API:      api,
		Notifier: notifier,
		Logger:   logger,
		Metrics:  opts.Metrics,
		closer:   closer,
	}
	c.auth = auth.NewService(api, store, logger.Named("auth"))
	return c, nil
}

func openStorage(cfg *config.ClientConfig) (session.Storage, io.Closer, error) {
	path := cfg.SessionPath()
	if cfg.SessionStore == config.SessionStoreBolt {
		s, err := session.OpenBoltStorage(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	s, err := session.OpenFileStorage(path)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

// Close releases the session storage.
func (c *Context) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Session returns the signed-in session, if any.
func (c *Context) Session() (types.Session, bool) {
	return c.Store.Current()
}

// T translates key in the active language.
func (c *Context) T(key string, args ...any) string {
	return c.I18n.T(key, args...)
}

// Login signs in and switches to the account's language.
func (c *Context) Login(ctx context.Context, username, password string) (types.Session, error) {
	sess, err := c.auth.Login(ctx, username, password)
	if err != nil {
		return sess, err
	}
	if lang := c.Store.Language(); lang != "" {
		c.I18n.SetLanguage(lang)
	}
	return sess, nil
}

// Register creates an account and signs in with it.
func (c *Context) Register(ctx context.Context, in auth.RegisterInput) (types.Session, error) {
	if in.Language == "" {
		in.Language = c.I18n.Language()
	}
	sess, err := c.auth.Register(ctx, in)
	if err != nil {
		return sess, err
	}
	if lang := c.Store.Language(); lang != "" {
		c.I18n.SetLanguage(lang)
	}
	return sess, nil
}

func (c *Context) Logout() error {
	return c.auth.Logout()
}

func (c *Context) ChangePassword(ctx context.Context, current, next, confirm string) error {
	return c.auth.ChangePassword(ctx, current, next, confirm)
}

// SetLanguage switches the active language, persists it and, when signed
// in, stores it on the account. It returns the code actually used.
func (c *Context) SetLanguage(ctx context.Context, code string) (string, error) {
	lang := c.I18n.SetLanguage(code)
	if err := c.Store.SetLanguage(lang); err != nil {
		return lang, fmt.Errorf("failed to store language: %w", err)
	}

	sess, ok := c.Session()
	if !ok {
		return lang, nil
	}
	if err := c.API.SetLanguage(ctx, lang); err != nil {
		c.Logger.Warn("Failed to store language on the account", zap.String("language", lang), zap.Error(err))
		return lang, err
	}
	sess.User.Language = lang
	if err := c.Store.UpdateUser(sess.User); err != nil {
		return lang, fmt.Errorf("failed to update session: %w", err)
	}
	return lang, nil
}

// Directory builds a directory view model wired to this context. The
// configured upload limit applies unless opts override it.
func (c *Context) Directory(opts ...directory.Option) *directory.Directory {
	base := []directory.Option{
		directory.WithNotifier(c.Notifier),
		directory.WithLogger(c.Logger.Named("directory")),
		directory.WithTranslator(c.I18n.Lookup()),
		directory.WithMetrics(c.Metrics),
		directory.WithUploadLimit(c.Config.UploadLimit()),
	}
	return directory.New(c.API, append(base, opts...)...)
}

// Admin builds the user management panel for the signed-in admin.
func (c *Context) Admin(opts ...admin.Option) (*admin.Panel, error) {
	sess, err := c.requireAdmin()
	if err != nil {
		return nil, err
	}
	base := []admin.Option{
		admin.WithNotifier(c.Notifier),
		admin.WithLogger(c.Logger.Named("admin")),
		admin.WithTranslator(c.I18n.Lookup()),
	}
	return admin.New(c.API, sess.User, append(base, opts...)...), nil
}

// Plugins builds the plugin configuration view model.
func (c *Context) Plugins() (*plugins.Manager, error) {
	if _, err := c.requireAdmin(); err != nil {
		return nil, err
	}
	return plugins.New(c.API,
		plugins.WithNotifier(c.Notifier),
		plugins.WithLogger(c.Logger.Named("plugins")),
		plugins.WithTranslator(c.I18n.Lookup()),
	), nil
}

func (c *Context) requireAdmin() (types.Session, error) {
	sess, ok := c.Session()
	if !ok {
		return sess, auth.ErrNotSignedIn
	}
	if !sess.User.IsAdmin() {
		return sess, ErrAdminRequired
	}
	return sess, nil
}
