// Package plugins is the view model of the plugin configuration screen.
// Plugin settings travel as opaque JSON; the client decodes the ones it
// knows into typed values and keeps the rest verbatim.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"minicloud/pkg/client"
	"minicloud/pkg/i18n"
	"minicloud/pkg/notify"

	"go.uber.org/zap"
)

var ErrUnknownPlugin = errors.New("unknown plugin")

// API is the plugin part of the backend.
type API interface {
	ListPlugins(ctx context.Context) ([]client.PluginRecord, error)
	UpdatePlugin(ctx context.Context, name string, update client.PluginUpdate) (*client.PluginRecord, error)
}

type Plugin struct {
	Name        string
	Description string
	Enabled     bool
	Settings    Settings
}

// UploadPolicy is what the enabled plugins ask of an upload.
type UploadPolicy struct {
	// MaxFileSize is zero when no limit is enforced.
	MaxFileSize       int64
	BlockedExtensions []string
}

// Policy derives the upload policy from a plugin list.
func Policy(list []Plugin) UploadPolicy {
	var p UploadPolicy
	for _, pl := range list {
		if !pl.Enabled {
			continue
		}
		switch s := pl.Settings.(type) {
		case BlockedExtensions:
			p.BlockedExtensions = append(p.BlockedExtensions, s.Extensions...)
		case MaxFileSize:
			p.MaxFileSize = s.Limit
		}
	}
	return p
}

type Option func(*Manager)

func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithTranslator(t i18n.Lookup) Option {
	return func(m *Manager) { m.t = t }
}

// Manager is the plugin view model.
type Manager struct {
	api      API
	notifier notify.Notifier
	logger   *zap.Logger
	t        i18n.Lookup

	mu      sync.Mutex
	plugins []Plugin
}

func New(api API, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		notifier: notify.Nop,
		logger:   zap.NewNop(),
		t: func(key string, args ...any) string {
			return i18n.Translate("en", key, args...)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads every plugin and decodes its settings.
func (m *Manager) Load(ctx context.Context) error {
	records, err := m.api.ListPlugins(ctx)
	if err != nil {
		m.logger.Warn("Failed to list plugins", zap.Error(err))
		notify.Error(m.notifier, client.Message(err, m.t("request.failed")))
		return err
	}

	list := make([]Plugin, 0, len(records))
	for _, r := range records {
		list = append(list, m.fromRecord(r))
	}

	m.mu.Lock()
	m.plugins = list
	m.mu.Unlock()
	return nil
}

// Plugins returns a copy of the loaded list.
func (m *Manager) Plugins() []Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Plugin(nil), m.plugins...)
}

func (m *Manager) Plugin(name string) (Plugin, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plugins {
		if p.Name == name {
			return p, true
		}
	}
	return Plugin{}, false
}

// Policy derives the upload policy from the loaded plugins.
func (m *Manager) Policy() UploadPolicy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Policy(m.plugins)
}

// SetEnabled switches the named plugin on or off.
func (m *Manager) SetEnabled(ctx context.Context, name string, enabled bool) error {
	if _, ok := m.Plugin(name); !ok {
		return ErrUnknownPlugin
	}
	return m.update(ctx, name, client.PluginUpdate{Enabled: &enabled})
}

// UpdateSettings replaces the settings of the named plugin. Invalid
// settings are rejected before anything is sent.
func (m *Manager) UpdateSettings(ctx context.Context, name string, settings Settings) error {
	if _, ok := m.Plugin(name); !ok {
		return ErrUnknownPlugin
	}
	raw, err := Encode(name, settings)
	if err != nil {
		notify.Error(m.notifier, m.t("plugin.invalid", err.Error()))
		return err
	}
	return m.update(ctx, name, client.PluginUpdate{Settings: raw})
}

func (m *Manager) update(ctx context.Context, name string, update client.PluginUpdate) error {
	record, err := m.api.UpdatePlugin(ctx, name, update)
	if err != nil {
		m.logger.Warn("Failed to update plugin", zap.String("plugin", name), zap.Error(err))
		notify.Error(m.notifier, client.Message(err, m.t("request.failed")))
		return fmt.Errorf("failed to update plugin %s: %w", name, err)
	}

	updated := m.fromRecord(*record)
	m.mu.Lock()
	for i := range m.plugins {
		if m.plugins[i].Name == name {
			m.plugins[i] = updated
		}
	}
	m.mu.Unlock()

	m.logger.Info("Plugin updated",
		zap.String("plugin", name),
		zap.Bool("enabled", updated.Enabled),
		zap.Stringer("settings", updated.Settings))
	notify.Success(m.notifier, m.t("plugin.updated", name))
	return nil
}

// fromRecord decodes a stored plugin. Settings a known plugin cannot decode
// are kept as Unknown so they survive a round trip.
func (m *Manager) fromRecord(r client.PluginRecord) Plugin {
	settings, err := Decode(r.Name, r.Settings)
	if err != nil {
		m.logger.Warn("Keeping undecodable plugin settings", zap.String("plugin", r.Name), zap.Error(err))
		settings = Unknown{Raw: r.Settings}
	}
	return Plugin{
		Name:        r.Name,
		Description: r.Description,
		Enabled:     r.Enabled,
		Settings:    settings,
	}
}
