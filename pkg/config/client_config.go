package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minicloud/pkg/utils"

	"github.com/spf13/viper"
)

// Output formats understood by the CLI.
const (
	OutputStyled = "styled"
	OutputJSON   = "json"
)

// Session storage backends.
const (
	SessionStoreFile = "file"
	SessionStoreBolt = "bolt"
)

const (
	DefaultServer        = "http://localhost:8001"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxUploadSize = "100MB"
)

// ClientConfig is the minicloud client configuration
type ClientConfig struct {
	Server        string `mapstructure:"server"`
	Timeout       string `mapstructure:"timeout"`
	OutputFormat  string `mapstructure:"output_format"`
	MaxUploadSize string `mapstructure:"max_upload_size"`
	Language      string `mapstructure:"language"`
	DownloadDir   string `mapstructure:"download_dir"`
	SessionStore  string `mapstructure:"session_store"`

	path string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(GetConfigDir())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("server", DefaultServer)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("output_format", OutputStyled)
	v.SetDefault("max_upload_size", DefaultMaxUploadSize)
	v.SetDefault("language", "en")
	v.SetDefault("download_dir", ".")
	v.SetDefault("session_store", SessionStoreFile)
	return v
}

// LoadClientConfig loads the client configuration. An empty path uses the
// default location; a missing file yields the defaults.
func LoadClientConfig(path string) (*ClientConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.path = path
	if cfg.path == "" {
		cfg.path = GetConfigPath()
	}
	cfg.DownloadDir = expandPath(cfg.DownloadDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the client depends on.
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server URL %q", c.Server)
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
	}
	if c.MaxUploadSize != "" {
		if _, err := utils.ParseDataSize(c.MaxUploadSize); err != nil {
			return fmt.Errorf("invalid max_upload_size: %w", err)
		}
	}
	switch c.OutputFormat {
	case "", OutputStyled, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	switch c.SessionStore {
	case "", SessionStoreFile, SessionStoreBolt:
	default:
		return fmt.Errorf("unknown session store %q", c.SessionStore)
	}
	return nil
}

// RequestTimeout returns the configured per-request timeout.
func (c *ClientConfig) RequestTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// SessionPath returns the storage file of the configured session backend.
func (c *ClientConfig) SessionPath() string {
	if c.SessionStore == SessionStoreBolt {
		return filepath.Join(GetConfigDir(), "session.db")
	}
	return GetSessionPath()
}

// UploadLimit returns the upload size limit in bytes, 0 meaning unlimited.
func (c *ClientConfig) UploadLimit() int64 {
	if c.MaxUploadSize == "" {
		return 0
	}
	n, err := utils.ParseDataSize(c.MaxUploadSize)
	if err != nil {
		return 0
	}
	return n
}

// Path returns the file this configuration is saved to.
func (c *ClientConfig) Path() string {
	return c.path
}

// Save writes the configuration with owner-only permissions.
func (c *ClientConfig) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path := c.path
	if path == "" {
		path = GetConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configFileType)
	v.Set("server", c.Server)
	v.Set("timeout", c.Timeout)
	v.Set("output_format", c.OutputFormat)
	v.Set("max_upload_size", c.MaxUploadSize)
	v.Set("language", c.Language)
	v.Set("download_dir", c.DownloadDir)
	v.Set("session_store", c.SessionStore)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}
	return nil
}

// Set updates a single configuration key by its file name.
func (c *ClientConfig) Set(key, value string) error {
	switch key {
	case "server":
		c.Server = strings.TrimRight(value, "/")
	case "timeout":
		c.Timeout = value
	case "output_format":
		c.OutputFormat = value
	case "max_upload_size":
		c.MaxUploadSize = value
	case "language":
		c.Language = value
	case "download_dir":
		c.DownloadDir = expandPath(value)
	case "session_store":
		c.SessionStore = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}

// Keys lists the settable configuration keys in display order.
func Keys() []string {
	return []string{"server", "timeout", "output_format", "max_upload_size", "language", "download_dir", "session_store"}
}

// Get returns a configuration value by key.
func (c *ClientConfig) Get(key string) (string, error) {
	switch key {
	case "server":
		return c.Server, nil
	case "timeout":
		return c.Timeout, nil
	case "output_format":
		return c.OutputFormat, nil
	case "max_upload_size":
		return c.MaxUploadSize, nil
	case "language":
		return c.Language, nil
	case "download_dir":
		return c.DownloadDir, nil
	case "session_store":
		return c.SessionStore, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}
