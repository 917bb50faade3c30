package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "MINICLOUD"
)

// GetConfigDir returns the minicloud configuration directory
func GetConfigDir() string {
	if dir := os.Getenv("MINICLOUD_CONFIG_DIR"); dir != "" {
		return dir
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "minicloud")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".minicloud"
	}
	return filepath.Join(home, ".minicloud")
}

// GetConfigPath returns the path to the main config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), configFileName+"."+configFileType)
}

// GetSessionPath returns the path of the durable session storage file
func GetSessionPath() string {
	return filepath.Join(GetConfigDir(), "session.json")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
