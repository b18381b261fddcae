package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names a config file to use instead of searching.
	EnvConfigPath = "WALFLOW_CONFIG"
	// ConfigFileName is looked up in the working directory.
	ConfigFileName = "walflow.yaml"
	// ConfigDirName is the directory under the user and system config roots.
	ConfigDirName = "walflow"

	userConfigName = "config.yaml"
)

// ErrConfigNotFound is returned when an explicitly requested file is missing.
var ErrConfigNotFound = errors.New("config file not found")

// SearchPaths lists where a config file is looked for, first match wins:
// $WALFLOW_CONFIG, ./walflow.yaml, the user config directory
// ($XDG_CONFIG_HOME or ~/.config) and /etc/walflow.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, ConfigFileName)
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigDirName, userConfigName))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, userConfigName))
}

// ResolvePath picks the config file to load. An explicit path, as given by
// --config, must exist. Otherwise the first existing entry of SearchPaths is
// used, and "" means run on defaults.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		if !fileExists(explicit) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return explicit, nil
	}
	for _, p := range SearchPaths() {
		if !fileExists(p) {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs, nil
		}
		return p, nil
	}
	return "", nil
}

// FindConfigPath returns the first config file found on the search path.
func FindConfigPath() string {
	p, _ := ResolvePath("")
	return p
}

// DefaultConfigPath is where `config init` writes when given no path.
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, ConfigDirName, userConfigName)
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory holding configPath.
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config")
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
