// Package config provides configuration management for walflow.
//
// Settings are layered, lowest precedence first:
//  1. built-in defaults
//  2. the config file
//  3. WALFLOW_ environment variables (WALFLOW_SOLVER__URL sets solver.url)
//  4. command-line flags that were explicitly set
//
// Config file locations (priority order):
//  1. $WALFLOW_CONFIG
//  2. ./walflow.yaml
//  3. ~/.config/walflow/config.yaml
//  4. /etc/walflow/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "WALFLOW_"

// Defaults
const (
	DefaultAddr             = ":3000"
	DefaultDatabasePath     = "./walflow.db"
	DefaultSolverURL        = "ws://localhost:8000/ws/simulate"
	DefaultDebounce         = 250 * time.Millisecond
	DefaultHandshakeTimeout = 15 * time.Second
	DefaultReconnectDelay   = 2 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	currentConfigVersion    = 1
)

// FlagKeys maps command-line flag names to config keys. Flags not listed
// here are not configuration.
var FlagKeys = map[string]string{
	"addr":               "server.addr",
	"db":                 "database.path",
	"solver-url":         "solver.url",
	"debounce":           "solver.debounce",
	"simulation-timeout": "solver.simulation_timeout",
	"reconnect":          "solver.reconnect.enabled",
	"log-level":          "log.level",
	"log-format":         "log.format",
	"plan":               "plan.path",
	"watch":              "plan.watch",
}

// Load finds and loads the config file, or uses defaults if none found.
// explicit overrides the search; flags may be nil.
func Load(explicit string, flags *pflag.FlagSet) (*Config, string, error) {
	path, err := ResolvePath(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := load(path, flags)
	return cfg, path, err
}

// LoadFromPath loads config from a specific path, with environment overrides
func LoadFromPath(path string) (*Config, string, error) {
	cfg, err := load(path, nil)
	return cfg, path, err
}

func load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(DefaultConfig().toMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// 2. Config file
	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// 3. Environment: WALFLOW_SOLVER__URL -> solver.url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			if f.Value.Type() == "duration" {
				return key, f.Value.String()
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  currentConfigVersion,
		Server:   ServerConfig{Addr: DefaultAddr},
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Solver: SolverConfig{
			URL:              DefaultSolverURL,
			Debounce:         Duration(DefaultDebounce),
			HandshakeTimeout: Duration(DefaultHandshakeTimeout),
			Reconnect:        ReconnectConfig{Delay: Duration(DefaultReconnectDelay)},
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = currentConfigVersion
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Solver.URL == "" {
		c.Solver.URL = DefaultSolverURL
	}
	if c.Solver.Debounce == 0 {
		c.Solver.Debounce = Duration(DefaultDebounce)
	}
	if c.Solver.HandshakeTimeout == 0 {
		c.Solver.HandshakeTimeout = Duration(DefaultHandshakeTimeout)
	}
	if c.Solver.Reconnect.Delay == 0 {
		c.Solver.Reconnect.Delay = Duration(DefaultReconnectDelay)
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// toMap flattens the config into koanf keys
func (c *Config) toMap() map[string]interface{} {
	return map[string]interface{}{
		"version":                       c.Version,
		"server.addr":                   c.Server.Addr,
		"database.path":                 c.Database.Path,
		"solver.url":                    c.Solver.URL,
		"solver.debounce":               c.Solver.Debounce.Duration().String(),
		"solver.handshake_timeout":      c.Solver.HandshakeTimeout.Duration().String(),
		"solver.simulation_timeout":     c.Solver.SimulationTimeout.Duration().String(),
		"solver.reconnect.enabled":      c.Solver.Reconnect.Enabled,
		"solver.reconnect.delay":        c.Solver.Reconnect.Delay.Duration().String(),
		"solver.reconnect.max_attempts": c.Solver.Reconnect.MaxAttempts,
		"log.level":                     c.Log.Level,
		"log.format":                    c.Log.Format,
		"plan.path":                     c.Plan.Path,
		"plan.watch":                    c.Plan.Watch,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks the config, reporting the first invalid field
func (c *Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Plan.Watch && c.Plan.Path == "" {
		return fmt.Errorf("invalid config: plan.watch requires plan.path")
	}
	return nil
}
