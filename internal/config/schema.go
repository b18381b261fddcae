package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `koanf:"version" yaml:"version"`
	Server   ServerConfig   `koanf:"server" yaml:"server"`
	Database DatabaseConfig `koanf:"database" yaml:"database"`
	Solver   SolverConfig   `koanf:"solver" yaml:"solver"`
	Log      LogConfig      `koanf:"log" yaml:"log"`
	Plan     PlanConfig     `koanf:"plan" yaml:"plan"`
}

// ServerConfig holds the presentation API settings
type ServerConfig struct {
	Addr string `koanf:"addr" yaml:"addr" validate:"required"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

// SolverConfig holds the solver connection settings
type SolverConfig struct {
	URL               string          `koanf:"url" yaml:"url" validate:"required,url"`
	Debounce          Duration        `koanf:"debounce" yaml:"debounce" validate:"gt=0"`
	HandshakeTimeout  Duration        `koanf:"handshake_timeout" yaml:"handshake_timeout" validate:"gt=0"`
	SimulationTimeout Duration        `koanf:"simulation_timeout" yaml:"simulation_timeout" validate:"gte=0"` // 0 = wait forever
	Reconnect         ReconnectConfig `koanf:"reconnect" yaml:"reconnect"`
}

// ReconnectConfig controls reconnecting after the solver connection drops
type ReconnectConfig struct {
	Enabled     bool     `koanf:"enabled" yaml:"enabled"`
	Delay       Duration `koanf:"delay" yaml:"delay" validate:"gte=0"`
	MaxAttempts int      `koanf:"max_attempts" yaml:"max_attempts" validate:"gte=0"` // 0 = unlimited
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=text json"`
}

// PlanConfig points at a plan file to load at startup
type PlanConfig struct {
	Path  string `koanf:"path" yaml:"path,omitempty"`
	Watch bool   `koanf:"watch" yaml:"watch"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText lets koanf decode "250ms" style strings
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
