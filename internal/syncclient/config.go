package syncclient

import "time"

// Defaults used when a Config field is zero.
const (
	DefaultURL              = "ws://localhost:8000/ws/simulate"
	DefaultDebounce         = 250 * time.Millisecond
	DefaultHandshakeTimeout = 15 * time.Second
	DefaultReconnectDelay   = 2 * time.Second

	writeTimeout = 10 * time.Second
	eventBuffer  = 1024
)

// ReconnectPolicy controls what happens after the connection drops.
// MaxAttempts of zero means no limit.
type ReconnectPolicy struct {
	Enabled     bool
	Delay       time.Duration
	MaxAttempts int
}

// Config configures a Client.
type Config struct {
	URL              string
	Debounce         time.Duration
	HandshakeTimeout time.Duration
	// SimulationTimeout of zero waits forever for a terminal response.
	SimulationTimeout time.Duration
	Reconnect         ReconnectPolicy
}

func (c *Config) applyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Reconnect.Delay <= 0 {
		c.Reconnect.Delay = DefaultReconnectDelay
	}
}
