package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for required fields and consistency.
// Call after applyDefaults so optional fields are already populated.
func (c *NotifierConfig) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url is not a valid URL: %v", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("server.base_url scheme %q is not supported", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.base_url is missing a host")
	}

	if c.Channel.HeartbeatInterval <= 0 {
		return fmt.Errorf("channel.heartbeat_interval must be positive")
	}
	if c.Channel.ReconnectDelay <= 0 {
		return fmt.Errorf("channel.reconnect_delay must be positive")
	}

	switch c.Session.Source {
	case "file":
		if c.Session.TokenPath == "" {
			return fmt.Errorf("session.token_path is required for source file")
		}
	case "postgres":
		pg := c.Session.Postgres
		if pg.Host == "" {
			return fmt.Errorf("session.postgres.host is required")
		}
		if pg.Name == "" {
			return fmt.Errorf("session.postgres.name is required")
		}
		if pg.User == "" {
			return fmt.Errorf("session.postgres.user is required")
		}
		if pg.Password == "" {
			return fmt.Errorf("session.postgres.password is required")
		}
		if pg.MinConns > pg.MaxConns {
			return fmt.Errorf("session.postgres.min_conns (%d) cannot exceed max_conns (%d)", pg.MinConns, pg.MaxConns)
		}
	default:
		return fmt.Errorf("session.source %q is not supported (file, postgres)", c.Session.Source)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}

	return nil
}
