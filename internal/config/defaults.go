package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "https://api.regami.app"
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultReconnectDelay    = 5 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultSessionSource     = "file"
	DefaultPollInterval      = 2 * time.Second
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultLogLevel          = "info"
	DefaultAlertsAppName     = "Regami"
)

func (c *NotifierConfig) applyDefaults() {
	// Server defaults
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = DefaultBaseURL
	}

	// Channel defaults
	if c.Channel.HeartbeatInterval == 0 {
		c.Channel.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Channel.ReconnectDelay == 0 {
		c.Channel.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Channel.HandshakeTimeout == 0 {
		c.Channel.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Channel.WriteTimeout == 0 {
		c.Channel.WriteTimeout = DefaultWriteTimeout
	}

	// Session defaults
	if c.Session.Source == "" {
		c.Session.Source = DefaultSessionSource
	}
	if c.Session.PollInterval == 0 {
		c.Session.PollInterval = DefaultPollInterval
	}
	if c.Session.Postgres.Port == 0 {
		c.Session.Postgres.Port = DefaultDBPort
	}
	if c.Session.Postgres.SSLMode == "" {
		c.Session.Postgres.SSLMode = DefaultDBSSLMode
	}
	if c.Session.Postgres.MaxConns == 0 {
		c.Session.Postgres.MaxConns = DefaultMaxConns
	}
	if c.Session.Postgres.MinConns == 0 {
		c.Session.Postgres.MinConns = DefaultMinConns
	}

	// Alerts defaults
	if c.Alerts.AppName == "" {
		c.Alerts.AppName = DefaultAlertsAppName
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
