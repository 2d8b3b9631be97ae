package config

import "time"

// NotifierConfig is the root configuration for a notifier instance.
type NotifierConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Channel ChannelConfig `yaml:"channel"`
	Session SessionConfig `yaml:"session"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig identifies the Regami backend.
type ServerConfig struct {
	// BaseURL is the HTTP(S) base address of the API. The channel upgrades
	// the scheme to ws(s) and appends /ws for the realtime endpoint.
	BaseURL string `yaml:"base_url"`
}

// ChannelConfig holds notification channel settings.
type ChannelConfig struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"` // ping cadence while open
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`    // flat delay after an unexpected close
	HandshakeTimeout  time.Duration `yaml:"handshake_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
}

// SessionConfig holds credential resolution settings.
type SessionConfig struct {
	// Source selects the token source: "file" or "postgres".
	Source string `yaml:"source"`

	// TokenPath is the bearer token file, re-read on every connection
	// attempt (source: file).
	TokenPath string `yaml:"token_path"`

	// PollInterval is how often the auth-state watcher checks the source.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Postgres is the app session store (source: postgres).
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// AlertsConfig holds desktop notification settings.
type AlertsConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppName string `yaml:"app_name"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
