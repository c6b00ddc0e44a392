// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	Admin AdminConfig `koanf:"admin"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// ReadTimeout bounds the time to finish a partially received request.
	ReadTimeout time.Duration `koanf:"read_timeout"`
	// WriteTimeout bounds writing replies.
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// IdleTimeout closes connections that send nothing.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit is commands per second per connection, 0 = unlimited.
	// Applied live on config reload.
	RateLimit int `koanf:"rate_limit"`
	// MaxConnections caps concurrent clients, 0 = unlimited.
	MaxConnections int `koanf:"max_connections"`
}

// AdminConfig configures the HTTP listener for /metrics and /healthz.
type AdminConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// SweepInterval enables a background pass that frees expired keys.
	// 0 leaves expiry purely lazy.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
