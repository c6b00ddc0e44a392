package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/respkv-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if cfg.Storage.SweepInterval < 0 {
		return errors.New("storage.sweep_interval must not be negative")
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	r := &cfg.Redis
	if err := verifyAddr("server.redis.addr", r.Addr); err != nil {
		return err
	}
	for name, d := range map[string]int64{
		"server.redis.read_timeout":  int64(r.ReadTimeout),
		"server.redis.write_timeout": int64(r.WriteTimeout),
		"server.redis.idle_timeout":  int64(r.IdleTimeout),
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if r.RateLimit < 0 {
		return errors.New("server.redis.rate_limit must not be negative")
	}
	if r.MaxConnections < 0 {
		return errors.New("server.redis.max_connections must not be negative")
	}

	if cfg.Admin.Enabled {
		if err := verifyAddr("server.admin.addr", cfg.Admin.Addr); err != nil {
			return err
		}
		if cfg.Admin.Addr == r.Addr {
			return errors.New("server.admin.addr conflicts with server.redis.addr")
		}
	}
	return nil
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
		return nil
	}
	return fmt.Errorf("log.format %q is not json or text", cfg.Format)
}
