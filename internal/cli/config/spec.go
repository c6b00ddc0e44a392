package config

import (
	"fmt"
	"net"
	"time"

	"github.com/yndnr/respkv-go/internal/cli/output"
)

// CLIConfig is the configuration for respkv-cli.
type CLIConfig struct {
	// Server is the default host:port to connect to.
	Server string `yaml:"server" json:"server"`
	// Output is the default format: raw, json or yaml.
	Output string `yaml:"output" json:"output"`
	// Timeout bounds dialing and each request.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// HistoryFile stores REPL history. Empty disables persistence.
	HistoryFile string `yaml:"history_file,omitempty" json:"history_file,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "127.0.0.1:6379",
		Output:  string(output.FormatRaw),
		Timeout: 5 * time.Second,
	}
}

// Validate checks the configuration values.
func (c *CLIConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if _, err := output.ParseFormat(c.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
