package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/cli/config"
	"github.com/yndnr/respkv-go/internal/cli/connection"
	"github.com/yndnr/respkv-go/internal/cli/output"
	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
)

// ErrReplyError is returned when the server answered with an error reply.
// The reply has already been printed.
var ErrReplyError = errors.New("server returned an error reply")

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "respkv-cli",
		Usage:   "Command-line client for respkv-server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			REPLCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[metaConfig] = cfg
			return nil
		},
	}
}

// globalFlags returns the global CLI flags. Flags without a value fall
// back to the CLI config file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address host:port (default from config, 127.0.0.1:6379)",
			EnvVars: []string{"RESPKV_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: raw, json, yaml",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Dial and request timeout",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"RESPKV_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
	}
}

// GlobalFlags holds the settings every command runs with.
type GlobalFlags struct {
	Server     string
	Output     output.Format
	Timeout    time.Duration
	ConfigPath string
}

// ParseGlobalFlags merges flags over the loaded CLI config.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)
	flags := &GlobalFlags{
		Server:     cfg.Server,
		Timeout:    cfg.Timeout,
		ConfigPath: c.String("config"),
	}
	if c.IsSet("server") {
		flags.Server = c.String("server")
	}
	if c.IsSet("timeout") {
		flags.Timeout = c.Duration("timeout")
	}

	format := cfg.Output
	if c.IsSet("output") {
		format = c.String("output")
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	flags.Output = f
	return flags, nil
}

// cliConfig returns the config loaded by Before, or the defaults.
func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// connect dials the configured server.
func connect(ctx context.Context, flags *GlobalFlags) (*connection.Client, error) {
	return connection.Dial(ctx, flags.Server, flags.Timeout)
}

// runCommand sends one request and prints the reply.
func runCommand(c *cli.Context, args ...string) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := connect(ctx, flags)
	if err != nil {
		return err
	}
	defer client.Close()

	v, err := client.Do(ctx, args...)
	if err != nil {
		return err
	}
	reply := output.FromRESP(v)
	if err := output.NewFormatter(flags.Output).Format(c.App.Writer, reply); err != nil {
		return err
	}
	if reply.IsError() {
		return ErrReplyError
	}
	return nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
