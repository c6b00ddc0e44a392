package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server answers",
		Action: func(c *cli.Context) error {
			if c.NArg() != 0 {
				return fmt.Errorf("ping takes no arguments")
			}
			return runCommand(c, "PING")
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Have the server repeat a message",
		ArgsUsage: "MESSAGE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("echo requires exactly one MESSAGE")
			}
			return runCommand(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one KEY")
			}
			return runCommand(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value, optionally with an expiry",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "px",
				Usage: "Expire after this many milliseconds",
			},
			&cli.Uint64Flag{
				Name:  "ex",
				Usage: "Expire after this many seconds",
			},
		},
		Action: setAction,
	}
}

func setAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("set requires KEY and VALUE")
	}
	if c.IsSet("px") && c.IsSet("ex") {
		return fmt.Errorf("--px and --ex are mutually exclusive")
	}

	args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
	switch {
	case c.IsSet("px"):
		args = append(args, "PX", strconv.FormatUint(c.Uint64("px"), 10))
	case c.IsSet("ex"):
		args = append(args, "EX", strconv.FormatUint(c.Uint64("ex"), 10))
	}
	return runCommand(c, args...)
}
