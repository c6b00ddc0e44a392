package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/cli/config"
	"github.com/yndnr/respkv-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Change one key and save the file",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := cliConfig(c)
	format := output.FormatYAML
	if c.IsSet("output") {
		f, err := output.ParseFormat(c.String("output"))
		if err != nil {
			return err
		}
		format = f
	}
	if format == output.FormatRaw {
		format = output.FormatYAML
	}
	return output.NewFormatter(format).Format(c.App.Writer, cfg)
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("config set requires KEY and VALUE")
	}
	path := c.String("config")

	// Re-read so values from flags never leak into the file.
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := config.Set(cfg, c.Args().Get(0), c.Args().Get(1)); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "%s updated in %s\n", c.Args().Get(0), path)
	return nil
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, c.String("config"))
	return nil
}
