package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/cli/config"
	"github.com/yndnr/respkv-go/internal/cli/connection"
	"github.com/yndnr/respkv-go/internal/cli/output"
	"github.com/yndnr/respkv-go/internal/cli/repl"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start an interactive session",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not read or write the history file",
			},
		},
		Action: replAction,
	}
}

// session keeps one connection across REPL lines.
type session struct {
	flags     *GlobalFlags
	formatter output.Formatter
	c         *cli.Context
	client    *connection.Client
}

// exec sends args, redialing once when the previous connection broke.
func (s *session) exec(ctx context.Context, args []string) error {
	if s.client == nil {
		client, err := connect(ctx, s.flags)
		if err != nil {
			return err
		}
		s.client = client
	}

	v, err := s.client.Do(ctx, args...)
	if err != nil {
		_ = s.client.Close()
		s.client = nil
		return err
	}
	return s.formatter.Format(s.c.App.Writer, output.FromRESP(v))
}

func (s *session) close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func replAction(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	s := &session{
		flags:     flags,
		formatter: output.NewFormatter(flags.Output),
		c:         c,
	}
	defer s.close()

	historyFile := ""
	if !c.Bool("no-history") {
		historyFile = cliConfig(c).HistoryFile
		if historyFile == "" {
			historyFile = config.DefaultHistoryPath()
		}
	}

	r := repl.New(s.exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithPrompt(flags.Server+"> "),
		repl.WithHistory(repl.NewHistory(historyFile)),
	)
	return r.Run(ctx)
}
