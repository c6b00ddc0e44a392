package main

import (
	"errors"
	"os"

	"github.com/yndnr/respkv-go/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		// Error replies are already on stdout.
		if !errors.Is(err, command.ErrReplyError) {
			command.PrintError("%v", err)
		}
		os.Exit(1)
	}
}
