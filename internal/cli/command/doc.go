// Package command provides CLI command definitions for respkv-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags and settings resolution
//   - kv.go: ping, echo, get and set
//   - repl.go: interactive session
//   - config.go: CLI configuration file commands
//
// Every server command dials, sends one request, formats the reply and
// closes. The repl keeps one connection and redials after a failure.
package command
