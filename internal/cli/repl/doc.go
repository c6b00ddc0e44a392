// Package repl provides interactive mode for respkv-cli.
//
// This package implements the Read-Eval-Print Loop for interactive sessions:
//
//   - repl.go: Main REPL loop and local commands (help, history, exit)
//   - tokenize.go: Splits a line into arguments with redis-cli quoting
//   - completer.go: Command names, usage and prefix completion
//   - history.go: Command history persistence
//
// Lines that are not local commands are tokenized and handed to an
// Executor, which in respkv-cli sends them to the server.
package repl
