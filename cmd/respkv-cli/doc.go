// Package main provides the entry point for respkv-cli.
//
// The CLI sends single commands or runs an interactive session:
//
//	respkv-cli ping
//	respkv-cli -s 127.0.0.1:6380 get mykey
//	respkv-cli set --px 5000 mykey "some value"
//	respkv-cli -o json get mykey
//	respkv-cli repl
//
// Defaults come from ~/.respkv/cli.yaml and can be changed with
// "respkv-cli config set KEY VALUE". The exit status is 1 when the server
// answers with an error.
package main
