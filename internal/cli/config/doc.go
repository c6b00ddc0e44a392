// Package config provides respkv-cli configuration.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.respkv/cli.yaml)
//   - loader.go: loading, saving and key updates
//
// Flags given on the command line always win over the file.
package config
