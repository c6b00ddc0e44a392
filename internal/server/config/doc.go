// Package config provides server configuration for respkv.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default configuration values
//   - verify.go: validation of addresses, limits and log settings
//   - diff.go: classification of reload changes into live and restart-only
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and RESPKV_* environment variables.
package config
