// Package output provides output formatting for respkv-cli.
//
// This package turns server replies into text:
//
//   - reply.go: Reply, a format-neutral view of a RESP value
//   - formatter.go: Formatter interface and factory
//   - raw.go: redis-cli style lines ("bar", (nil), (error) ...)
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//
// Raw is meant for people; json and yaml for scripts.
package output
