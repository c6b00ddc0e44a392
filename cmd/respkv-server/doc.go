// Package main provides the entry point for respkv-server.
//
// The server keeps string keys in memory and answers PING, ECHO, SET and
// GET over the Redis serialization protocol. An optional admin listener
// serves /healthz, /metrics and the runtime log level.
//
// Usage:
//
//	respkv-server [flags]
//	respkv-server --config /path/to/config.yaml
//	respkv-server --addr 127.0.0.1:6380 --log-level debug
//
// Configuration is layered: defaults, then the YAML file, then RESPKV_*
// environment variables, then flags. When a file is given it is watched
// and log.level and server.redis.rate_limit are applied without restart.
package main
