// Package metric provides Prometheus metrics for respkv.
//
// This package defines the server's metric set:
//
//   - prometheus.go: Registry with command, connection and keyspace metrics
//   - collector.go: scrape-time collector for the store's key count
//
// Every Registry owns a private prometheus.Registry, so tests and multiple
// servers in one process never collide on registration.
package metric
