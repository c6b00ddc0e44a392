// Package httpserver provides the admin HTTP listener of respkv-server.
//
// It exposes Prometheus metrics, a health probe and a runtime log-level
// switch. The listener is off by default and should stay bound to a
// loopback or otherwise private address: it has no authentication.
package httpserver
