// Package shutdown provides graceful shutdown for respkv-server.
//
// Components register hooks with OnShutdown; Wait blocks until SIGINT,
// SIGTERM or context cancellation and then runs the hooks newest first
// under a shared timeout.
package shutdown
