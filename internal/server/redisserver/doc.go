// Package redisserver serves a small RESP2 key-value protocol over TCP.
//
//   - resp.go: incremental decoder and encoder for RESP values
//   - command.go: pure mapping from a decoded request to a Command
//   - handler.go: command execution against a Store
//   - server.go: accept loop, per-connection read/dispatch/write loop
//
// Supported commands are PING, ECHO, SET (with PX or EX expiry) and GET.
// Unknown or malformed commands are answered with an error reply and the
// connection stays open; malformed framing closes the connection.
package redisserver
