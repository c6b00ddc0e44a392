// Package connection provides the respkv-cli connection to a server.
//
// This package owns the client side of the wire:
//
//   - client.go: TCP client that sends multi-bulk requests and reads replies
//
// The client uses github.com/tidwall/resp for encoding and decoding, so it
// never shares code with the server's own codec. A Client is safe for
// sequential use from several goroutines; requests are serialized.
package connection
