// Package cmap provides a concurrent-safe sharded map keyed by strings.
//
// Keys are spread over a power-of-two number of shards by their murmur3
// hash, each shard guarded by its own RWMutex. The server uses it as the
// registry of open client connections, which is touched on every accept
// and close as well as by shutdown and hot reload.
package cmap
