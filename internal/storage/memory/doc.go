// Package memory provides the in-memory key-value store for respkv.
//
// Features:
//
//   - String keys and values with optional per-key TTL
//   - Lazy expiry: Get treats an expired entry as absent and frees it
//   - Optional Sweeper for reclaiming keys that are never read again
//   - Injectable Clock for deterministic expiry tests
//
// Thread Safety:
//
// The store is shared by every client connection. All access goes through
// Set, SetWithTTL, Get, DeleteExpired and Len, each of which holds a single
// store-wide mutex for its duration.
package memory
