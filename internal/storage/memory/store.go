// Package memory provides the in-memory key-value store for respkv.
package memory

import (
	"sync"
	"time"
)

// DefaultCapacity is the initial size hint for the key map.
const DefaultCapacity = 1024

// Clock supplies the current time. time.Now carries a monotonic reading,
// so elapsed-time comparisons are immune to wall clock steps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Entry is a stored value. Entries are never mutated after creation;
// SET replaces the whole entry.
type Entry struct {
	Value     string
	CreatedAt time.Time
	// TTL is only meaningful when HasTTL is set. A zero TTL is a valid
	// expiry that lapses as soon as any time has elapsed.
	TTL    time.Duration
	HasTTL bool
}

// Live reports whether the entry is visible at now: it has no TTL, or the
// time elapsed since creation does not exceed the TTL.
func (e *Entry) Live(now time.Time) bool {
	if !e.HasTTL {
		return true
	}
	return now.Sub(e.CreatedAt) <= e.TTL
}

// Store is a string-to-string map with optional per-key expiry.
//
// The whole map sits behind one mutex. The workload is point reads and
// writes with no range scans, so a single critical section is enough and
// keeps Set/Get trivially linearizable.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	clock   Clock
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces the time source (tests use a fake clock).
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithCapacity sets the initial map size hint.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.entries = make(map[string]*Entry, n)
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*Entry, DefaultCapacity),
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores value under key with no expiry, discarding any previous entry.
func (s *Store) Set(key, value string) {
	s.put(key, &Entry{Value: value})
}

// SetWithTTL stores value under key; the entry stops being visible once
// more than ttl has elapsed. Any previous entry and its TTL are discarded.
func (s *Store) SetWithTTL(key, value string, ttl time.Duration) {
	s.put(key, &Entry{Value: value, TTL: ttl, HasTTL: true})
}

func (s *Store) put(key string, e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.CreatedAt = s.clock.Now()
	s.entries[key] = e
}

// Get returns the value for key if present and live. Missing and expired
// keys are indistinguishable to the caller. An expired entry observed here
// is removed.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !e.Live(s.clock.Now()) {
		delete(s.entries, key)
		return "", false
	}
	return e.Value, true
}

// DeleteExpired removes every entry that is no longer live and returns how
// many were removed.
func (s *Store) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for k, e := range s.entries {
		if !e.Live(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries held, including expired entries that
// have not been reclaimed yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
