package config

import "sync/atomic"

// Store holds the live configuration and swaps whole values atomically so
// readers never observe a half-applied reload.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a Store seeded with the given configuration.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.current.Store(&cfg)
	return s
}

// Current returns the live configuration value.
func (s *Store) Current() Config {
	return *s.current.Load()
}

// Reload re-reads the environment and swaps in the result.
func (s *Store) Reload() Config {
	cfg := Load()
	s.current.Store(&cfg)
	return cfg
}

// Replace swaps in an explicit configuration value.
func (s *Store) Replace(cfg Config) {
	s.current.Store(&cfg)
}
