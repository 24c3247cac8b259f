// Package kv defines the contract the registry consumes from a hierarchical
// key/value backend, plus two implementations: HTTPGateway for a live
// Consul-KV-shaped backend, and BoltGateway for local development and tests.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key (or, for Recurse, an entire
// prefix) has no value in the backend.
var ErrNotFound = errors.New("kv: key does not exist")

// Gateway is the contract a hierarchical KV backend must satisfy. Every
// method may block on I/O and is safe to call concurrently.
type Gateway interface {
	// Get returns the scalar value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value at key, creating intermediate structure implicitly.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. If recursive is true, every key sharing key as a
	// prefix is removed as well.
	Delete(ctx context.Context, key string, recursive bool) error

	// Recurse returns every descendant key of prefix mapped to its value.
	// Returns ErrNotFound if prefix has no descendants at all.
	Recurse(ctx context.Context, prefix string) (map[string]string, error)
}
