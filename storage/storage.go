// Package storage implements the key-value blob stores used to persist the
// ledger.
//
// A Backend stores text values under string keys. It has no notion of
// transactions: values are overwritten as a whole.
package storage

import (
	"context"
	"errors"
)

// Backend is a key-value blob store.
type Backend interface {
	// Get returns the value stored for key, and false if there is none.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value for key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// ErrInvalidKey is returned for keys that a backend cannot represent.
var ErrInvalidKey = errors.New("invalid storage key")
