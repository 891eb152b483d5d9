// Package storage persists the ledger as one JSON document in a
// string-keyed store.
package storage

import (
	"context"
	"errors"
)

// DefaultKey is the record name the browser version of the ledger used.
const DefaultKey = "eintraege"

// KV is a string-keyed store holding string values.
type KV interface {
	// Get returns the value stored under key. found is false when the key
	// was never written.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Swapper is implemented by KVs that can replace a value atomically, only
// while it still is the value the caller read.
type Swapper interface {
	// Swap stores value under key if the current value equals old, or if
	// key is missing and oldFound is false. swapped reports whether it wrote.
	Swap(ctx context.Context, key, old string, oldFound bool, value string) (swapped bool, err error)
}

var ErrInvalidKey = errors.New("invalid storage key")
