// Package storage defines the local key/value persistence used for cached settings snapshots.
package storage

import "context"

// KV is a flat key/value store. Writers are last-writer-wins.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// KeySettingsSnapshot holds the last settings row fetched from the backend.
const KeySettingsSnapshot = "portfolio.settings"
