// Package metadata is the client's local key/value store. It keeps the
// persisted session so a restarted client finds it on start.
package metadata

import (
	"context"
)

// KeySession holds the JSON-encoded current session.
const KeySession = "session"

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
