package metadata

import (
	"context"
	"encoding/json"
	"fmt"
)

// LoadJSON decodes the value stored under key into a new T.
// It returns (nil, nil) when the key is absent.
func LoadJSON[T any](ctx context.Context, r Repository, key string) (*T, error) {
	b, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return nil, fmt.Errorf("failed to decode metadata[%s]: %w", key, err)
	}
	return v, nil
}

// StoreJSON encodes v and stores it under key.
func StoreJSON(ctx context.Context, r Repository, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode metadata[%s]: %w", key, err)
	}
	return r.Set(ctx, key, b)
}
