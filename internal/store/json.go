package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt marks a stored value that is not valid JSON for its target type.
var ErrCorrupt = errors.New("store: corrupt value")

// GetJSON decodes the value of key into v. It reports false when the key is
// absent, leaving v untouched.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: %q: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SetJSON stores v encoded as JSON under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// UpdateJSON decodes key into a T, lets fn modify it and stores the result.
// fn may return ErrNoChange to skip the write.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(v *T, found bool) error) error {
	return s.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		var v T
		if found {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrCorrupt, key, err)
			}
		}
		if err := fn(&v, found); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", key, err)
		}
		return raw, nil
	})
}
