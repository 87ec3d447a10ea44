package livetree

import (
	"context"
	"encoding/json"
	"errors"
)

// Snapshot is the full tree at one instant: top-level key -> JSON object.
type Snapshot map[string]json.RawMessage

var ErrInvalidKey = errors.New("invalid tree key")

// Store is a realtime key-value tree rooted at "/".
type Store interface {
	// Snapshot reads the whole tree once.
	Snapshot(ctx context.Context) (Snapshot, error)
	// Watch delivers an initial snapshot and then a fresh full snapshot after
	// every change, in order, until ctx is done (nil) or the feed fails.
	Watch(ctx context.Context, fn func(Snapshot)) error
	// Update writes only the given fields under key, leaving the rest untouched.
	Update(ctx context.Context, key string, fields map[string]any) error
}

var (
	_ Store = (*Redis)(nil)
	_ Store = (*Memory)(nil)
)

func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch r {
		case '/', '*', '?', '[', ']', '.', '#', '$':
			return false
		}
	}
	return true
}

// encodeFields renders each field value as JSON text.
func encodeFields(fields map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		if k == "" {
			return nil, errors.New("empty field name")
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return out, nil
}
