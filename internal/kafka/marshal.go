package kafka

import (
	"encoding/json"
	"fmt"
)

// MustMarshal is for envelopes and payloads built from plain structs, where
// an encoding error can only be a programming mistake.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// UnwrapPayload decodes the payload of an envelope into the event's own type,
// e.g. UnwrapPayload[audit.SessionRecheckedPayload](env.Payload).
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
