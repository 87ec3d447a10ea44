package audit

import (
	"encoding/json"
	"time"
)

const (
	EventSessionRechecked = "SessionRechecked"

	TopicSessionRechecked = "session.rechecked"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // EventSessionRechecked
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "uitpay-admin"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // user id
	Payload       json.RawMessage `json:"payload"`
}

type SessionRecheckedPayload struct {
	UserID   string `json:"user_id"`
	Operator string `json:"operator,omitempty"`
}

// PartitionKey keeps every event of one user on one partition.
func PartitionKey(userID string) []byte { return []byte(userID) }
