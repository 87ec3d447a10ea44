package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/phampho1103/UITPAY-Web/internal/kafka"
)

// Queue is the part of kafka.Producer the publisher needs. Publish must not
// block; false means the message was not queued.
type Queue interface {
	Publish(key, value []byte, headers ...kafkago.Header) bool
}

// Publisher emits a SessionRechecked event per recheck. It never blocks or
// fails the recheck itself.
type Publisher struct {
	Queue   Queue
	Service string
	Now     func() time.Time
}

func (p *Publisher) Rechecked(ctx context.Context, userID string) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventSessionRechecked,
		EventVersion:  1,
		OccurredAt:    now().UTC(),
		Producer:      p.Service,
		TraceID:       Trace(ctx),
		CorrelationID: userID,
		Payload: kafkax.MustMarshal(SessionRecheckedPayload{
			UserID:   userID,
			Operator: Operator(ctx),
		}),
	}
	ok := p.Queue.Publish(PartitionKey(userID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventSessionRechecked)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if !ok {
		log.Printf("audit: recheck event not queued user=%s", userID)
	}
}
