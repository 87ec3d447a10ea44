package audit

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/phampho1103/UITPAY-Web/internal/kafka"
	"github.com/phampho1103/UITPAY-Web/internal/redisx"
)

type Store interface {
	Insert(ctx context.Context, e Entry) (bool, error)
}

// Service records recheck events; it is installed as the consumer handler.
type Service struct {
	Store       Store
	Redis       *redis.Client
	ServiceName string
}

func (s *Service) HandleRechecked(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Printf("audit: drop undecodable message offset=%d: %v", m.Offset, err)
		return nil // poison message, commit and move on
	}
	if env.EventType != EventSessionRechecked {
		return nil
	}

	// fast-path dedup; the table's primary key stays the source of truth
	if s.Redis != nil {
		fresh, err := redisx.MarkOnce(ctx, s.Redis, s.ServiceName, env.EventID)
		if err != nil {
			log.Printf("audit: dedup check event=%s: %v", env.EventID, err)
		} else if !fresh {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[SessionRecheckedPayload](env.Payload)
	if err != nil {
		log.Printf("audit: drop event=%s: %v", env.EventID, err)
		return nil
	}
	if p.UserID == "" {
		p.UserID = env.CorrelationID
	}

	inserted, err := s.Store.Insert(ctx, Entry{
		EventID:    env.EventID,
		UserID:     p.UserID,
		Operator:   p.Operator,
		Producer:   env.Producer,
		OccurredAt: env.OccurredAt,
	})
	if err != nil {
		if s.Redis != nil {
			// let the retry through the dedup gate
			_ = s.Redis.Del(ctx, redisx.DedupKey(s.ServiceName, env.EventID)).Err()
		}
		return err
	}
	if inserted {
		log.Printf("audit: recorded recheck user=%s operator=%q event=%s", p.UserID, p.Operator, env.EventID)
	}
	return nil
}
