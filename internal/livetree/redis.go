package livetree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phampho1103/UITPAY-Web/internal/redisx"
)

// Redis keeps every top-level tree node as a hash session:{key}.
// Field values are JSON text, so nested nodes (products) live in one field.
type Redis struct {
	rdb *redis.Client
	// IdleTimeout is how long Watch waits for a notification before pinging.
	IdleTimeout time.Duration
}

func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func (s *Redis) Snapshot(ctx context.Context) (Snapshot, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, redisx.PatternSession, 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	snap := make(Snapshot, len(keys))
	if len(keys) == 0 {
		return snap, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// server replies (WRONGTYPE on a foreign key) are handled per key below
		var rerr redis.Error
		if !errors.As(err, &rerr) {
			return nil, fmt.Errorf("read sessions: %w", err)
		}
	}

	for i, k := range keys {
		id, ok := redisx.SessionID(k)
		if !ok {
			continue
		}
		fields, err := cmds[i].Result()
		if err != nil {
			log.Printf("livetree: skip key=%s: %v", k, err)
			continue
		}
		if len(fields) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		node, err := hashToJSON(fields)
		if err != nil {
			log.Printf("livetree: skip key=%s: %v", k, err)
			continue
		}
		snap[id] = node
	}
	return snap, nil
}

func hashToJSON(fields map[string]string) (json.RawMessage, error) {
	obj := make(map[string]json.RawMessage, len(fields))
	for f, v := range fields {
		if json.Valid([]byte(v)) {
			obj[f] = json.RawMessage(v)
			continue
		}
		// plain strings written by other clients
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[f] = b
	}
	return json.Marshal(obj)
}

// Watch returns an error as soon as the pubsub connection breaks. go-redis
// would reconnect on its own, but notifications sent during the gap are lost,
// so the caller has to resubscribe and start from a fresh snapshot.
func (s *Redis) Watch(ctx context.Context, fn func(Snapshot)) error {
	ps := s.rdb.PSubscribe(ctx, redisx.ChannelTreeChanged, redisx.PatternSessionKeyspace)
	defer ps.Close()
	// reads below are bounded by the idle timeout, not by ctx
	stop := context.AfterFunc(ctx, func() { _ = ps.Close() })
	defer stop()

	// wait for the subscription to be confirmed before the first read,
	// otherwise a write between read and subscribe is lost
	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe tree: %w", err)
	}

	emit := func() error {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return err
		}
		fn(snap)
		return nil
	}
	if err := emit(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	idle := s.idle()
	for {
		msg, err := ps.ReceiveTimeout(ctx, idle)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				// quiet tree: make sure the connection is still there
				if err := ps.Ping(ctx); err != nil {
					return fmt.Errorf("ping tree: %w", err)
				}
				continue
			}
			return fmt.Errorf("watch tree: %w", err)
		}
		if _, ok := msg.(*redis.Message); !ok {
			continue // pong or subscription ack
		}
		if err := emit(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (s *Redis) idle() time.Duration {
	if s.IdleTimeout > 0 {
		return s.IdleTimeout
	}
	return 30 * time.Second
}

func (s *Redis) Update(ctx context.Context, key string, fields map[string]any) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if len(fields) == 0 {
		return nil
	}
	enc, err := encodeFields(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	vals := make([]any, 0, 2*len(enc))
	for f, v := range enc {
		vals = append(vals, f, string(v))
	}
	if err := s.rdb.HSet(ctx, redisx.SessionKey(key), vals...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	s.notify(ctx, key)
	return nil
}

// Put replaces the whole node at key.
func (s *Redis) Put(ctx context.Context, key string, fields map[string]any) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	enc, err := encodeFields(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	hk := redisx.SessionKey(key)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, hk)
	if len(enc) > 0 {
		vals := make([]any, 0, 2*len(enc))
		for f, v := range enc {
			vals = append(vals, f, string(v))
		}
		pipe.HSet(ctx, hk, vals...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.notify(ctx, key)
	return nil
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := s.rdb.Del(ctx, redisx.SessionKey(key)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.notify(ctx, key)
	return nil
}

// notify failures are logged only: the write itself already landed and
// keyspace notifications, when enabled, still reach the watchers.
func (s *Redis) notify(ctx context.Context, key string) {
	if err := s.rdb.Publish(ctx, redisx.ChannelTreeChanged, key).Err(); err != nil {
		log.Printf("livetree: publish change key=%s: %v", key, err)
	}
}
