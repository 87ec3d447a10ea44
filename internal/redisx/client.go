package redisx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// MarkOnce sets a dedup marker and reports whether it was newly set.
func MarkOnce(ctx context.Context, rdb *redis.Client, service, id string) (bool, error) {
	return rdb.SetNX(ctx, DedupKey(service, id), "1", TTLDedup).Result()
}

func DedupKey(service, id string) string { return fmt.Sprintf(KeyDedup, service, id) }

// SessionKey maps a tree key (user id) to its Redis hash key.
func SessionKey(userID string) string { return fmt.Sprintf(KeySession, userID) }

// SessionID is the inverse of SessionKey.
func SessionID(key string) (string, bool) {
	return strings.CutPrefix(key, "session:")
}
