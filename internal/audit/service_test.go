package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/phampho1103/UITPAY-Web/internal/kafka"
)

type memStore struct {
	entries map[string]Entry
	err     error
}

func (m *memStore) Insert(ctx context.Context, e Entry) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.entries[e.EventID]; ok {
		return false, nil
	}
	m.entries[e.EventID] = e
	return true, nil
}

func setupService(t *testing.T) (*Service, *memStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := &memStore{entries: map[string]Entry{}}
	return &Service{Store: store, Redis: client, ServiceName: "audit"}, store, mr
}

func recheckMessage(eventID, userID, operator string) kafkago.Message {
	env := Envelope{
		EventID:       eventID,
		EventType:     EventSessionRechecked,
		EventVersion:  1,
		OccurredAt:    time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		Producer:      "uitpay-admin",
		CorrelationID: userID,
		Payload:       kafkax.MustMarshal(SessionRecheckedPayload{UserID: userID, Operator: operator}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleRechecked_Records(t *testing.T) {
	svc, store, _ := setupService(t)

	err := svc.HandleRechecked(context.Background(), recheckMessage("e1", "u1", "staff-1"))

	require.NoError(t, err)
	require.Contains(t, store.entries, "e1")
	e := store.entries["e1"]
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, "staff-1", e.Operator)
	assert.Equal(t, "uitpay-admin", e.Producer)
}

func TestHandleRechecked_DedupsReplays(t *testing.T) {
	svc, store, mr := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.HandleRechecked(ctx, recheckMessage("e1", "u1", "")))
	store.entries = map[string]Entry{} // a second insert would show up here
	require.NoError(t, svc.HandleRechecked(ctx, recheckMessage("e1", "u1", "")))

	assert.Empty(t, store.entries)
	assert.True(t, mr.Exists("dedup:audit:e1"))
}

func TestHandleRechecked_StoreFailureReleasesDedup(t *testing.T) {
	svc, store, mr := setupService(t)
	store.err = errors.New("db down")

	err := svc.HandleRechecked(context.Background(), recheckMessage("e1", "u1", ""))

	assert.Error(t, err)
	assert.False(t, mr.Exists("dedup:audit:e1"))
}

func TestHandleRechecked_IgnoresOtherEventsAndGarbage(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	other := Envelope{EventID: "x", EventType: "OrderCreated"}
	require.NoError(t, svc.HandleRechecked(ctx, kafkago.Message{Value: kafkax.MustMarshal(other)}))
	require.NoError(t, svc.HandleRechecked(ctx, kafkago.Message{Value: []byte("{not json")}))

	assert.Empty(t, store.entries)
}

func TestHandleRechecked_WithoutRedis(t *testing.T) {
	store := &memStore{entries: map[string]Entry{}}
	svc := &Service{Store: store, ServiceName: "audit"}

	require.NoError(t, svc.HandleRechecked(context.Background(), recheckMessage("e1", "u1", "")))
	assert.Len(t, store.entries, 1)
}
