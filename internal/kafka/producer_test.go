package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProducer_PublishDoesNotBlockOnFullQueue(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9"}, "session.rechecked", 1) // loop not started

	assert.True(t, p.Publish([]byte("u1"), []byte("a")))

	done := make(chan bool, 1)
	go func() { done <- p.Publish([]byte("u2"), []byte("b")) }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	assert.Len(t, p.inbox, 1)
}

func TestProducer_PublishAfterClose(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9"}, "session.rechecked", 4)
	p.Close()
	p.Close()

	assert.False(t, p.Publish([]byte("u1"), []byte("a")))
}
