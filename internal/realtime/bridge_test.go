package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/events"
	"github.com/proup-app/proup-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBroker fans payloads out to in-process subscribers.
type memoryBroker struct {
	mu       sync.Mutex
	handlers []func([]byte)
	ready    chan struct{}
	fail     bool
	calls    int
}

func newMemoryBroker() *memoryBroker {
	return &memoryBroker{ready: make(chan struct{})}
}

func (b *memoryBroker) Publish(_ context.Context, _ string, payload []byte) error {
	b.mu.Lock()
	b.calls++
	if b.fail {
		b.mu.Unlock()
		return errors.New("connection refused")
	}
	handlers := append([]func([]byte){}, b.handlers...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
	return nil
}

func (b *memoryBroker) Subscribe(ctx context.Context, _ string, handler func([]byte)) error {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
	close(b.ready)
	<-ctx.Done()
	return ctx.Err()
}

func (b *memoryBroker) publishCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func subscribedClient(hub *Hub, room string) *Client {
	c := newClient(hub, nil, uuid.New(), 16)
	hub.register(c)
	hub.join(c, room)
	return c
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestBridgeWithoutBrokerDeliversLocally(t *testing.T) {
	hub := NewHub(allowList{}, logger.NewNop(), 8)
	bridge := NewBridge(hub, nil, "proup:realtime", logger.NewNop())

	room := events.ProjectRoom(uuid.New())
	c := subscribedClient(hub, room)

	bridge.Publish(context.Background(), events.New(events.EventTaskCreated, room, nil))
	assert.Contains(t, string(receive(t, c)), events.EventTaskCreated)
}

func TestBridgeRelaysThroughBroker(t *testing.T) {
	hub := NewHub(allowList{}, logger.NewNop(), 8)
	broker := newMemoryBroker()
	bridge := NewBridge(hub, broker, "proup:realtime", logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = bridge.Run(ctx) }()
	select {
	case <-broker.ready:
	case <-time.After(time.Second):
		require.FailNow(t, "bridge did not subscribe")
	}

	room := events.ProjectRoom(uuid.New())
	c := subscribedClient(hub, room)

	bridge.Publish(context.Background(), events.New(events.EventTaskUpdated, room, nil))
	assert.Contains(t, string(receive(t, c)), events.EventTaskUpdated)
	assert.Equal(t, 1, broker.publishCalls())
}

func TestBridgeFallsBackWhenBrokerFails(t *testing.T) {
	hub := NewHub(allowList{}, logger.NewNop(), 8)
	broker := newMemoryBroker()
	broker.fail = true
	bridge := NewBridge(hub, broker, "proup:realtime", logger.NewNop())

	room := events.ProjectRoom(uuid.New())
	c := subscribedClient(hub, room)

	for i := 0; i < 5; i++ {
		bridge.Publish(context.Background(), events.New(events.EventTaskCompleted, room, nil))
		receive(t, c)
	}

	// the breaker opens after three consecutive failures
	require.Equal(t, 3, broker.publishCalls())
	assert.Equal(t, "open", bridge.BreakerState())
}
