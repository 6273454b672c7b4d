package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/proup-app/proup-api/internal/domain/events"
	"github.com/proup-app/proup-api/pkg/logger"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Broker is a shared pub/sub channel between API instances.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, handler func(payload []byte)) error
}

// Bridge publishes events through a Broker so every instance's hub sees
// them. Without a broker, or while the breaker is open, events go straight
// to the local hub.
type Bridge struct {
	hub     *Hub
	broker  Broker
	channel string
	breaker *gobreaker.CircuitBreaker[struct{}]
	timeout time.Duration
	logger  *logger.Logger
}

func NewBridge(hub *Hub, broker Broker, channel string, log *logger.Logger) *Bridge {
	b := &Bridge{
		hub:     hub,
		broker:  broker,
		channel: channel,
		timeout: 500 * time.Millisecond,
		logger:  log,
	}
	b.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "realtime-publish",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return b
}

// Publish implements events.Publisher.
func (b *Bridge) Publish(ctx context.Context, event events.Event) {
	if b.broker == nil {
		b.hub.Deliver(event)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to encode realtime event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	_, err = b.breaker.Execute(func() (struct{}, error) {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()
		return struct{}{}, b.broker.Publish(pubCtx, b.channel, payload)
	})
	if err != nil {
		publishFailures.Inc()
		b.logger.Warn("Realtime publish failed, delivering locally",
			zap.String("type", event.Type),
			zap.String("room", event.Room),
			zap.Error(err),
		)
		b.hub.Deliver(event)
	}
}

// BreakerState reports the publish breaker state for health checks.
func (b *Bridge) BreakerState() string {
	return b.breaker.State().String()
}

// Run relays events from the broker to the local hub until ctx ends.
func (b *Bridge) Run(ctx context.Context) error {
	if b.broker == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return b.broker.Subscribe(ctx, b.channel, func(payload []byte) {
		var event events.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			b.logger.Warn("Discarding malformed realtime event", zap.Error(err))
			return
		}
		b.hub.Deliver(event)
	})
}
