package main

import (
	"context"
	"time"

	"github.com/proup-app/proup-api/internal/infrastructure/cache"
	"github.com/proup-app/proup-api/internal/realtime"
	"github.com/proup-app/proup-api/pkg/config"
	"github.com/proup-app/proup-api/pkg/logger"
	"go.uber.org/zap"
)

// RealtimeSystem holds the WebSocket hub and the cross-instance bridge.
type RealtimeSystem struct {
	Hub        *realtime.Hub
	Bridge     *realtime.Bridge
	Redis      *cache.RedisClient
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// SetupRealtime builds the hub and, when Redis is enabled and reachable,
// relays events through the configured Redis channel. Without Redis the
// instance only fans out to its own connections.
func SetupRealtime(cfg *config.Config, auth realtime.Authorizer, log *logger.Logger) *RealtimeSystem {
	hub := realtime.NewHub(auth, log.With(zap.String("component", "realtime")), cfg.Realtime.SendBufferSize)

	var redisClient *cache.RedisClient
	var broker realtime.Broker
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cache.NewConfigFromEnv(cfg), log)
		if err != nil {
			log.Warn("Redis unavailable, realtime events stay on this instance", zap.Error(err))
		} else {
			redisClient = client
			broker = client
		}
	}

	bridge := realtime.NewBridge(hub, broker, cfg.Realtime.Channel, log)

	ctx, cancel := context.WithCancel(context.Background())
	sys := &RealtimeSystem{
		Hub:        hub,
		Bridge:     bridge,
		Redis:      redisClient,
		cancelFunc: cancel,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(sys.done)
		for {
			err := bridge.Run(ctx)
			if ctx.Err() != nil {
				return
			}
			log.Error("Realtime relay stopped, restarting", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}()

	return sys
}

// Shutdown stops the relay, disconnects clients and closes Redis.
func (s *RealtimeSystem) Shutdown() error {
	s.cancelFunc()
	<-s.done
	s.Hub.Close()
	if s.Redis != nil {
		return s.Redis.Close()
	}
	return nil
}
