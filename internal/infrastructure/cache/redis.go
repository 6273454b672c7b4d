package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/proup-app/proup-api/pkg/config"
	"github.com/proup-app/proup-api/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrCacheConnection = errors.New("cache: connection error")
	ErrInvalidConfig   = errors.New("cache: invalid configuration")
)

// Config holds the configuration for Redis client
type Config struct {
	Addr             string
	Password         string
	DB               int
	PoolSize         int
	MinIdleConns     int
	MaxRetries       int
	ConnTimeout      time.Duration
	OperationTimeout time.Duration
	HealthInterval   time.Duration
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:         100,
		MinIdleConns:     10,
		MaxRetries:       3,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: 2 * time.Second,
		HealthInterval:   10 * time.Second,
	}
}

// NewConfigFromEnv creates a Redis config from project configuration
func NewConfigFromEnv(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Addr = fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	c.Password = cfg.Redis.Password
	c.DB = cfg.Redis.DB
	if cfg.Server.Timeout > 0 {
		c.OperationTimeout = cfg.Server.Timeout
	}
	return c
}

// RedisClient wraps the Redis client with a background health probe and
// the pub/sub used for cross-instance realtime fan-out.
type RedisClient struct {
	client    *redis.Client
	config    *Config
	logger    *logger.Logger
	closeOnce sync.Once
	done      chan struct{}
	health    int32 // 0 = healthy, 1 = unhealthy, using atomic operations
}

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(cfg *Config, log *logger.Logger) (*RedisClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	r := &RedisClient{
		client: client,
		config: cfg,
		logger: log,
		done:   make(chan struct{}),
	}

	if cfg.HealthInterval > 0 {
		go r.healthCheckLoop()
	}

	return r, nil
}

// healthCheckLoop periodically checks Redis health
func (r *RedisClient) healthCheckLoop() {
	ticker := time.NewTicker(r.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.config.OperationTimeout)
			if err := r.HealthCheck(ctx); err != nil {
				if atomic.SwapInt32(&r.health, 1) == 0 {
					r.logger.Error("Redis health check failed", zap.Error(err))
				}
			} else if atomic.SwapInt32(&r.health, 0) == 1 {
				r.logger.Info("Redis connection recovered")
			}
			cancel()
		}
	}
}

// IsHealthy returns whether Redis is currently healthy
func (r *RedisClient) IsHealthy() bool {
	return atomic.LoadInt32(&r.health) == 0
}

// HealthCheck checks if Redis is responding
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetClient returns the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// Close stops the health probe and closes the connection pool.
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.client.Close()
	})
	return err
}

// Publish sends an already encoded payload to channel.
func (r *RedisClient) Publish(ctx context.Context, channel string, payload []byte) error {
	if !r.IsHealthy() {
		return ErrCacheConnection
	}
	return r.client.Publish(ctx, channel, payload).Err()
}

// Subscribe invokes handler for every message on channel until ctx is done.
func (r *RedisClient) Subscribe(ctx context.Context, channel string, handler func(payload []byte)) error {
	pubsub := r.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	r.logger.Info("Subscribed to Redis channel", zap.String("channel", channel))

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return ErrCacheConnection
			}
			handler([]byte(msg.Payload))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
