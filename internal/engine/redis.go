package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultRedisChannel = "lyo:classroom"

// Redis publishes frames on a pub/sub channel the engine host subscribes to.
type Redis struct {
	rdb     *goredis.Client
	channel string
}

func NewRedis(addr, channel string) (*Redis, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	if strings.TrimSpace(channel) == "" {
		channel = DefaultRedisChannel
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	return &Redis{rdb: rdb, channel: channel}, nil
}

// Start verifies the server is reachable.
func (r *Redis) Start(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *Redis) Send(ctx context.Context, f Frame) error {
	raw, err := encodeFrame(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return r.rdb.Publish(ctx, r.channel, raw).Err()
}

// Subscribe delivers frames published on the channel until ctx ends. It is
// the receiving half used by engine hosts and tests.
func (r *Redis) Subscribe(ctx context.Context, onFrame func(Frame)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				f, err := DecodeFrame([]byte(m.Payload))
				if err != nil {
					continue
				}
				onFrame(f)
			}
		}
	}()
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
