package feed

import (
	"context"
	"errors"
	"net"

	"github.com/redis/go-redis/v9"

	ferrors "github.com/matzehuels/flowcore/pkg/errors"
)

// RedisOptions configures a RedisSink.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisSink publishes messages on Redis pub/sub channels.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink connects to the Redis server described by opts.
func NewRedisSink(opts RedisOptions) *RedisSink {
	return &RedisSink{client: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

// NewRedisSinkFromURL parses a redis:// URL.
func NewRedisSinkFromURL(url string) (*RedisSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	return &RedisSink{client: redis.NewClient(opts)}, nil
}

// Client returns the underlying client.
func (s *RedisSink) Client() *redis.Client { return s.client }

// Ping checks the connection.
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Publish sends payload on channel. Network failures are retryable.
func (s *RedisSink) Publish(ctx context.Context, channel string, payload []byte) error {
	err := s.client.Publish(ctx, channel, payload).Err()
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

// Subscribe listens on channels and decodes every message. The returned
// channel is closed when ctx is done or the subscription fails.
func (s *RedisSink) Subscribe(ctx context.Context, channels ...string) (<-chan Message, error) {
	sub := s.client.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, ferrors.Wrap(ferrors.ErrCodeInternal, err, "subscribe")
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		defer sub.Close()
		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				m, err := Decode([]byte(raw.Payload))
				if err != nil {
					continue
				}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

var _ Sink = (*RedisSink)(nil)
