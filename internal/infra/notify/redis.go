package notify

import (
	"context"
	"fmt"
	"log/slog"

	redisclient "github.com/vietddude/nodewatch/internal/infra/redis"
)

// Publisher is the subset of the Redis client the sink needs.
type Publisher interface {
	Ping(ctx context.Context) error
	Publish(ctx context.Context, channel, message string) (int64, error)
}

var _ Publisher = (*redisclient.Client)(nil)

// RedisSink publishes reports to a Redis pub/sub channel.
type RedisSink struct {
	pub     Publisher
	channel string
	log     *slog.Logger
}

func NewRedisSink(pub Publisher, channel string) *RedisSink {
	return &RedisSink{
		pub:     pub,
		channel: channel,
		log:     slog.Default().With("component", "notify", "sink", "redis"),
	}
}

func (r *RedisSink) Name() string {
	return "redis"
}

func (r *RedisSink) Check(ctx context.Context) error {
	if err := r.pub.Ping(ctx); err != nil {
		return unavailable(fmt.Sprintf("redis channel %s", r.channel), err)
	}
	return nil
}

func (r *RedisSink) Send(ctx context.Context, text string) error {
	n, err := r.pub.Publish(ctx, r.channel, text)
	if err != nil {
		return err
	}
	if n == 0 {
		r.log.Debug("Report published with no subscribers", "channel", r.channel)
	}
	return nil
}
