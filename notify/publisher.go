// Package notify fans committed notification records out over Redis pub/sub.
// External dispatchers (email, push) subscribe to the channel; the core never
// learns whether delivery succeeded.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"olilab/metrics"
	"olilab/models"
)

const DefaultChannel = "olilab:notifications"

// Publisher publishes notification records to a Redis channel.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

// Publish serializes the record and publishes it. The record is already
// committed; failures here are the caller's to log, not to roll back.
func (p *Publisher) Publish(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	metrics.NotificationsPublished.WithLabelValues(string(n.Type)).Inc()
	return nil
}
