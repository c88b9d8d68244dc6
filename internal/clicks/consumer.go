package clicks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qoolink/server/internal/mq"
	"github.com/rs/zerolog"
)

// LinkCounter applies a recorded visit to storage.
type LinkCounter interface {
	IncrementClicks(ctx context.Context, slug string) error
}

// Consumer drains the click channel and folds events into the links table.
type Consumer struct {
	queue   *mq.MQ
	counter LinkCounter
	log     zerolog.Logger
}

func NewConsumer(queue *mq.MQ, counter LinkCounter, log zerolog.Logger) *Consumer {
	return &Consumer{queue: queue, counter: counter, log: log}
}

// Run blocks consuming events until ctx is done. A malformed event is
// acked and dropped; a storage failure nacks so the broker redelivers.
func (c *Consumer) Run(ctx context.Context) error {
	return c.queue.Subscribe(ctx, Channel, func(ctx context.Context, msg mq.Message) error {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			c.log.Warn().Err(err).Str("message_id", msg.ID).Msg("drop malformed click event")
			return nil
		}
		if event.Slug == "" {
			c.log.Warn().Str("message_id", msg.ID).Msg("drop click event without slug")
			return nil
		}
		if err := c.counter.IncrementClicks(ctx, event.Slug); err != nil {
			return fmt.Errorf("increment clicks for %q: %w", event.Slug, err)
		}
		c.log.Debug().Str("slug", event.Slug).Msg("click recorded")
		return nil
	})
}
