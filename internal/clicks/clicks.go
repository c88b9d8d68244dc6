// Package clicks records link visits as broker events. Recording is
// fire-and-forget: a broker outage never affects the visitor redirect.
package clicks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/qoolink/server/internal/mq"
	"github.com/rs/zerolog"
)

// Channel is the broker channel click events travel on.
const Channel = "link-clicks"

const publishTimeout = 5 * time.Second

// Event is a single recorded visit.
type Event struct {
	Slug       string    `json:"slug"`
	Referrer   string    `json:"referrer,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recorder accepts visit events.
type Recorder interface {
	Record(slug, referrer string)
}

// Publisher records visits by publishing them to the broker. Publishing
// happens off the request goroutine with its own deadline.
type Publisher struct {
	queue *mq.MQ
	log   zerolog.Logger
}

func NewPublisher(queue *mq.MQ, log zerolog.Logger) *Publisher {
	return &Publisher{queue: queue, log: log}
}

func (p *Publisher) Record(slug, referrer string) {
	event := Event{
		Slug:       slug,
		Referrer:   referrer,
		OccurredAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		data, err := json.Marshal(event)
		if err != nil {
			p.log.Error().Err(err).Str("slug", event.Slug).Msg("encode click event")
			return
		}
		if _, err := p.queue.Publish(ctx, Channel, data, nil); err != nil {
			p.log.Error().Err(err).Str("slug", event.Slug).Msg("publish click event")
		}
	}()
}

// NoopRecorder drops events. Used when no broker is configured.
type NoopRecorder struct{}

func (NoopRecorder) Record(slug, referrer string) {}
