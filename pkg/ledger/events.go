package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/openpost/tradepost/pkg/market"
)

// PublishEvent publishes a record event to the instance's record_events
// channel. Events are advisory; the committed record state stays
// authoritative. Delivery is at-most-once (Redis Pub/Sub semantics).
func (c *Client) PublishEvent(ctx context.Context, ev *market.Event) error {
	if err := ev.Kind.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := market.RecordEventsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscription represents an active Pub/Sub subscription to record events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *market.Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of record events.
// The channel is closed when the subscription closes or the context ends.
func (s *Subscription) Events() <-chan *market.Event {
	return s.events
}

// Errors returns the channel of subscription errors. Errors are non-fatal
// (malformed payloads are skipped); the subscription continues after them.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeRecordEvents subscribes to record events for this instance.
// Caller must call subscription.Close() when done; context cancellation also
// stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to limit blocking.
// Slow subscribers may miss events (at-most-once delivery).
func (c *Client) SubscribeRecordEvents(ctx context.Context) (*Subscription, error) {
	channel := market.RecordEventsChannel(c.instanceName)
	pubsub := c.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *market.Event, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev market.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal record event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
