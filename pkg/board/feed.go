package board

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Feed provides namespace-scoped publish/subscribe access to board event
// channels over Redis. Delivery is at-most-once, best-effort: a client
// that misses events while disconnected must refetch the board rather
// than rely on the channel. The feed is thread-safe.
type Feed struct {
	rdb       *redis.Client
	namespace string
}

// NewFeed creates a feed for the given deployment namespace.
// All channels are automatically namespaced with it.
//
// Returns an error if namespace is empty.
func NewFeed(redisOpts *redis.Options, namespace string) (*Feed, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Feed{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the feed should not be used.
func (f *Feed) Close() error {
	return f.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (f *Feed) Ping(ctx context.Context) error {
	return f.rdb.Ping(ctx).Err()
}

// Publish validates the event and publishes it to the owning board's
// channel. Subscribers receive the full event JSON.
func (f *Feed) Publish(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := EventsChannel(f.namespace, ev.BoardID)
	if err := f.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish board event: %w", err)
	}

	return nil
}

// Subscription represents an active Pub/Sub subscription to one board's
// events. Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of board events.
// The channel is closed when the subscription is closed or the context is
// cancelled.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe joins one board's event channel and returns a Subscription
// delivering decoded events. Caller must call subscription.Close() when
// done; context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 16) to prevent
// blocking. If the subscriber is too slow, events may be dropped by Redis
// Pub/Sub (at-most-once delivery).
func (f *Feed) Subscribe(ctx context.Context, boardID string) (*Subscription, error) {
	if boardID == "" {
		return nil, fmt.Errorf("board ID cannot be empty")
	}

	channel := EventsChannel(f.namespace, boardID)
	pubsub := f.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan Event, 16)
	errorsChan := make(chan error, 16)

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

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					// Send error on error channel, skip message
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal board event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- ev:
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
