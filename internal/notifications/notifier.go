package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"sangrachna/internal/middleware"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ModerationChannel carries every committed status change.
const ModerationChannel = "moderation:events"

// ModerationEvent is broadcast to operators after a transition commits.
type ModerationEvent struct {
	Type     string    `json:"type"`
	Kind     string    `json:"kind"`
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title,omitempty"`
	Status   string    `json:"status"`
	Operator string    `json:"operator"`
	At       time.Time `json:"at"`
}

// EventStatusChanged is the Type of every ModerationEvent published today.
const EventStatusChanged = "status_changed"

// Notifier publishes moderation events into Redis so every API instance can
// forward them to its websocket clients.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishModeration publishes ev. A notifier without Redis drops events.
func (n *Notifier) PublishModeration(ctx context.Context, ev ModerationEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.Type == "" {
		ev.Type = EventStatusChanged
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, ModerationChannel, payload).Err()
}

// StartSubscriber subscribes to the moderation channel and calls onMessage for
// each payload until ctx is done. It returns once the subscription is confirmed.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ModerationChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ModerationChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in moderation subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
