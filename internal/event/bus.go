// Package event provides a typed in-process event bus decoupling the
// player, shelf views, and search panel. Events are published after
// successful mutations; delivery is best-effort and never fails the
// originating request.
package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
)

// Topics.
const (
	TopicItemAdded    = "shelf.item_added"
	TopicItemRemoved  = "shelf.item_removed"
	TopicTrackPlaying = "track.playing"
)

// ItemAdded is published when an item lands on a shelf (add, move target,
// duplicate target).
type ItemAdded struct {
	ShelfID   string `json:"shelf_id"`
	ItemID    string `json:"item_id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	SpotifyID string `json:"spotify_id"`
}

// ItemRemoved is published when an item leaves a shelf.
type ItemRemoved struct {
	ShelfID string `json:"shelf_id"`
	ItemID  string `json:"item_id"`
	UserID  string `json:"user_id"`
}

// TrackPlaying is published when playback of a track starts.
type TrackPlaying struct {
	UserID    string `json:"user_id"`
	SpotifyID string `json:"spotify_id"`
	Title     string `json:"title"`
}

// Bus is an in-process publish/subscribe bus with typed payloads.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a Bus. Subscribers registered after a publish do not see
// earlier events.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// PublishItemAdded publishes to TopicItemAdded.
func (b *Bus) PublishItemAdded(ev ItemAdded) error {
	return publish(b, TopicItemAdded, ev)
}

// PublishItemRemoved publishes to TopicItemRemoved.
func (b *Bus) PublishItemRemoved(ev ItemRemoved) error {
	return publish(b, TopicItemRemoved, ev)
}

// PublishTrackPlaying publishes to TopicTrackPlaying.
func (b *Bus) PublishTrackPlaying(ev TrackPlaying) error {
	return publish(b, TopicTrackPlaying, ev)
}

// SubscribeItemAdded returns a channel of TopicItemAdded events. The
// channel closes when ctx is cancelled or the bus is closed.
func (b *Bus) SubscribeItemAdded(ctx context.Context) (<-chan ItemAdded, error) {
	return subscribe[ItemAdded](ctx, b, TopicItemAdded)
}

// SubscribeItemRemoved returns a channel of TopicItemRemoved events.
func (b *Bus) SubscribeItemRemoved(ctx context.Context) (<-chan ItemRemoved, error) {
	return subscribe[ItemRemoved](ctx, b, TopicItemRemoved)
}

// SubscribeTrackPlaying returns a channel of TopicTrackPlaying events.
func (b *Bus) SubscribeTrackPlaying(ctx context.Context) (<-chan TrackPlaying, error) {
	return subscribe[TrackPlaying](ctx, b, TopicTrackPlaying)
}

func publish[T any](b *Bus, topic string, event T) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", topic, err)
	}
	if err := b.pubsub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		return fmt.Errorf("publishing %s event: %w", topic, err)
	}
	return nil
}

func subscribe[T any](ctx context.Context, b *Bus, topic string) (<-chan T, error) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	out := make(chan T)
	go func() {
		defer close(out)
		for msg := range messages {
			var ev T
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				// Malformed payloads are dropped; the bus only carries
				// payloads this package encoded.
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
