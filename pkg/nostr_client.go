package pkg

import (
	"context"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"

	"github.com/cassieopeanuts/sithtipahpreview/logger"
)

// NostrClient is the chat transport: it subscribes to text notes that
// mention the bot and publishes signed replies back to the author.
type NostrClient struct {
	relay     *nostr.Relay
	botPubkey string
	secretKey string
}

func NewNostrClient(relayURL, botPubkey, secretKey string) (*NostrClient, error) {
	ctx := context.Background()
	relay, err := nostr.RelayConnect(ctx, relayURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}

	return &NostrClient{
		relay:     relay,
		botPubkey: botPubkey,
		secretKey: secretKey,
	}, nil
}

func (c *NostrClient) Relay() *nostr.Relay {
	return c.relay
}

func (c *NostrClient) BotPubkey() string {
	return c.botPubkey
}

// SubscribeMentions listens for kind-1 notes tagged with the bot's pubkey
// and hands each one to the handler. The bot's own notes are skipped.
func (c *NostrClient) SubscribeMentions(ctx context.Context, handler func(event nostr.Event)) error {
	since := nostr.Now()

	filters := nostr.Filters{{
		Kinds: []int{nostr.KindTextNote},
		Since: &since,
		Tags: nostr.TagMap{
			"p": []string{c.botPubkey},
		},
	}}

	sub, err := c.relay.Subscribe(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go func() {
		defer sub.Unsub()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events:
				if !ok {
					logger.Warn("event channel closed")
					return
				}
				if ev.PubKey == c.botPubkey {
					continue
				}
				handler(*ev)
			case <-sub.EndOfStoredEvents:
				logger.Debug("received EOSE")
			}
		}
	}()

	return nil
}

// PublishReply posts a signed kind-1 note answering the given event, tagged
// back to its author.
func (c *NostrClient) PublishReply(ctx context.Context, parent nostr.Event, content string) error {
	ev := nostr.Event{
		CreatedAt: nostr.Now(),
		Kind:      nostr.KindTextNote,
		Tags: nostr.Tags{
			{"p", parent.PubKey},
			{"e", parent.ID},
		},
		Content: content,
	}
	if err := ev.Sign(c.secretKey); err != nil {
		return fmt.Errorf("failed to sign reply: %w", err)
	}
	if err := c.relay.Publish(ctx, ev); err != nil {
		return fmt.Errorf("failed to publish reply: %w", err)
	}
	logger.Debug("reply published", zap.String("to", parent.PubKey))
	return nil
}

// Close closes the relay connection
func (c *NostrClient) Close() {
	c.relay.Close()
}
