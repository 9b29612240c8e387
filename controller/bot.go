package controller

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"

	"github.com/cassieopeanuts/sithtipahpreview/logger"
	"github.com/cassieopeanuts/sithtipahpreview/pkg"
)

// BotController connects the chat transport to the command dispatcher. Each
// inbound command runs in its own goroutine so one slow store call never
// stalls other members' commands.
type BotController struct {
	commands    *CommandController
	nostrClient *pkg.NostrClient
	prefix      string
}

func NewBotController(commands *CommandController, nostrClient *pkg.NostrClient, prefix string) *BotController {
	return &BotController{
		commands:    commands,
		nostrClient: nostrClient,
		prefix:      prefix,
	}
}

// StartNostrServices subscribes to mentions and serves commands until the
// context is cancelled.
func (c *BotController) StartNostrServices(ctx context.Context) error {
	return c.nostrClient.SubscribeMentions(ctx, func(event nostr.Event) {
		go c.handleMessage(ctx, event)
	})
}

func (c *BotController) handleMessage(ctx context.Context, event nostr.Event) {
	content := strings.TrimSpace(event.Content)
	if !strings.HasPrefix(content, c.prefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(content, c.prefix))
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	commandID := uuid.NewString()
	logger.Info("command received",
		zap.String("command_id", commandID),
		zap.String("author", event.PubKey),
		zap.String("command", command),
		zap.Int("args", len(args)))

	reply, ok := c.commands.Dispatch(ctx, event.PubKey, command, args)
	if !ok {
		logger.Debug("unknown command",
			zap.String("command_id", commandID),
			zap.String("command", command))
		return
	}

	if err := c.nostrClient.PublishReply(ctx, event, reply); err != nil {
		logger.Error("failed to send reply",
			zap.String("command_id", commandID),
			zap.Error(err))
	}
}
