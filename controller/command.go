package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cassieopeanuts/sithtipahpreview/logger"
	"github.com/cassieopeanuts/sithtipahpreview/logic"
)

const helpText = `Available commands:
!register <address>  - register your 0x address
!update <address>    - change your registered address
!balance             - show your token balance
!tip <user> <amount> - tip tokens to another member
!giveme5             - one-time faucet grant for empty wallets
!tiphelp             - this message`

// CommandController translates a validated chat command into exactly one
// ledger call and formats the text reply. It never touches the store on an
// arity or type mismatch.
type CommandController struct {
	ledger *logic.LedgerLogic
}

func NewCommandController(ledger *logic.LedgerLogic) *CommandController {
	return &CommandController{ledger: ledger}
}

// Dispatch runs one command for the given author. The second return value is
// false when the command name is not recognized; the bot stays silent then.
func (c *CommandController) Dispatch(ctx context.Context, authorID, command string, args []string) (string, bool) {
	switch command {
	case "register":
		return c.register(ctx, authorID, args), true
	case "update":
		return c.update(ctx, authorID, args), true
	case "balance":
		return c.balance(ctx, authorID, args), true
	case "tip":
		return c.tip(ctx, authorID, args), true
	case "giveme5":
		return c.faucet(ctx, authorID, args), true
	case "tiphelp":
		return helpText, true
	default:
		return "", false
	}
}

func (c *CommandController) register(ctx context.Context, authorID string, args []string) string {
	if len(args) != 1 {
		return "Incorrect number of arguments, please provide a single address."
	}
	if err := c.ledger.Register(ctx, authorID, args[0]); err != nil {
		return errorReply(err)
	}
	return "Successfully registered your address."
}

func (c *CommandController) update(ctx context.Context, authorID string, args []string) string {
	if len(args) != 1 {
		return "Incorrect number of arguments, please provide a single address."
	}
	if err := c.ledger.UpdateAddress(ctx, authorID, args[0]); err != nil {
		return errorReply(err)
	}
	return "Address updated successfully."
}

func (c *CommandController) balance(ctx context.Context, authorID string, args []string) string {
	if len(args) != 0 {
		return "The balance command takes no arguments."
	}
	balance, err := c.ledger.Balance(ctx, authorID)
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("Your balance is %d", balance)
}

func (c *CommandController) tip(ctx context.Context, authorID string, args []string) string {
	if len(args) != 2 {
		return "Incorrect number of arguments, please provide a user and an amount to tip."
	}
	recipientID := stripMention(args[0])
	if recipientID == "" {
		return "Invalid user, please mention a valid member."
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		return "Invalid tip amount, please provide a positive integer."
	}
	if err := c.ledger.Tip(ctx, authorID, recipientID, amount); err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("%s tipped %d tokens to %s", authorID, amount, recipientID)
}

func (c *CommandController) faucet(ctx context.Context, authorID string, args []string) string {
	if len(args) != 0 {
		return "The giveme5 command takes no arguments."
	}
	balance, err := c.ledger.Faucet(ctx, authorID)
	if err != nil {
		if errors.Is(err, logic.ErrAlreadyFunded) {
			return fmt.Sprintf("The faucet is for empty wallets only, your balance is %d", balance)
		}
		return errorReply(err)
	}
	return fmt.Sprintf("Faucet granted tokens, your balance is now %d", balance)
}

// stripMention removes chat mention markup (<@id>, leading @) around a user
// reference.
func stripMention(arg string) string {
	arg = strings.TrimPrefix(arg, "<")
	arg = strings.TrimSuffix(arg, ">")
	arg = strings.TrimPrefix(arg, "@")
	return strings.TrimSpace(arg)
}

// errorReply maps a ledger error to its user-facing text. Anything outside
// the taxonomy is a storage fault: logged with detail, reported generically.
func errorReply(err error) string {
	switch {
	case errors.Is(err, logic.ErrInvalidAddress):
		return "Invalid address, please provide a 42-character hexadecimal string starting with '0x'."
	case errors.Is(err, logic.ErrInvalidAmount):
		return "Invalid tip amount, please provide a positive integer."
	case errors.Is(err, logic.ErrSelfTip):
		return "You cannot tip yourself."
	case errors.Is(err, logic.ErrNotRegistered):
		return "You are not registered yet, use !register <address> first."
	case errors.Is(err, logic.ErrAlreadyRegistered):
		return "You are already registered, use !update <address> to change your address."
	case errors.Is(err, logic.ErrInsufficientBalance):
		return "You don't have enough balance to make this tip."
	case errors.Is(err, logic.ErrTransferFailed):
		return "The tip could not be completed, nothing was transferred."
	default:
		logger.Error("command failed on storage", zap.Error(err))
		return "Something went wrong, please try again later."
	}
}
