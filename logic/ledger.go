package logic

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"

	"github.com/cassieopeanuts/sithtipahpreview/dao"
	"github.com/cassieopeanuts/sithtipahpreview/logger"
	"github.com/cassieopeanuts/sithtipahpreview/models"
)

// addressPattern matches a 0x-prefixed, 40-hex-digit address. Validation is
// purely syntactic; no chain is ever consulted.
var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// LedgerConfig carries the balance policy knobs.
type LedgerConfig struct {
	DefaultBalance  int64 // starting balance for new rows
	FaucetAmount    int64 // tokens granted by the faucet
	FaucetThreshold int64 // faucet only pays out below this balance
}

// LedgerLogic enforces the domain rules on top of the user store:
// registration, address updates, balance queries, tips and the faucet.
type LedgerLogic struct {
	userDAO *dao.UserDAO
	cfg     LedgerConfig
}

func NewLedgerLogic(userDAO *dao.UserDAO, cfg LedgerConfig) *LedgerLogic {
	return &LedgerLogic{userDAO: userDAO, cfg: cfg}
}

// ValidAddress reports whether addr is a syntactically valid address.
func ValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}

// Register creates a user row with the given address and the default
// starting balance.
func (l *LedgerLogic) Register(ctx context.Context, userID, address string) error {
	if !ValidAddress(address) {
		return ErrInvalidAddress
	}
	if _, err := l.userDAO.CreateUser(ctx, userID, address, l.cfg.DefaultBalance); err != nil {
		if errors.Is(err, dao.ErrDuplicateUser) {
			return ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// UpdateAddress overwrites a registered user's address.
func (l *LedgerLogic) UpdateAddress(ctx context.Context, userID, address string) error {
	if !ValidAddress(address) {
		return ErrInvalidAddress
	}
	if err := l.userDAO.UpdateAddress(ctx, userID, address); err != nil {
		if errors.Is(err, dao.ErrUserNotFound) {
			return ErrNotRegistered
		}
		return err
	}
	return nil
}

// GetUser retrieves a user row.
func (l *LedgerLogic) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := l.userDAO.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, dao.ErrUserNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return user, nil
}

// Balance returns the user's current balance.
func (l *LedgerLogic) Balance(ctx context.Context, userID string) (int64, error) {
	balance, err := l.userDAO.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, dao.ErrUserNotFound) {
			return 0, ErrNotRegistered
		}
		return 0, err
	}
	return balance, nil
}

// Tip transfers amount from sender to recipient. A recipient who never
// registered is created on the fly with an empty address. The whole
// debit+credit runs in one store transaction, so a failed credit rolls the
// debit back instead of relying on a compensating write.
func (l *LedgerLogic) Tip(ctx context.Context, senderID, recipientID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if senderID == recipientID {
		return ErrSelfTip
	}
	if err := l.userDAO.Transfer(ctx, senderID, recipientID, amount); err != nil {
		switch {
		case errors.Is(err, dao.ErrUserNotFound):
			return ErrNotRegistered
		case errors.Is(err, dao.ErrInsufficientFunds):
			return ErrInsufficientBalance
		default:
			logger.Warn("tip transfer failed",
				zap.String("sender", senderID),
				zap.String("recipient", recipientID),
				zap.Int64("amount", amount),
				zap.Error(err))
			return ErrTransferFailed
		}
	}
	return nil
}

// Faucet grants the configured amount once, while the balance is below the
// threshold. It returns the balance after the call either way; ErrAlreadyFunded
// signals that nothing was credited.
func (l *LedgerLogic) Faucet(ctx context.Context, userID string) (int64, error) {
	balance, credited, err := l.userDAO.TopUp(ctx, userID, l.cfg.FaucetThreshold, l.cfg.FaucetAmount)
	if err != nil {
		if errors.Is(err, dao.ErrUserNotFound) {
			return 0, ErrNotRegistered
		}
		return 0, err
	}
	if !credited {
		return balance, ErrAlreadyFunded
	}
	return balance, nil
}
