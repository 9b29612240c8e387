package logic

import "errors"

// Ledger error taxonomy. Callers match with errors.Is and format their own
// user-facing text; none of these carry internal cause detail.
var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidAmount       = errors.New("invalid tip amount")
	ErrSelfTip             = errors.New("cannot tip yourself")
	ErrNotRegistered       = errors.New("user not registered")
	ErrAlreadyRegistered   = errors.New("user already registered")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyFunded       = errors.New("balance already funded")
	ErrTransferFailed      = errors.New("transfer failed")
)
