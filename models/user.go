package models

import (
	"time"
)

// User represents a chat member with a registered address and token balance
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"uniqueIndex;not null" json:"user_id"` // Platform account id
	Address   string    `json:"address"`                             // 0x-prefixed hex address, empty when not provided
	Balance   int64     `gorm:"not null;default:0" json:"balance"`   // Current token balance
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsIncomplete reports whether the user has not finished setting up:
// no address on file or an empty balance.
func (u User) IsIncomplete() bool {
	return u.Address == "" || u.Balance == 0
}
