package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cassieopeanuts/sithtipahpreview/models"
)

var (
	// ErrUserNotFound is returned when an operation requires a row that
	// does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when the user_id unique index rejects
	// an insert.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInsufficientFunds is returned by Transfer when the sender's
	// balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// UserDAO handles user-related database operations. All access goes through
// the single shared connection of the underlying pool, so individual
// statements never interleave; multi-step mutations additionally run inside
// one transaction.
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// Migrate creates the users table if it is missing. Safe to call on every
// startup.
func (d *UserDAO) Migrate(ctx context.Context) error {
	if err := d.db.WithContext(ctx).AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("migrate users table: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row with the given address and starting
// balance.
func (d *UserDAO) CreateUser(ctx context.Context, userID, address string, balance int64) (*models.User, error) {
	user := &models.User{UserID: userID, Address: address, Balance: balance}
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by platform account id
func (d *UserDAO) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetBalance retrieves only the balance column for a user
func (d *UserDAO) GetBalance(ctx context.Context, userID string) (int64, error) {
	var user models.User
	err := d.db.WithContext(ctx).
		Select("balance").
		Where("user_id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.Balance, nil
}

// UpdateAddress overwrites the stored address for an existing user
func (d *UserDAO) UpdateAddress(ctx context.Context, userID, address string) error {
	res := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("address", address)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AdjustBalance adds delta (positive or negative) to the stored balance in a
// single relative UPDATE, so concurrent adjustments never lose increments.
func (d *UserDAO) AdjustBalance(ctx context.Context, userID string, delta int64) error {
	res := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Transfer moves amount from sender to recipient inside one transaction.
// The debit is guarded by a balance check in its WHERE clause, so two
// transfers racing on the same sender can never drive the balance negative.
// A recipient without a row is created with an empty address and zero
// balance before the credit.
func (d *UserDAO) Transfer(ctx context.Context, senderID, recipientID string, amount int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sender models.User
		if err := tx.Where("user_id = ?", senderID).First(&sender).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if sender.Balance < amount {
			return ErrInsufficientFunds
		}

		res := tx.Model(&models.User{}).
			Where("user_id = ? AND balance >= ?", senderID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}

		recipient := models.User{UserID: recipientID}
		if err := tx.Where(models.User{UserID: recipientID}).FirstOrCreate(&recipient).Error; err != nil {
			return err
		}

		res = tx.Model(&models.User{}).
			Where("user_id = ?", recipientID).
			Update("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// TopUp credits amount to a user whose balance is below threshold and
// returns the resulting balance. When the balance is already at or above the
// threshold nothing is written and credited is false.
func (d *UserDAO) TopUp(ctx context.Context, userID string, threshold, amount int64) (balance int64, credited bool, err error) {
	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.Balance >= threshold {
			balance = user.Balance
			return nil
		}

		res := tx.Model(&models.User{}).
			Where("user_id = ? AND balance < ?", userID, threshold).
			Update("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race with another top-up inside this transaction
			// window; report the current balance untouched.
			balance = user.Balance
			return nil
		}
		balance = user.Balance + amount
		credited = true
		return nil
	})
	return balance, credited, err
}
