package repository

import (
	"context"
	"errors"

	"whisper/internal/models"

	"gorm.io/gorm"
)

// AccountRepository defines persistence operations for coin accounts. Charge
// is the economy gate: it is the only code path that takes coins off an
// account, and it can never drive a balance below zero.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByUserID(ctx context.Context, userID uint) (*models.Account, error)
	Charge(ctx context.Context, userID uint, amount int64, action string) error
	Credit(ctx context.Context, userID uint, amount int64) (*models.Account, error)
	SetBanned(ctx context.Context, userID uint, banned bool) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a new AccountRepository implementation.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

// Charge debits amount coins from the user's account as a single conditional
// update. The sufficiency check and the decrement are one statement, so two
// concurrent charges can never spend the same coins twice.
func (r *accountRepository) Charge(ctx context.Context, userID uint, amount int64, action string) error {
	if amount <= 0 {
		return models.NewValidationError("Charge amount must be positive")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("user_id = ? AND coins >= ?", userID, amount).
		UpdateColumn("coins", gorm.Expr("coins - ?", amount))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the account is missing or the balance is short.
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return err
		}
		return models.NewInsufficientFundsError(action, amount)
	}
	return nil
}

func (r *accountRepository) Credit(ctx context.Context, userID uint, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("Credit amount must be positive")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("user_id = ?", userID).
		UpdateColumn("coins", gorm.Expr("coins + ?", amount))
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Account", userID)
	}

	return r.GetByUserID(ctx, userID)
}

// SetBanned flips the ban flag. Setting an already-set value is a no-op
// success.
func (r *accountRepository) SetBanned(ctx context.Context, userID uint, banned bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("user_id = ?", userID).
		Update("is_banned", banned)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish "no such account" from "value unchanged": sqlite and
		// postgres both report an affected row for a same-value update via
		// GORM, so zero rows means the account does not exist.
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}
