package models

import (
	"time"
)

// DefaultStartingCoins is the balance granted to every new account.
const DefaultStartingCoins = 100

// Account holds the coin balance and moderation state for a user. One account
// per user, created alongside the user and cascade-deleted with it.
//
// The coins column is unsigned at the application level: every debit goes
// through AccountRepository.Charge, which refuses to take the balance below
// zero.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Coins     int64     `gorm:"not null;default:100" json:"coins"`
	IsBanned  bool      `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}
