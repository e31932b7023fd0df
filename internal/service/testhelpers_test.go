package service

import (
	"testing"

	"whisper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Message{},
		&models.Friendship{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, coins int64) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Account{UserID: user.ID, Coins: coins}).Error)
	return user
}

func balance(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var account models.Account
	require.NoError(t, db.Where("user_id = ?", userID).First(&account).Error)
	return account.Coins
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}
