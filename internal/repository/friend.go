package repository

import (
	"context"

	"whisper/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines persistence operations for the directed friend
// edges ("owner added friend").
type FriendRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	Exists(ctx context.Context, ownerID, friendID uint) (bool, error)
	ListFriends(ctx context.Context, ownerID uint) ([]models.User, error)
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository returns a new FriendRepository implementation.
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewAlreadyDoneError("This user is already in your friends list")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) Exists(ctx context.Context, ownerID, friendID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("owner_id = ? AND friend_id = ?", ownerID, friendID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// ListFriends returns the users the owner has added, most recent first.
// Only the owner's own directed edges are consulted.
func (r *friendRepository) ListFriends(ctx context.Context, ownerID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN friendships f ON users.id = f.friend_id").
		Where("f.owner_id = ?", ownerID).
		Order("f.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
