package service

import (
	"context"
	"strings"

	"whisper/internal/models"
	"whisper/internal/repository"

	"gorm.io/gorm"
)

// FriendService provides the paid friend-list mutation and direct
// friend-to-friend messaging.
type FriendService struct {
	db         *gorm.DB
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(db *gorm.DB, friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		db:         db,
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// AddFriend charges the user and records a directed owner→friend edge. The
// relation is "added by", not mutual: adding does not put the owner on the
// target's list.
func (s *FriendService) AddFriend(ctx context.Context, userID uint, username string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, models.NewValidationError("username is required")
	}

	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if target.ID == userID {
		return nil, models.NewValidationError("You cannot add yourself as a friend")
	}

	exists, err := s.friendRepo.Exists(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewAlreadyDoneError("This user is already in your friends list")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAccountRepository(tx).Charge(ctx, userID, CostAddFriend, "add a friend"); err != nil {
			return err
		}
		return repository.NewFriendRepository(tx).Create(ctx, &models.Friendship{
			OwnerID:  userID,
			FriendID: target.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// SendToFriend charges the user and delivers a message directly to a friend.
// Friend messages skip the anonymous pool: the receiver is set up front, the
// sender is revealed, and the message is flagged as a notification.
func (s *FriendService) SendToFriend(ctx context.Context, userID uint, username, text string) (*models.Message, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("username and text are required")
	}

	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	isFriend, err := s.friendRepo.Exists(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	if !isFriend {
		return nil, models.NewForbiddenError("This user is not in your friends list")
	}

	message := &models.Message{
		SenderID:         userID,
		ReceiverID:       &target.ID,
		Text:             text,
		IsSenderRevealed: true,
		IsNotification:   true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAccountRepository(tx).Charge(ctx, userID, CostFriendMessage, "message a friend"); err != nil {
			return err
		}
		return repository.NewMessageRepository(tx).Create(ctx, message)
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// ListFriends returns the users this user has added.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friendRepo.ListFriends(ctx, userID)
}
