package service

import (
	"context"
	"log/slog"

	"whisper/internal/middleware"
	"whisper/internal/models"
	"whisper/internal/repository"
)

// ModerationService provides admin balance and ban operations. These are
// capability-gated (admin only) and bypass the coin economy and ban checks.
type ModerationService struct {
	accountRepo repository.AccountRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(accountRepo repository.AccountRepository, messageRepo repository.MessageRepository, userRepo repository.UserRepository) *ModerationService {
	return &ModerationService{
		accountRepo: accountRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// AddCoins credits amount coins to the user's account and returns the
// updated account. Amount must be positive; there is no admin debit.
func (s *ModerationService) AddCoins(ctx context.Context, userID uint, amount int64) (*models.Account, *models.User, error) {
	if amount <= 0 {
		return nil, nil, models.NewValidationError("amount must be a positive integer")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.accountRepo.Credit(ctx, userID, amount)
	if err != nil {
		return nil, nil, err
	}

	middleware.Logger.InfoContext(ctx, "admin credited coins",
		slog.Uint64("target_user_id", uint64(userID)),
		slog.Int64("amount", amount),
		slog.Int64("new_balance", account.Coins),
	)
	return account, user, nil
}

// SetBanned bans or unbans the user. Repeating the current state is a no-op
// success.
func (s *ModerationService) SetBanned(ctx context.Context, userID uint, banned bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SetBanned(ctx, userID, banned); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "admin changed ban state",
		slog.Uint64("target_user_id", uint64(userID)),
		slog.Bool("banned", banned),
	)
	return user, nil
}

// ListMessages returns all messages for moderation review, newest first.
func (s *ModerationService) ListMessages(ctx context.Context, limit, offset int) ([]models.Message, error) {
	return s.messageRepo.ListAll(ctx, limit, offset)
}

// DeleteMessage removes any message, regardless of owner.
func (s *ModerationService) DeleteMessage(ctx context.Context, messageID uint) error {
	return s.messageRepo.Delete(ctx, messageID)
}
