package service

import (
	"context"
	"strings"

	"whisper/internal/models"
	"whisper/internal/repository"

	"gorm.io/gorm"
)

// claimRetries bounds how often a delivery pick is retried when another
// receiver claims the candidate first.
const claimRetries = 3

// MessageService provides the anonymous-message lifecycle: send into the
// pool, random delivery, reveal, reply, listing and discard.
type MessageService struct {
	db          *gorm.DB
	messageRepo repository.MessageRepository
	accountRepo repository.AccountRepository
}

// NewMessageService returns a new MessageService.
func NewMessageService(db *gorm.DB, messageRepo repository.MessageRepository, accountRepo repository.AccountRepository) *MessageService {
	return &MessageService{
		db:          db,
		messageRepo: messageRepo,
		accountRepo: accountRepo,
	}
}

// Send charges the sender and creates an undelivered pool message. The charge
// and the insert commit or roll back together: a rejected charge creates no
// message, and a failed insert refunds the charge.
func (s *MessageService) Send(ctx context.Context, senderID uint, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("text is required")
	}

	message := &models.Message{
		SenderID: senderID,
		Text:     text,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAccountRepository(tx).Charge(ctx, senderID, CostSendMessage, "send a message"); err != nil {
			return err
		}
		return repository.NewMessageRepository(tx).Create(ctx, message)
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// Receive claims one random undelivered message for the user. Messages the
// user sent are never candidates. Returns (nil, nil) when the pool is empty.
//
// The claim is a conditional update on receiver_id, so two concurrent callers
// cannot be handed the same message; the loser just picks again.
func (s *MessageService) Receive(ctx context.Context, userID uint) (*models.Message, error) {
	for i := 0; i < claimRetries; i++ {
		candidate, err := s.messageRepo.PickRandomUndelivered(ctx, userID)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, nil
		}

		claimed, err := s.messageRepo.ClaimForReceiver(ctx, candidate.ID, userID)
		if err != nil {
			return nil, err
		}
		if claimed {
			candidate.ReceiverID = &userID
			return candidate, nil
		}
	}
	// Every candidate was snatched by concurrent receivers; present it as an
	// empty pool rather than an error.
	return nil, nil
}

// Reveal charges the receiver and discloses the sender's identity. Only the
// receiver may reveal, the transition is irreversible, and a repeated reveal
// is rejected without charging.
func (s *MessageService) Reveal(ctx context.Context, userID, messageID uint) (*models.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.ReceiverID == nil || *message.ReceiverID != userID {
		return nil, models.NewForbiddenError("Only the receiver can reveal the sender")
	}
	if message.IsSenderRevealed {
		return nil, models.NewAlreadyDoneError("Sender is already revealed")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAccountRepository(tx).Charge(ctx, userID, CostRevealSender, "reveal the sender"); err != nil {
			return err
		}
		revealed, err := repository.NewMessageRepository(tx).MarkRevealed(ctx, messageID)
		if err != nil {
			return err
		}
		if !revealed {
			// Lost a race with another reveal; roll back the charge.
			return models.NewAlreadyDoneError("Sender is already revealed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	message.IsSenderRevealed = true
	return message, nil
}

// Reply charges the receiver and stores the reply. Only the receiver may
// reply, and the first reply wins: a second reply is rejected rather than
// silently overwriting the first.
func (s *MessageService) Reply(ctx context.Context, userID, messageID uint, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("reply_text is required")
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.ReceiverID == nil || *message.ReceiverID != userID {
		return nil, models.NewForbiddenError("Only the receiver can reply to this message")
	}
	if message.ReplyText != nil {
		return nil, models.NewAlreadyDoneError("This message has already been replied to")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAccountRepository(tx).Charge(ctx, userID, CostReply, "reply"); err != nil {
			return err
		}
		replied, err := repository.NewMessageRepository(tx).SetReply(ctx, messageID, text)
		if err != nil {
			return err
		}
		if !replied {
			return models.NewAlreadyDoneError("This message has already been replied to")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	message.ReplyText = &text
	return message, nil
}

// ListReceived returns the user's received messages, newest first.
func (s *MessageService) ListReceived(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.messageRepo.ListByReceiver(ctx, userID)
}

// ListSent returns the user's sent messages, newest first.
func (s *MessageService) ListSent(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.messageRepo.ListBySender(ctx, userID)
}

// Discard deletes a received message. Only the receiver may discard; a
// message that exists but belongs to someone else reads as not found so the
// endpoint does not leak other users' message IDs.
func (s *MessageService) Discard(ctx context.Context, userID, messageID uint) error {
	deleted, err := s.messageRepo.DeleteReceived(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNotFoundError("Message", messageID)
	}
	return nil
}
