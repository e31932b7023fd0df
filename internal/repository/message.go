package repository

import (
	"context"
	"errors"

	"whisper/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for messages. The
// write-once transitions (delivery claim, reveal, reply) are conditional
// updates so that concurrent callers cannot repeat them.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	PickRandomUndelivered(ctx context.Context, excludeSenderID uint) (*models.Message, error)
	ClaimForReceiver(ctx context.Context, messageID, receiverID uint) (bool, error)
	MarkRevealed(ctx context.Context, messageID uint) (bool, error)
	SetReply(ctx context.Context, messageID uint, text string) (bool, error)
	ListByReceiver(ctx context.Context, receiverID uint) ([]models.Message, error)
	ListBySender(ctx context.Context, senderID uint) ([]models.Message, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error
	DeleteReceived(ctx context.Context, id, receiverID uint) (bool, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("Sender").First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

// PickRandomUndelivered selects one message from the undelivered pool,
// uniformly at random, never one authored by excludeSenderID. An empty pool
// is (nil, nil), not an error.
func (r *messageRepository) PickRandomUndelivered(ctx context.Context, excludeSenderID uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id IS NULL AND sender_id <> ?", excludeSenderID).
		Order("RANDOM()").
		First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

// ClaimForReceiver assigns the receiver to a pool message. The guard on
// receiver_id makes the claim first-writer-wins: a false return means another
// receiver got there first and the caller should pick again.
func (r *messageRepository) ClaimForReceiver(ctx context.Context, messageID, receiverID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND receiver_id IS NULL", messageID).
		Update("receiver_id", receiverID)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkRevealed flips is_sender_revealed once. A false return means the
// message was already revealed.
func (r *messageRepository) MarkRevealed(ctx context.Context, messageID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND is_sender_revealed = ?", messageID, false).
		Update("is_sender_revealed", true)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetReply stores the reply once. A false return means a reply already
// exists; the first reply wins.
func (r *messageRepository) SetReply(ctx context.Context, messageID uint, text string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND reply_text IS NULL", messageID).
		Update("reply_text", text)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *messageRepository) ListByReceiver(ctx context.Context, receiverID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) ListBySender(ctx context.Context, senderID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	return nil
}

// DeleteReceived removes a message only if receiverID is its receiver.
func (r *messageRepository) DeleteReceived(ctx context.Context, id, receiverID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Delete(&models.Message{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
