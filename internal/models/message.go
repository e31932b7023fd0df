package models

import (
	"time"
)

// Message is an anonymous (or friend-to-friend) text message.
//
// A nil ReceiverID means the message is still in the undelivered pool. The
// receiver is assigned exactly once, by the delivery claim; it never changes
// afterwards. IsSenderRevealed and ReplyText are likewise write-once.
type Message struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SenderID         uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID       *uint     `gorm:"index" json:"receiver_id"`
	Text             string    `gorm:"not null" json:"text"`
	IsSenderRevealed bool      `gorm:"not null;default:false" json:"is_sender_revealed"`
	ReplyText        *string   `json:"reply_text"`
	IsNotification   bool      `gorm:"not null;default:false" json:"is_notification"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Sender   User  `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver *User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Message) TableName() string {
	return "messages"
}

// MessageResponse is the serialized message shape. Sender is only populated
// when the sender's identity has been revealed (or the reader is the sender
// or an admin); otherwise the message is sender-hidden.
type MessageResponse struct {
	ID               uint         `json:"id"`
	Sender           *UserSummary `json:"sender,omitempty"`
	ReceiverID       *uint        `json:"receiver_id"`
	Text             string       `json:"text"`
	IsSenderRevealed bool         `json:"is_sender_revealed"`
	ReplyText        *string      `json:"reply_text"`
	IsNotification   bool         `json:"is_notification"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Response serializes the message, embedding the sender identity only when
// withSender is true. Callers pass m.IsSenderRevealed for receiver-facing
// reads and true for sender- or admin-facing reads.
func (m *Message) Response(withSender bool) MessageResponse {
	resp := MessageResponse{
		ID:               m.ID,
		ReceiverID:       m.ReceiverID,
		Text:             m.Text,
		IsSenderRevealed: m.IsSenderRevealed,
		ReplyText:        m.ReplyText,
		IsNotification:   m.IsNotification,
		CreatedAt:        m.CreatedAt,
	}
	if withSender {
		sender := m.Sender.Summary()
		resp.Sender = &sender
	}
	return resp
}
