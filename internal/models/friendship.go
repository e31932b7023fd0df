package models

import (
	"time"
)

// Friendship is a directed "added by" edge: the owner paid to add the friend.
// No reverse edge is created; whether friendship should be symmetric is a
// product question this model deliberately does not answer.
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"owner_id"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`

	Owner  User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Friend User `gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE" json:"friend,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}
