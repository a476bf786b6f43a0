package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification tags.
const (
	NotifyOrder  = "order"
	NotifyReview = "review"
	NotifyReply  = "reply"
	NotifySystem = "system"
	NotifyChat   = "chat"
)

// Notification is a persisted in-app notification. A nil UserID means the
// notification is a broadcast visible to everyone.
type Notification struct {
	BaseModel
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SenderAvatar string     `json:"sender_avatar"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Tag          string     `json:"tag"`
	Target       string     `json:"target"`
	IsRead       bool       `json:"is_read"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Color        string     `json:"color"`
}
