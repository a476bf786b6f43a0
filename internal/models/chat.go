package models

import "github.com/google/uuid"

// ChatMessage is a persisted direct message relayed over the realtime hub.
type ChatMessage struct {
	BaseModel
	SenderID    uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	RecipientID uuid.UUID `gorm:"type:uuid;index" json:"recipient_id"`
	Body        string    `json:"body"`
	IsRead      bool      `json:"is_read"`
}
