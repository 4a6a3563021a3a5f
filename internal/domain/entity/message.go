package entity

import "time"

const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeLocation = "location"
)

// Message is immutable once created except for the read flag.
type Message struct {
	ID             string                 `json:"id" firestore:"id"`
	ConversationID string                 `json:"conversation_id" firestore:"conversationId"`
	SenderID       string                 `json:"sender_id" firestore:"senderId"`
	SenderRole     string                 `json:"sender_role" firestore:"senderRole"`
	Content        string                 `json:"content" firestore:"content"`
	Type           string                 `json:"type" firestore:"type"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	IsRead         bool                   `json:"is_read" firestore:"isRead"`
	CreatedAt      time.Time              `json:"created_at" firestore:"createdAt"`
}
