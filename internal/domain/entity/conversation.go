package entity

import "time"

// Conversation is the single chat thread attached to a request, created lazily
// on first message exchange. UnreadCount is keyed by participant ID so each
// side carries its own counter.
type Conversation struct {
	ID          string `json:"id" firestore:"id"`
	RequestID   string `json:"request_id" firestore:"requestId"`
	CustomerID  string `json:"customer_id" firestore:"customerId"`
	CollectorID string `json:"collector_id" firestore:"collectorId"`

	LastMessage   string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt"`

	UnreadCount map[string]int `json:"unread_count" firestore:"unreadCount"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	return userID == c.CustomerID || userID == c.CollectorID
}

// OtherParticipant returns the participant across from userID, or "" when
// userID is not part of the conversation.
func (c *Conversation) OtherParticipant(userID string) string {
	switch userID {
	case c.CustomerID:
		return c.CollectorID
	case c.CollectorID:
		return c.CustomerID
	}
	return ""
}
