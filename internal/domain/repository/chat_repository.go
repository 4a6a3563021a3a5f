package repository

import (
	"context"

	"trashlink/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	GetByRequestID(ctx context.Context, requestID string) (*entity.Conversation, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error)

	// AppendMessage writes the message and, in the same transaction, updates
	// the conversation preview, last-message time, and the recipient's unread
	// counter.
	AppendMessage(ctx context.Context, conversation *entity.Conversation, message *entity.Message) error

	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)

	// MarkRead flips the read flag on every message in the conversation not
	// sent by readerID and zeroes the reader's unread counter.
	MarkRead(ctx context.Context, conversationID, readerID string) error
}
