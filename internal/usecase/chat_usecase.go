package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/pkg/errors"
	"trashlink/pkg/logger"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	rateLimiter RateLimiter
	pusher      Pusher
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	rateLimiter RateLimiter,
	pusher Pusher,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
		pusher:      pusher,
	}
}

type SendMessageInput struct {
	ConversationID string                 `json:"conversationId" validate:"required"`
	Content        string                 `json:"content" validate:"required"`
	Type           string                 `json:"type"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// GetOrCreateConversation opens the conversation attached to a request,
// creating it on first use. Conversations only exist once a request has both
// a customer and a collector.
func (uc *ChatUseCase) GetOrCreateConversation(ctx context.Context, userID, requestID string) (*entity.Conversation, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this request", nil)
	}
	if request.CollectorID == "" {
		return nil, errors.Conflict("Request has no collector yet, nothing to chat about")
	}

	conversation, err := uc.chatRepo.GetByRequestID(ctx, requestID)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	conversation = &entity.Conversation{
		RequestID:   requestID,
		CustomerID:  request.CustomerID,
		CollectorID: request.CollectorID,
	}
	if err := uc.chatRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}

	return conversation, nil
}

// SendMessage appends a message and pushes it to the other participant. The
// recipient's unread counter moves in the same repository transaction as the
// message write.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if senderID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(senderID, "send_message"); !allowed {
		return nil, errors.TooManyRequests("Too many messages, slow down", wait)
	}

	conversation, err := uc.chatRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, errors.Forbidden("You are not a participant of this conversation", nil)
	}

	messageType := input.Type
	if messageType == "" {
		messageType = entity.MessageTypeText
	}

	senderRole := ""
	if sender, err := uc.userRepo.GetByID(ctx, senderID); err == nil {
		senderRole = sender.Role
	}

	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		SenderRole:     senderRole,
		Content:        input.Content,
		Type:           messageType,
		Metadata:       input.Metadata,
	}

	if err := uc.chatRepo.AppendMessage(ctx, conversation, message); err != nil {
		return nil, err
	}

	if recipient := conversation.OtherParticipant(senderID); recipient != "" {
		uc.push(recipient, "new_message", message)
	}

	return message, nil
}

func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	if userID == "" {
		return nil, 0, errors.Unauthorized("Not authenticated", nil)
	}
	return uc.chatRepo.ListByUserID(ctx, userID, limit, offset)
}

// ListMessages returns a conversation's messages oldest first, the order a
// chat view renders them.
func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	if userID == "" {
		return nil, 0, errors.Unauthorized("Not authenticated", nil)
	}

	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, 0, errors.Forbidden("You are not a participant of this conversation", nil)
	}

	return uc.chatRepo.ListMessages(ctx, conversationID, limit, offset)
}

// MarkRead flags the other side's messages as read and zeroes the reader's
// unread counter.
func (uc *ChatUseCase) MarkRead(ctx context.Context, userID, conversationID string) error {
	if userID == "" {
		return errors.Unauthorized("Not authenticated", nil)
	}

	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant of this conversation", nil)
	}

	if err := uc.chatRepo.MarkRead(ctx, conversationID, userID); err != nil {
		return err
	}

	if other := conversation.OtherParticipant(userID); other != "" {
		uc.push(other, "messages_read", map[string]string{
			"conversationId": conversationID,
			"readerId":       userID,
		})
	}

	return nil
}

// UnreadTotal sums the caller's unread counters across every conversation,
// the number the navigation badge shows.
func (uc *ChatUseCase) UnreadTotal(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.Unauthorized("Not authenticated", nil)
	}

	conversations, _, err := uc.chatRepo.ListByUserID(ctx, userID, -1, 0)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, conversation := range conversations {
		total += conversation.UnreadCount[userID]
	}
	return total, nil
}

func (uc *ChatUseCase) push(userID, eventType string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		logger.Error("Failed to marshal %s push: %v", eventType, err)
		return
	}
	uc.pusher.SendToUser(userID, message)
}
