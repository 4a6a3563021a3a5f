package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/pkg/errors"
	"trashlink/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}

	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	_, err := r.client.Collection("conversations").Doc(conversation.ID).Set(ctx, conversation)
	if err != nil {
		return errors.Unavailable("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Unavailable("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

func (r *firestoreChatRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.Conversation, error) {
	query := r.client.Collection("conversations").Where("requestId", "==", requestID).Limit(1)
	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Conversation for request", nil)
		}
		return nil, errors.Unavailable("Failed to query conversation by request", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

func (r *firestoreChatRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	// A conversation has exactly two participants, stored in dedicated
	// fields; union the two queries instead of an array-contains index.
	asCustomer, err := r.client.Collection("conversations").
		Where("customerId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Unavailable("Failed to fetch conversations", err)
	}

	asCollector, err := r.client.Collection("conversations").
		Where("collectorId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Unavailable("Failed to fetch conversations", err)
	}

	var conversations []*entity.Conversation
	for _, doc := range append(asCustomer, asCollector...) {
		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			logger.Warn("Skipping malformed conversation document %s: %v", doc.Ref.ID, err)
			continue
		}
		conversations = append(conversations, &conversation)
	}

	// Most recent activity first.
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})

	total := int64(len(conversations))

	start := offset
	if start > len(conversations) {
		start = len(conversations)
	}
	end := len(conversations)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return conversations[start:end], total, nil
}

// AppendMessage writes the message and updates the parent conversation in one
// transaction: preview, last-message time, and the recipient's unread counter
// move together.
func (r *firestoreChatRepository) AppendMessage(ctx context.Context, conversation *entity.Conversation, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	convRef := r.client.Collection("conversations").Doc(conversation.ID)
	msgRef := convRef.Collection("messages").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(convRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Conversation", err)
			}
			return errors.Unavailable("Failed to get conversation", err)
		}

		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			return errors.Internal("Failed to parse conversation data", err)
		}

		if conv.UnreadCount == nil {
			conv.UnreadCount = make(map[string]int)
		}
		if recipient := conv.OtherParticipant(message.SenderID); recipient != "" {
			conv.UnreadCount[recipient]++
		}
		conv.LastMessage = message.Content
		conv.LastMessageAt = message.CreatedAt
		conv.UpdatedAt = message.CreatedAt

		if err := tx.Set(msgRef, message); err != nil {
			return err
		}
		if err := tx.Set(convRef, &conv); err != nil {
			return err
		}

		*conversation = conv
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return appErr
		}
		return errors.Unavailable("Failed to append message", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").OrderBy("createdAt", firestore.Asc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while counting messages for conversation %s: %v", conversationID, err)
		return nil, 0, errors.Unavailable("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Unavailable("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message document %s: %v", doc.Ref.ID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) MarkRead(ctx context.Context, conversationID, readerID string) error {
	convRef := r.client.Collection("conversations").Doc(conversationID)

	unread, err := convRef.Collection("messages").
		Where("isRead", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return errors.Unavailable("Failed to query unread messages", err)
	}

	for _, doc := range unread {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue
		}
		if message.SenderID == readerID {
			continue
		}
		if _, err := doc.Ref.Update(ctx, []firestore.Update{
			{Path: "isRead", Value: true},
		}); err != nil {
			logger.Warn("Failed to mark message %s read: %v", doc.Ref.ID, err)
		}
	}

	_, err = convRef.Update(ctx, []firestore.Update{
		{Path: "unreadCount." + readerID, Value: 0},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Unavailable("Failed to reset unread counter", err)
	}

	return nil
}
