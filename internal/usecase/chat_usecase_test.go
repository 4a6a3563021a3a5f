package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trashlink/internal/domain/entity"
	"trashlink/pkg/errors"
)

type chatFixture struct {
	uc          *ChatUseCase
	chatRepo    *mockChatRepo
	requestRepo *mockRequestRepo
	userRepo    *mockUserRepo
	pusher      *mockPusher
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	chatRepo := newMockChatRepo()
	requestRepo := newMockRequestRepo()
	userRepo := newMockUserRepo()
	pusher := newMockPusher()

	userRepo.users["cust"] = &entity.User{ID: "cust", Role: entity.RoleCustomer}
	userRepo.users["coll"] = &entity.User{ID: "coll", Role: entity.RoleCollector}

	return &chatFixture{
		uc:          NewChatUseCase(chatRepo, requestRepo, userRepo, allowAllLimiter{}, pusher),
		chatRepo:    chatRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		pusher:      pusher,
	}
}

func (f *chatFixture) seedMatchedRequest(id string) {
	f.requestRepo.requests[id] = &entity.Request{
		ID:          id,
		CustomerID:  "cust",
		CollectorID: "coll",
		Status:      entity.RequestMatched,
	}
}

func (f *chatFixture) openConversation(t *testing.T, requestID string) *entity.Conversation {
	t.Helper()
	conversation, err := f.uc.GetOrCreateConversation(context.Background(), "cust", requestID)
	require.NoError(t, err)
	return conversation
}

func TestGetOrCreateConversationIsIdempotent(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-1")

	first, err := f.uc.GetOrCreateConversation(context.Background(), "cust", "req-1")
	require.NoError(t, err)

	second, err := f.uc.GetOrCreateConversation(context.Background(), "coll", "req-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateConversationRequiresMatch(t *testing.T) {
	f := newChatFixture(t)
	f.requestRepo.requests["req-2"] = &entity.Request{
		ID:         "req-2",
		CustomerID: "cust",
		Status:     entity.RequestPending,
	}

	_, err := f.uc.GetOrCreateConversation(context.Background(), "cust", "req-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestGetOrCreateConversationRejectsOutsider(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-3")
	f.userRepo.users["stranger"] = &entity.User{ID: "stranger", Role: entity.RoleCustomer}

	_, err := f.uc.GetOrCreateConversation(context.Background(), "stranger", "req-3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSendMessageIncrementsRecipientUnread(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-4")
	conversation := f.openConversation(t, "req-4")

	message, err := f.uc.SendMessage(context.Background(), "cust", SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "Gate code is 4821",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MessageTypeText, message.Type)
	assert.Equal(t, entity.RoleCustomer, message.SenderRole)

	stored, err := f.chatRepo.GetByID(context.Background(), conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UnreadCount["coll"])
	assert.Equal(t, 0, stored.UnreadCount["cust"])
	assert.Equal(t, "Gate code is 4821", stored.LastMessage)

	// The other participant got a push, the sender did not.
	assert.Equal(t, 1, f.pusher.sentTo("coll"))
	assert.Equal(t, 0, f.pusher.sentTo("cust"))
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-5")
	conversation := f.openConversation(t, "req-5")

	_, err := f.uc.SendMessage(context.Background(), "cust", SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "   ",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessageRejectsOutsider(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-6")
	conversation := f.openConversation(t, "req-6")
	f.userRepo.users["stranger"] = &entity.User{ID: "stranger", Role: entity.RoleCustomer}

	_, err := f.uc.SendMessage(context.Background(), "stranger", SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "hi",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSendMessageRateLimited(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-7")
	conversation := f.openConversation(t, "req-7")
	f.uc.rateLimiter = denyAllLimiter{}

	_, err := f.uc.SendMessage(context.Background(), "cust", SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "hi",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}

func TestMarkReadZeroesReaderCounterOnly(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-8")
	conversation := f.openConversation(t, "req-8")

	for i := 0; i < 3; i++ {
		_, err := f.uc.SendMessage(context.Background(), "cust", SendMessageInput{
			ConversationID: conversation.ID,
			Content:        "ping",
		})
		require.NoError(t, err)
	}
	_, err := f.uc.SendMessage(context.Background(), "coll", SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "pong",
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.MarkRead(context.Background(), "coll", conversation.ID))

	stored, err := f.chatRepo.GetByID(context.Background(), conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UnreadCount["coll"])
	// The customer's own unread counter is untouched.
	assert.Equal(t, 1, stored.UnreadCount["cust"])
}

func TestUnreadTotalSumsAcrossConversations(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-9")
	f.seedMatchedRequest("req-10")

	for _, requestID := range []string{"req-9", "req-10"} {
		conversation := f.openConversation(t, requestID)
		_, err := f.uc.SendMessage(context.Background(), "cust", SendMessageInput{
			ConversationID: conversation.ID,
			Content:        "hello",
		})
		require.NoError(t, err)
	}

	total, err := f.uc.UnreadTotal(context.Background(), "coll")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	total, err = f.uc.UnreadTotal(context.Background(), "cust")
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestListMessagesRequiresParticipation(t *testing.T) {
	f := newChatFixture(t)
	f.seedMatchedRequest("req-11")
	conversation := f.openConversation(t, "req-11")

	_, _, err := f.uc.ListMessages(context.Background(), "stranger", conversation.ID, 50, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}
