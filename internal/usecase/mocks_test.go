package usecase

import (
	"context"
	"sync"
	"time"

	"trashlink/internal/domain/entity"
	"trashlink/internal/infrastructure/firebase"
	"trashlink/pkg/errors"
)

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User

	getErr    error
	createErr error
	updateErr error

	createCalls int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*entity.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.ID]; ok {
		return nil // idempotent
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.Role = role
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

type mockAuthClient struct {
	identities map[string]*firebase.Identity

	verifyUID string
	verifyErr error

	roleClaims map[string]string
	phones     map[string]string
}

func newMockAuthClient() *mockAuthClient {
	return &mockAuthClient{
		identities: make(map[string]*firebase.Identity),
		roleClaims: make(map[string]string),
		phones:     make(map[string]string),
	}
}

func (m *mockAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	if m.verifyErr != nil {
		return "", m.verifyErr
	}
	return m.verifyUID, nil
}

func (m *mockAuthClient) GetIdentity(ctx context.Context, uid string) (*firebase.Identity, error) {
	identity, ok := m.identities[uid]
	if !ok {
		return nil, errors.NotFound("Identity", nil)
	}
	return identity, nil
}

func (m *mockAuthClient) SetRoleClaim(ctx context.Context, uid, role string) error {
	m.roleClaims[uid] = role
	return nil
}

func (m *mockAuthClient) UpdateUserPhone(ctx context.Context, uid, phone string) error {
	m.phones[uid] = phone
	return nil
}

type mockRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*entity.Request

	createErr      error
	createErrOnce  bool
	createAttempts int
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*entity.Request)}
}

func (m *mockRequestRepo) Create(ctx context.Context, request *entity.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createAttempts++
	if m.createErr != nil {
		err := m.createErr
		if m.createErrOnce {
			m.createErr = nil
		}
		return err
	}
	if request.ID == "" {
		request.ID = "req-" + time.Now().Format("150405.000000")
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	copied := *request
	m.requests[request.ID] = &copied
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}
	copied := *request
	return &copied, nil
}

func (m *mockRequestRepo) Accept(ctx context.Context, requestID, collectorID string) (*entity.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestID]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}
	if request.Status != entity.RequestPending {
		return nil, errors.Conflict("Request is no longer available")
	}
	request.CollectorID = collectorID
	request.Status = entity.RequestMatched
	request.UpdatedAt = time.Now()
	copied := *request
	return &copied, nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, requestID, status string) (*entity.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestID]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}
	if !entity.CanTransition(request.Status, status) {
		return nil, errors.Conflict("Request cannot move from " + request.Status + " to " + status)
	}
	request.Status = status
	request.UpdatedAt = time.Now()
	copied := *request
	return &copied, nil
}

func (m *mockRequestRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Request, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Request
	for _, request := range m.requests {
		if request.CustomerID == customerID {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRequestRepo) ListForCollector(ctx context.Context, collectorID string, limit, offset int) ([]*entity.Request, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Request
	for _, request := range m.requests {
		if request.CollectorID == collectorID || request.Status == entity.RequestPending {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

type mockChatRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message

	markReadCalls []string
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (m *mockChatRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conversation.ID == "" {
		conversation.ID = "conv-" + conversation.RequestID
	}
	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}
	copied := *conversation
	m.conversations[conversation.ID] = &copied
	return nil
}

func (m *mockChatRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conversation, ok := m.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	copied := *conversation
	return &copied, nil
}

func (m *mockChatRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conversation := range m.conversations {
		if conversation.RequestID == requestID {
			copied := *conversation
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Conversation for request", nil)
}

func (m *mockChatRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Conversation
	for _, conversation := range m.conversations {
		if conversation.HasParticipant(userID) {
			copied := *conversation
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockChatRepo) AppendMessage(ctx context.Context, conversation *entity.Conversation, message *entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.conversations[conversation.ID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if message.ID == "" {
		message.ID = "msg"
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	if stored.UnreadCount == nil {
		stored.UnreadCount = make(map[string]int)
	}
	if recipient := stored.OtherParticipant(message.SenderID); recipient != "" {
		stored.UnreadCount[recipient]++
	}
	stored.LastMessage = message.Content
	stored.LastMessageAt = message.CreatedAt
	m.messages[conversation.ID] = append(m.messages[conversation.ID], message)
	*conversation = *stored
	return nil
}

func (m *mockChatRepo) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	messages := m.messages[conversationID]
	return messages, int64(len(messages)), nil
}

func (m *mockChatRepo) MarkRead(ctx context.Context, conversationID, readerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conversation, ok := m.conversations[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	for _, message := range m.messages[conversationID] {
		if message.SenderID != readerID {
			message.IsRead = true
		}
	}
	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}
	conversation.UnreadCount[readerID] = 0
	m.markReadCalls = append(m.markReadCalls, conversationID+":"+readerID)
	return nil
}

type mockCollectorRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.CollectorProfile
}

func newMockCollectorRepo() *mockCollectorRepo {
	return &mockCollectorRepo{profiles: make(map[string]*entity.CollectorProfile)}
}

func (m *mockCollectorRepo) Create(ctx context.Context, profile *entity.CollectorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.UserID]; ok {
		return errors.Conflict("Collector profile already exists")
	}
	copied := *profile
	m.profiles[profile.UserID] = &copied
	return nil
}

func (m *mockCollectorRepo) GetByUserID(ctx context.Context, userID string) (*entity.CollectorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, errors.NotFound("Collector profile", nil)
	}
	copied := *profile
	return &copied, nil
}

func (m *mockCollectorRepo) Update(ctx context.Context, profile *entity.CollectorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *profile
	m.profiles[profile.UserID] = &copied
	return nil
}

func (m *mockCollectorRepo) ListAvailable(ctx context.Context, limit, offset int) ([]*entity.CollectorProfile, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.CollectorProfile
	for _, profile := range m.profiles {
		if profile.Available {
			copied := *profile
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

type mockVerificationRepo struct {
	mu    sync.Mutex
	codes map[string]*entity.PhoneVerification
}

func newMockVerificationRepo() *mockVerificationRepo {
	return &mockVerificationRepo{codes: make(map[string]*entity.PhoneVerification)}
}

func (m *mockVerificationRepo) Save(ctx context.Context, verification *entity.PhoneVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	verification.ID = verification.UserID
	copied := *verification
	m.codes[verification.UserID] = &copied
	return nil
}

func (m *mockVerificationRepo) GetByUserID(ctx context.Context, userID string) (*entity.PhoneVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	verification, ok := m.codes[userID]
	if !ok {
		return nil, errors.NotFound("Verification code", nil)
	}
	copied := *verification
	return &copied, nil
}

func (m *mockVerificationRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, id)
	return nil
}

type mockSmsSender struct {
	mu    sync.Mutex
	sent  []string // phone:code
	fail  bool
	codes map[string]string
}

func newMockSmsSender() *mockSmsSender {
	return &mockSmsSender{codes: make(map[string]string)}
}

func (m *mockSmsSender) SendCode(ctx context.Context, phone, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.Unavailable("sms function down", nil)
	}
	m.sent = append(m.sent, phone+":"+code)
	m.codes[phone] = code
	return nil
}

type mockPusher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func newMockPusher() *mockPusher {
	return &mockPusher{messages: make(map[string][][]byte)}
}

func (m *mockPusher) SendToUser(userID string, message []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[userID] = append(m.messages[userID], message)
}

func (m *mockPusher) SendToUsers(userIDs []string, message []byte) {
	for _, userID := range userIDs {
		m.SendToUser(userID, message)
	}
}

func (m *mockPusher) IsConnected(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[userID]) > 0
}

func (m *mockPusher) sentTo(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[userID])
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(userID, action string) (bool, time.Duration) { return true, 0 }

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(userID, action string) (bool, time.Duration) {
	return false, time.Minute
}
