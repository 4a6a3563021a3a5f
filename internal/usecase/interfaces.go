package usecase

import (
	"context"
	"time"

	"trashlink/internal/infrastructure/firebase"
)

// AuthClient is the slice of the identity provider the use cases need. The
// concrete implementation lives in internal/infrastructure/firebase.
type AuthClient interface {
	VerifyToken(ctx context.Context, token string) (string, error)
	GetIdentity(ctx context.Context, uid string) (*firebase.Identity, error)
	SetRoleClaim(ctx context.Context, uid, role string) error
	UpdateUserPhone(ctx context.Context, uid, phone string) error
}

// SmsSender delivers a one-time code to a phone number, typically through a
// backend cloud function.
type SmsSender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// Pusher delivers realtime events to connected clients. Implemented by the
// websocket manager; delivery is best effort.
type Pusher interface {
	SendToUser(userID string, message []byte)
	SendToUsers(userIDs []string, message []byte)
	IsConnected(userID string) bool
}

// RateLimiter guards expensive or abusable actions per user.
type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}
