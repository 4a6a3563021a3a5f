package entity

import (
	"time"
)

const (
	RoleCustomer  = "customer"
	RoleCollector = "collector"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the roles an account may hold.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleCollector || role == RoleAdmin
}

type Address struct {
	Street     string `json:"street,omitempty" firestore:"street,omitempty"`
	City       string `json:"city,omitempty" firestore:"city,omitempty"`
	State      string `json:"state,omitempty" firestore:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty" firestore:"postalCode,omitempty"`
}

type User struct {
	ID          string `json:"id" firestore:"id"`
	Email       string `json:"email" firestore:"email"`
	DisplayName string `json:"display_name" firestore:"displayName"`
	Role        string `json:"role" firestore:"role"` // "customer", "collector", "admin"
	Phone       string `json:"phone,omitempty" firestore:"phone,omitempty"`

	Address *Address `json:"address,omitempty" firestore:"address,omitempty"`

	EmailVerified bool `json:"email_verified" firestore:"emailVerified"`
	PhoneVerified bool `json:"phone_verified" firestore:"phoneVerified"`

	// Synthesized marks a fallback profile built from identity-provider claims
	// when the store read failed or timed out. Never persisted.
	Synthesized bool `json:"-" firestore:"-"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// PhoneVerification holds a pending SMS verification code for a user. The code
// itself is generated here; delivery is delegated to the SMS function.
type PhoneVerification struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Phone     string    `json:"phone" firestore:"phone"`
	Code      string    `json:"-" firestore:"code"`
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

func (v *PhoneVerification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
