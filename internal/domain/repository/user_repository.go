package repository

import (
	"context"

	"trashlink/internal/domain/entity"
)

type UserRepository interface {
	// Create inserts the user row. A duplicate insert for the same ID returns
	// ErrAlreadyExists-style platform errors; callers treat that as success.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
}

type VerificationRepository interface {
	Save(ctx context.Context, verification *entity.PhoneVerification) error
	GetByUserID(ctx context.Context, userID string) (*entity.PhoneVerification, error)
	Delete(ctx context.Context, id string) error
}
