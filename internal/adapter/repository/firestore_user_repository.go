package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.client.Collection("users").Doc(user.ID).Create(ctx, user)
	if err != nil {
		// A concurrent ensure already created the row; that is a success for
		// an idempotent create.
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return errors.Unavailable("Failed to create user record", err)
	}

	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		if status.Code(err) == codes.DeadlineExceeded || ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Timeout("User read timed out", err)
		}
		return nil, errors.Unavailable("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, userUpdateData(user), firestore.MergeAll)
	if err != nil {
		return errors.Unavailable("Failed to update user", err)
	}

	return nil
}

// userUpdateData builds the merge payload for a profile update. phoneVerified
// is written unconditionally: a phone change resets it to false, and a merge
// that omitted the field would leave the stale true behind.
func userUpdateData(user *entity.User) map[string]interface{} {
	updateData := map[string]interface{}{
		"displayName":   user.DisplayName,
		"phone":         user.Phone,
		"phoneVerified": user.PhoneVerified,
		"updatedAt":     user.UpdatedAt,
	}
	if user.Address != nil {
		updateData["address"] = user.Address
	}

	// Only strip empty strings so a partial profile edit cannot blank
	// existing data; booleans pass through untouched.
	cleanUpdateData := make(map[string]interface{})
	for key, value := range updateData {
		if strVal, ok := value.(string); ok && strVal == "" {
			continue
		}
		cleanUpdateData[key] = value
	}

	return cleanUpdateData
}

func (r *firestoreUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	_, err := r.client.Collection("users").Doc(id).Update(ctx, []firestore.Update{
		{Path: "role", Value: role},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("User", err)
		}
		return errors.Unavailable("Failed to update user role", err)
	}

	return nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("users").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Unavailable("Failed to delete user", err)
	}
	return nil
}
