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

type firestoreVerificationRepository struct {
	client *firestore.Client
}

func NewFirestoreVerificationRepository(client *firestore.Client) repository.VerificationRepository {
	return &firestoreVerificationRepository{
		client: client,
	}
}

// One pending verification per user: keyed by user ID so a re-send replaces
// the previous code.
func (r *firestoreVerificationRepository) Save(ctx context.Context, verification *entity.PhoneVerification) error {
	verification.ID = verification.UserID
	if verification.CreatedAt.IsZero() {
		verification.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("phoneVerifications").Doc(verification.ID).Set(ctx, verification)
	if err != nil {
		return errors.Unavailable("Failed to save verification code", err)
	}

	return nil
}

func (r *firestoreVerificationRepository) GetByUserID(ctx context.Context, userID string) (*entity.PhoneVerification, error) {
	doc, err := r.client.Collection("phoneVerifications").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Verification code", err)
		}
		return nil, errors.Unavailable("Failed to get verification code", err)
	}

	var verification entity.PhoneVerification
	if err := doc.DataTo(&verification); err != nil {
		return nil, errors.Internal("Failed to parse verification data", err)
	}

	return &verification, nil
}

func (r *firestoreVerificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("phoneVerifications").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Unavailable("Failed to delete verification code", err)
	}
	return nil
}
