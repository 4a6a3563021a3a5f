package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/pkg/errors"
)

type firestoreCollectorRepository struct {
	client *firestore.Client
}

func NewFirestoreCollectorRepository(client *firestore.Client) repository.CollectorRepository {
	return &firestoreCollectorRepository{
		client: client,
	}
}

func (r *firestoreCollectorRepository) Create(ctx context.Context, profile *entity.CollectorProfile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.client.Collection("collectorProfiles").Doc(profile.UserID).Create(ctx, profile)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Collector profile already exists")
		}
		return errors.Unavailable("Failed to create collector profile", err)
	}

	return nil
}

func (r *firestoreCollectorRepository) GetByUserID(ctx context.Context, userID string) (*entity.CollectorProfile, error) {
	doc, err := r.client.Collection("collectorProfiles").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Collector profile", err)
		}
		return nil, errors.Unavailable("Failed to get collector profile", err)
	}

	var profile entity.CollectorProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse collector profile data", err)
	}

	return &profile, nil
}

func (r *firestoreCollectorRepository) Update(ctx context.Context, profile *entity.CollectorProfile) error {
	profile.UpdatedAt = time.Now()

	_, err := r.client.Collection("collectorProfiles").Doc(profile.UserID).Set(ctx, profile)
	if err != nil {
		return errors.Unavailable("Failed to update collector profile", err)
	}

	return nil
}

func (r *firestoreCollectorRepository) ListAvailable(ctx context.Context, limit, offset int) ([]*entity.CollectorProfile, int64, error) {
	query := r.client.Collection("collectorProfiles").Where("available", "==", true)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Unavailable("Failed to count collector profiles", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var profiles []*entity.CollectorProfile

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Unavailable("Failed to iterate collector profiles", err)
		}

		var profile entity.CollectorProfile
		if err := doc.DataTo(&profile); err != nil {
			return nil, 0, errors.Internal("Failed to parse collector profile data", err)
		}
		profiles = append(profiles, &profile)
	}

	return profiles, total, nil
}
