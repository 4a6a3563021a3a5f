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

type firestoreRequestRepository struct {
	client *firestore.Client
}

func NewFirestoreRequestRepository(client *firestore.Client) repository.RequestRepository {
	return &firestoreRequestRepository{
		client: client,
	}
}

func (r *firestoreRequestRepository) Create(ctx context.Context, request *entity.Request) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}

	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	_, err := r.client.Collection("requests").Doc(request.ID).Set(ctx, request)
	if err != nil {
		if status.Code(err) == codes.FailedPrecondition {
			return errors.ProfileMissing("Customer profile does not exist yet", err)
		}
		return errors.Unavailable("Failed to create request", err)
	}

	return nil
}

func (r *firestoreRequestRepository) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	doc, err := r.client.Collection("requests").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Request", err)
		}
		return nil, errors.Unavailable("Failed to get request", err)
	}

	var request entity.Request
	if err := doc.DataTo(&request); err != nil {
		return nil, errors.Internal("Failed to parse request data", err)
	}

	return &request, nil
}

// Accept is the one guarded update in the system: the transaction re-reads the
// row and transitions it only if it is still pending, so of two racing
// collectors exactly one wins and the other sees a conflict.
func (r *firestoreRequestRepository) Accept(ctx context.Context, requestID, collectorID string) (*entity.Request, error) {
	docRef := r.client.Collection("requests").Doc(requestID)

	var accepted entity.Request
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Request", err)
			}
			return errors.Unavailable("Failed to get request", err)
		}

		var request entity.Request
		if err := doc.DataTo(&request); err != nil {
			return errors.Internal("Failed to parse request data", err)
		}

		if request.Status != entity.RequestPending {
			return errors.Conflict("Request is no longer available")
		}

		request.CollectorID = collectorID
		request.Status = entity.RequestMatched
		request.UpdatedAt = time.Now()

		accepted = request
		return tx.Set(docRef, request)
	})
	if err != nil {
		return nil, err
	}

	return &accepted, nil
}

func (r *firestoreRequestRepository) UpdateStatus(ctx context.Context, requestID, newStatus string) (*entity.Request, error) {
	docRef := r.client.Collection("requests").Doc(requestID)

	var updated entity.Request
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Request", err)
			}
			return errors.Unavailable("Failed to get request", err)
		}

		var request entity.Request
		if err := doc.DataTo(&request); err != nil {
			return errors.Internal("Failed to parse request data", err)
		}

		if !entity.CanTransition(request.Status, newStatus) {
			return errors.Conflict("Request cannot move from " + request.Status + " to " + newStatus)
		}

		request.Status = newStatus
		request.UpdatedAt = time.Now()

		updated = request
		return tx.Set(docRef, request)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *firestoreRequestRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Request, int64, error) {
	query := r.client.Collection("requests").
		Where("customerId", "==", customerID).
		OrderBy("createdAt", firestore.Desc)

	return collectRequests(ctx, query, limit, offset)
}

// ListForCollector merges the collector's assigned requests with every
// currently pending one. The two sets cannot overlap: a pending request has no
// collector.
func (r *firestoreRequestRepository) ListForCollector(ctx context.Context, collectorID string, limit, offset int) ([]*entity.Request, int64, error) {
	assigned, _, err := collectRequests(ctx,
		r.client.Collection("requests").Where("collectorId", "==", collectorID), -1, 0)
	if err != nil {
		return nil, 0, err
	}

	pending, _, err := collectRequests(ctx,
		r.client.Collection("requests").Where("status", "==", entity.RequestPending), -1, 0)
	if err != nil {
		return nil, 0, err
	}

	merged := append(assigned, pending...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	total := int64(len(merged))

	start := offset
	if start > len(merged) {
		start = len(merged)
	}
	end := len(merged)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return merged[start:end], total, nil
}

func collectRequests(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.Request, int64, error) {
	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while counting requests: %v", err)
		return nil, 0, errors.Unavailable("Failed to fetch requests", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var requests []*entity.Request

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Unavailable("Failed to iterate requests", err)
		}

		var request entity.Request
		if err := doc.DataTo(&request); err != nil {
			logger.Warn("Skipping malformed request document %s: %v", doc.Ref.ID, err)
			continue
		}
		requests = append(requests, &request)
	}

	return requests, total, nil
}
