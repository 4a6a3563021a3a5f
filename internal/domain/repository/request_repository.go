package repository

import (
	"context"

	"trashlink/internal/domain/entity"
)

type RequestRepository interface {
	Create(ctx context.Context, request *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)

	// Accept atomically transitions a pending request to matched with the
	// given collector. It must fail with a CONFLICT error when the request is
	// no longer pending; exactly one of two racing calls may succeed.
	Accept(ctx context.Context, requestID, collectorID string) (*entity.Request, error)

	UpdateStatus(ctx context.Context, requestID, status string) (*entity.Request, error)

	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Request, int64, error)
	// ListForCollector returns requests assigned to the collector plus all
	// currently pending requests (visibility, not ownership).
	ListForCollector(ctx context.Context, collectorID string, limit, offset int) ([]*entity.Request, int64, error)
}
