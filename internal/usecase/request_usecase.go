package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/pkg/errors"
	"trashlink/pkg/logger"
)

// Budget for list endpoints. Firestore queries that run longer than this are
// abandoned and surfaced as timeouts rather than hanging the page.
const listTimeout = 15 * time.Second

type RequestUseCase struct {
	requestRepo   repository.RequestRepository
	userRepo      repository.UserRepository
	collectorRepo repository.CollectorRepository
	authUseCase   *AuthUseCase
	rateLimiter   RateLimiter
	pusher        Pusher
}

func NewRequestUseCase(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	collectorRepo repository.CollectorRepository,
	authUseCase *AuthUseCase,
	rateLimiter RateLimiter,
	pusher Pusher,
) *RequestUseCase {
	return &RequestUseCase{
		requestRepo:   requestRepo,
		userRepo:      userRepo,
		collectorRepo: collectorRepo,
		authUseCase:   authUseCase,
		rateLimiter:   rateLimiter,
		pusher:        pusher,
	}
}

type CreateRequestInput struct {
	Category          string     `json:"category" validate:"required"`
	Description       string     `json:"description"`
	Address           string     `json:"address" validate:"required"`
	Lat               float64    `json:"lat" validate:"latitude"`
	Lng               float64    `json:"lng" validate:"longitude"`
	ScheduledAt       *time.Time `json:"scheduledAt,omitempty"`
	EstimatedQuantity string     `json:"estimatedQuantity"`
	PhotoURLs         []string   `json:"photoUrls"`
}

// Create posts a new pickup request for the customer. If the write fails
// because the account record is missing, the record is recreated from the
// identity provider and the write retried once.
func (uc *RequestUseCase) Create(ctx context.Context, customerID string, input CreateRequestInput) (*entity.Request, error) {
	if customerID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(customerID, "create_request"); !allowed {
		return nil, errors.TooManyRequests("Too many requests created, try again later", wait)
	}

	if strings.TrimSpace(input.Category) == "" {
		return nil, errors.BadRequest("Category is required", nil)
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, errors.BadRequest("Pickup address is required", nil)
	}
	if len(input.PhotoURLs) > entity.MaxRequestPhotos {
		return nil, errors.BadRequest("A request can carry at most 5 photos", nil)
	}

	request := &entity.Request{
		CustomerID:        customerID,
		Category:          input.Category,
		Description:       input.Description,
		Address:           input.Address,
		Lat:               input.Lat,
		Lng:               input.Lng,
		Status:            entity.RequestPending,
		ScheduledAt:       input.ScheduledAt,
		EstimatedQuantity: input.EstimatedQuantity,
		PhotoURLs:         input.PhotoURLs,
	}

	err := uc.requestRepo.Create(ctx, request)
	if errors.Is(err, "PROFILE_MISSING") {
		logger.Warn("Account record missing for %s, recreating before retry", customerID)
		if _, ensureErr := uc.authUseCase.EnsureUserByID(ctx, customerID); ensureErr != nil {
			return nil, ensureErr
		}
		if err = uc.requestRepo.Create(ctx, request); errors.Is(err, "PROFILE_MISSING") {
			return nil, errors.ProfileMissing("Your profile could not be restored. Sign out and back in, then retry.", err)
		}
	}
	if err != nil {
		return nil, err
	}

	return request, nil
}

// Accept claims a pending request for a collector. The read deliberately
// bypasses any cache: acceptance must race against the live row, and the
// repository transaction guarantees at most one winner.
func (uc *RequestUseCase) Accept(ctx context.Context, collectorID, requestID string) (*entity.Request, error) {
	if collectorID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	collector, err := uc.userRepo.GetByID(ctx, collectorID)
	if err != nil {
		return nil, err
	}
	if collector.Role != entity.RoleCollector {
		return nil, errors.Forbidden("Only collectors can accept requests", nil)
	}

	request, err := uc.requestRepo.Accept(ctx, requestID, collectorID)
	if err != nil {
		return nil, err
	}

	uc.notify(request.CustomerID, "request_update", request)
	return request, nil
}

// UpdateStatus advances a request along its lifecycle. The transition table
// is enforced inside the repository transaction; this layer checks that the
// caller is a participant and keeps the collector's completion counter.
func (uc *RequestUseCase) UpdateStatus(ctx context.Context, userID, requestID, newStatus string) (*entity.Request, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
	if !entity.ValidStatus(newStatus) {
		return nil, errors.BadRequest("Unknown status: "+newStatus, nil)
	}

	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this request", nil)
	}

	// Cancellation is the customer's move; progress updates are the
	// collector's.
	if newStatus == entity.RequestCancelled && userID != request.CustomerID {
		return nil, errors.Forbidden("Only the customer can cancel a request", nil)
	}
	if (newStatus == entity.RequestInProgress || newStatus == entity.RequestCompleted) && userID != request.CollectorID {
		return nil, errors.Forbidden("Only the assigned collector can update progress", nil)
	}

	updated, err := uc.requestRepo.UpdateStatus(ctx, requestID, newStatus)
	if err != nil {
		return nil, err
	}

	if newStatus == entity.RequestCompleted && updated.CollectorID != "" {
		uc.recordCompletion(ctx, updated.CollectorID)
	}

	for _, participant := range updated.ParticipantIDs() {
		if participant != userID {
			uc.notify(participant, "request_update", updated)
		}
	}

	return updated, nil
}

// GetByID returns a request to its customer, its assigned collector, or any
// collector while the request is still pending.
func (uc *RequestUseCase) GetByID(ctx context.Context, userID, requestID string) (*entity.Request, error) {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.HasParticipant(userID) {
		return request, nil
	}
	if request.Status == entity.RequestPending {
		user, err := uc.userRepo.GetByID(ctx, userID)
		if err == nil && user.Role == entity.RoleCollector {
			return request, nil
		}
	}

	return nil, errors.Forbidden("You are not a participant of this request", nil)
}

// List returns the requests relevant to the caller: a customer sees their own
// requests, a collector sees assigned ones plus the open pool.
func (uc *RequestUseCase) List(ctx context.Context, userID string, limit, offset int) ([]*entity.Request, int64, error) {
	if userID == "" {
		return nil, 0, errors.Unauthorized("Not authenticated", nil)
	}

	boundedCtx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	user, err := uc.userRepo.GetByID(boundedCtx, userID)
	if err != nil {
		return nil, 0, err
	}

	var requests []*entity.Request
	var total int64
	if user.Role == entity.RoleCollector {
		requests, total, err = uc.requestRepo.ListForCollector(boundedCtx, userID, limit, offset)
	} else {
		requests, total, err = uc.requestRepo.ListByCustomer(boundedCtx, userID, limit, offset)
	}
	if err != nil {
		if boundedCtx.Err() == context.DeadlineExceeded {
			return nil, 0, errors.Timeout("Request list timed out", err)
		}
		return nil, 0, err
	}

	return requests, total, nil
}

// recordCompletion bumps the collector's lifetime job counter. Best effort:
// the status change already committed, a counter miss is only logged.
func (uc *RequestUseCase) recordCompletion(ctx context.Context, collectorID string) {
	profile, err := uc.collectorRepo.GetByUserID(ctx, collectorID)
	if err != nil {
		logger.Warn("Skipping completion counter for %s: %v", collectorID, err)
		return
	}

	profile.CompletedJobs++
	if err := uc.collectorRepo.Update(ctx, profile); err != nil {
		logger.Warn("Failed to bump completion counter for %s: %v", collectorID, err)
	}
}

func (uc *RequestUseCase) notify(userID, eventType string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		logger.Error("Failed to marshal %s push: %v", eventType, err)
		return
	}
	uc.pusher.SendToUser(userID, message)
}
