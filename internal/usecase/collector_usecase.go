package usecase

import (
	"context"
	"time"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/pkg/cache"
	"trashlink/pkg/errors"
)

const collectorCacheTTL = 10 * time.Minute

type CollectorUseCase struct {
	collectorRepo repository.CollectorRepository
	userRepo      repository.UserRepository
	cache         *cache.Cache
}

func NewCollectorUseCase(
	collectorRepo repository.CollectorRepository,
	userRepo repository.UserRepository,
	cache *cache.Cache,
) *CollectorUseCase {
	return &CollectorUseCase{
		collectorRepo: collectorRepo,
		userRepo:      userRepo,
		cache:         cache,
	}
}

type CollectorProfileInput struct {
	Specializations []string `json:"specializations"`
	ServiceRadius   float64  `json:"serviceRadius" validate:"gte=0"`
	Available       bool     `json:"available"`
}

// Onboard creates the collector profile for an account that holds the
// collector role. Creating twice is a conflict, not an upsert.
func (uc *CollectorUseCase) Onboard(ctx context.Context, userID string, input CollectorProfileInput) (*entity.CollectorProfile, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleCollector {
		return nil, errors.Forbidden("Switch to the collector role before onboarding", nil)
	}

	profile := &entity.CollectorProfile{
		UserID:          userID,
		Specializations: input.Specializations,
		ServiceRadius:   input.ServiceRadius,
		Available:       input.Available,
	}

	if err := uc.collectorRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	uc.cache.SetWithTTL("collector:"+userID, profile, collectorCacheTTL)
	return profile, nil
}

// GetProfile reads a collector profile, cache first. Collector data changes
// rarely and tolerates short staleness.
func (uc *CollectorUseCase) GetProfile(ctx context.Context, userID string) (*entity.CollectorProfile, error) {
	if cached, ok := uc.cache.Get("collector:" + userID); ok {
		if profile, ok := cached.(*entity.CollectorProfile); ok {
			return profile, nil
		}
	}

	profile, err := uc.collectorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	uc.cache.SetWithTTL("collector:"+userID, profile, collectorCacheTTL)
	return profile, nil
}

func (uc *CollectorUseCase) UpdateProfile(ctx context.Context, userID string, input CollectorProfileInput) (*entity.CollectorProfile, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	profile, err := uc.collectorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Specializations = input.Specializations
	profile.ServiceRadius = input.ServiceRadius
	profile.Available = input.Available

	if err := uc.collectorRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	uc.cache.InvalidateMatching(userID)
	uc.cache.SetWithTTL("collector:"+userID, profile, collectorCacheTTL)
	return profile, nil
}

// SetAvailability flips the collector on or off duty without touching the
// rest of the profile.
func (uc *CollectorUseCase) SetAvailability(ctx context.Context, userID string, available bool) (*entity.CollectorProfile, error) {
	profile, err := uc.collectorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Available = available
	if err := uc.collectorRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	uc.cache.InvalidateMatching(userID)
	uc.cache.SetWithTTL("collector:"+userID, profile, collectorCacheTTL)
	return profile, nil
}

// UpdateLocation records the collector's last reported position.
func (uc *CollectorUseCase) UpdateLocation(ctx context.Context, userID string, lat, lng float64) error {
	profile, err := uc.collectorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	profile.LastLat = &lat
	profile.LastLng = &lng
	if err := uc.collectorRepo.Update(ctx, profile); err != nil {
		return err
	}

	uc.cache.Invalidate("collector:" + userID)
	return nil
}

func (uc *CollectorUseCase) ListAvailable(ctx context.Context, limit, offset int) ([]*entity.CollectorProfile, int64, error) {
	boundedCtx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	return uc.collectorRepo.ListAvailable(boundedCtx, limit, offset)
}
