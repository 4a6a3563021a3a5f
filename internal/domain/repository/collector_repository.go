package repository

import (
	"context"

	"trashlink/internal/domain/entity"
)

type CollectorRepository interface {
	Create(ctx context.Context, profile *entity.CollectorProfile) error
	GetByUserID(ctx context.Context, userID string) (*entity.CollectorProfile, error)
	Update(ctx context.Context, profile *entity.CollectorProfile) error
	ListAvailable(ctx context.Context, limit, offset int) ([]*entity.CollectorProfile, int64, error)
}
