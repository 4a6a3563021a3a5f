package realtime

import (
	"context"

	"trashlink/pkg/logger"
)

type fallbackSubscriber struct {
	primary   Subscriber
	secondary Subscriber
}

// NewFallbackSubscriber prefers live subscriptions and degrades to the
// secondary (typically polling) when the primary cannot establish one.
func NewFallbackSubscriber(primary, secondary Subscriber) Subscriber {
	return &fallbackSubscriber{primary: primary, secondary: secondary}
}

func (s *fallbackSubscriber) Subscribe(ctx context.Context, filter Filter, handler Handler) (CancelFunc, error) {
	cancel, err := s.primary.Subscribe(ctx, filter, handler)
	if err == nil {
		return cancel, nil
	}

	logger.Warn("Live subscription to %s unavailable, polling instead: %v", filter.Collection, err)
	return s.secondary.Subscribe(ctx, filter, handler)
}
