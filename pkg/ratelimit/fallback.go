package ratelimit

import (
	"context"
	"time"

	"github.com/Payphone-Digital/taskflow/pkg/circuit"
	"go.uber.org/zap"
)

// FallbackStore sends requests to primary while its breaker is closed and to
// fallback otherwise. Errors from primary are never returned to the caller.
type FallbackStore struct {
	primary    Store
	fallback   Store
	breaker    *circuit.Breaker
	logger     *zap.Logger
	onFallback func()
}

// NewFallbackStore wires a primary store behind breaker. onFallback, if set, runs
// each time a request is served by the fallback store.
func NewFallbackStore(primary, fallback Store, breaker *circuit.Breaker, logger *zap.Logger, onFallback func()) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{
		primary:    primary,
		fallback:   fallback,
		breaker:    breaker,
		logger:     logger,
		onFallback: onFallback,
	}
}

func (s *FallbackStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if err := s.breaker.Allow(); err == nil {
		res, err := s.primary.Allow(ctx, key, limit, window)
		s.breaker.Record(err)
		if err == nil {
			return res, nil
		}
		s.logger.Warn("Primary rate limit store failed, using fallback",
			zap.String("breaker", s.breaker.Name()),
			zap.Error(err),
		)
	}

	if s.onFallback != nil {
		s.onFallback()
	}
	return s.fallback.Allow(ctx, key, limit, window)
}
