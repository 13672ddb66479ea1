package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

type serviceDurationSource interface {
	GetServiceDuration(ctx context.Context, serviceTypeID uuid.UUID) (int, error)
}

// CachedServiceDurations keeps recently resolved service durations in memory.
// Misses and errors are never cached.
type CachedServiceDurations struct {
	source serviceDurationSource
	cache  *expirable.LRU[uuid.UUID, int]
	logger *zap.Logger
}

func NewCachedServiceDurations(source serviceDurationSource, size int, ttl time.Duration, logger *zap.Logger) *CachedServiceDurations {
	return &CachedServiceDurations{
		source: source,
		cache:  expirable.NewLRU[uuid.UUID, int](size, nil, ttl),
		logger: logger.Named("service_cache"),
	}
}

func (c *CachedServiceDurations) GetServiceDuration(ctx context.Context, serviceTypeID uuid.UUID) (int, error) {
	if minutes, ok := c.cache.Get(serviceTypeID); ok {
		c.logger.Debug("cache hit", zap.String("service_type_id", serviceTypeID.String()))
		return minutes, nil
	}
	minutes, err := c.source.GetServiceDuration(ctx, serviceTypeID)
	if err != nil {
		return 0, err
	}
	c.cache.Add(serviceTypeID, minutes)
	return minutes, nil
}

// Invalidate drops a cached duration after an admin edits the service type.
func (c *CachedServiceDurations) Invalidate(serviceTypeID uuid.UUID) {
	c.cache.Remove(serviceTypeID)
}
