// Package cache provides a read-through Redis cache for user summaries.
// Ticket listings resolve every assignee id to a name and email; the
// cache keeps those lookups off the database for hot users. All methods
// degrade silently: a cache miss or an unreachable Redis only means a
// database read.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/domain"
)

const (
	summaryKeyPrefix = "user:summary:"
	summaryTTL       = 10 * time.Minute
)

// UserSummaryCache caches id -> summary mappings.
type UserSummaryCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewUserSummaryCache builds the cache. A nil client disables it.
func NewUserSummaryCache(client *redis.Client, logger *zap.Logger) *UserSummaryCache {
	return &UserSummaryCache{client: client, logger: logger}
}

// Get returns the cached summary for the id, if present.
func (c *UserSummaryCache) Get(ctx context.Context, id string) (domain.UserSummary, bool) {
	if c == nil || c.client == nil {
		return domain.UserSummary{}, false
	}
	raw, err := c.client.Get(ctx, summaryKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("user cache get failed", zap.Error(err))
		}
		return domain.UserSummary{}, false
	}
	var summary domain.UserSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return domain.UserSummary{}, false
	}
	return summary, true
}

// Set stores a summary with the cache TTL.
func (c *UserSummaryCache) Set(ctx context.Context, summary domain.UserSummary) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, summaryKeyPrefix+summary.ID, raw, summaryTTL).Err(); err != nil {
		c.logger.Debug("user cache set failed", zap.Error(err))
	}
}
