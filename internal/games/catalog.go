package games

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meeplemeet/backend/internal/models"
)

const cacheKeyPrefix = "game:"

// Catalog resolves game references with a Redis read-through cache. Catalog
// lookups can be slow relative to how often the same games headline
// activities, so resolved entities are cached with a TTL. Cache failures
// fall through to the repository; they never fail a lookup.
type Catalog struct {
	repo   *Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalog creates a cached game catalog resolver.
func NewCatalog(repo *Repository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{repo: repo, rdb: rdb, ttl: ttl, logger: logger}
}

// GetByID resolves a game, consulting the cache first.
func (c *Catalog) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	key := cacheKeyPrefix + id.String()
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var g models.Game
		if err := json.Unmarshal(raw, &g); err == nil {
			return &g, nil
		}
		c.logger.Warn("corrupt cached game, refetching", zap.String("game_id", id.String()))
	} else if err != redis.Nil {
		c.logger.Debug("game cache read failed", zap.Error(err))
	}

	g, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(g); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Debug("game cache write failed", zap.Error(err))
		}
	}
	return g, nil
}
