package cache

import (
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewSummaryCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory one. An unreachable Redis is logged, not fatal.
func NewSummaryCache(cfg config.RedisConfig, logger *zap.Logger) SummaryCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled {
		logger.Debug("Redis disabled, using in-memory summary cache")
		return NewInMemorySummaryCache(cfg.SummaryTTL)
	}

	c, err := NewRedisSummaryCache(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, cfg.SummaryTTL)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory summary cache",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemorySummaryCache(cfg.SummaryTTL)
	}

	logger.Info("Using Redis summary cache", zap.String("addr", cfg.Addr()))
	return c
}
