package repositories

import (
	"context"

	"roomgate/internal/core/ports"
	"roomgate/internal/infrastructure/repositories/memory"
	redisrepo "roomgate/internal/infrastructure/repositories/redis"
	"roomgate/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateRoomRegistry() ports.RoomRegistry {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisRoomRegistry(f.redisClient)
	}
	return memory.NewMemoryRoomRegistry()
}

func (f *RepositoryFactory) CreatePendingQueue() ports.PendingQueue {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisPendingQueue(f.redisClient)
	}
	return memory.NewMemoryPendingQueue()
}

func (f *RepositoryFactory) CreateHandoffSlot() ports.HandoffSlot {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisHandoffSlot(f.redisClient)
	}
	return memory.NewMemoryHandoffSlot()
}

func (f *RepositoryFactory) CreateSnapshotStore() ports.SnapshotStore {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisSnapshotStore(f.redisClient)
	}
	return memory.NewMemorySnapshotStore()
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
