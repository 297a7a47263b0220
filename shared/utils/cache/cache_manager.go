package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"ultrabms-backend/shared/config"
)

// CacheManager is the Redis fast-path in front of the revocation ledger.
// The database row stays authoritative; a cache miss always falls through
// to the database, so a Redis outage only costs latency, never correctness.
type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

var globalCacheManager *CacheManager

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{
		client: client,
		ctx:    ctx,
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return nil
}

// GetCacheManager returns the global cache manager instance, nil when Redis
// is unavailable
func GetCacheManager() *CacheManager {
	return globalCacheManager
}

// GenerateRevocationKey generates the cache key for a revoked token hash
func GenerateRevocationKey(tokenHash string) string {
	return fmt.Sprintf("revoked:%s", tokenHash)
}

// SetRevoked marks a token hash revoked until its natural expiry. Entries
// self-expire, so the cache never needs a prune sweep of its own.
func (cm *CacheManager) SetRevoked(tokenHash, reason string, expiresAt time.Time) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	key := GenerateRevocationKey(tokenHash)
	if err := cm.client.Set(cm.ctx, key, reason, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set revocation cache: %v", err)
	}

	return nil
}

// IsRevoked checks the fast-path for a token hash. The second return value
// reports whether the answer is usable; false means fall through to the
// database.
func (cm *CacheManager) IsRevoked(tokenHash string) (bool, bool) {
	if cm == nil || cm.client == nil {
		return false, false
	}

	key := GenerateRevocationKey(tokenHash)
	_, err := cm.client.Get(cm.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, false
		}
		log.Printf("❌ Revocation cache error: %v", err)
		return false, false
	}

	return true, true
}
