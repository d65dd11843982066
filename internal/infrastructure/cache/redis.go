package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lakowalski/luxmedhunter/config"
	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
	"github.com/lakowalski/luxmedhunter/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// SessionKeyPrefix namespaces portal sessions in Redis
	SessionKeyPrefix = "luxmedhunter:session:"

	redisTimeout = 5 * time.Second
)

func NewRedisClient(cfg config.SessionCacheConfig, log *logrus.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Successfully connected to Redis")

	return client, nil
}

type redisSessionCache struct {
	client *redis.Client
	log    *logrus.Logger
}

// NewRedisSessionCache stores sessions as JSON strings that expire with the portal token
func NewRedisSessionCache(client *redis.Client, log *logrus.Logger) repository.SessionCache {
	return &redisSessionCache{client: client, log: log}
}

func sessionKey(userID string) string {
	return SessionKeyPrefix + userID
}

func (c *redisSessionCache) Get(ctx context.Context, userID string) (*gateway.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session gateway.Session
	if err := json.Unmarshal(data, &session); err != nil {
		c.log.Warnf("Dropping unreadable cached session for %s: %+v", userID, err)
		_ = c.client.Del(ctx, sessionKey(userID)).Err()
		return nil, nil
	}
	return &session, nil
}

func (c *redisSessionCache) Set(ctx context.Context, session *gateway.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := c.client.Set(ctx, sessionKey(session.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (c *redisSessionCache) Delete(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return c.client.Del(ctx, sessionKey(userID)).Err()
}
