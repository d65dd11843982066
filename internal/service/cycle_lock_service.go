package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// CycleLockKeyPrefix namespaces per-user cycle locks in Redis
	CycleLockKeyPrefix = "luxmedhunter:cycle:"

	// Upper bound of one cycle; the Redis key expires if a holder dies
	defaultCycleLockTTL = 5 * time.Minute

	redisLockTimeout = 5 * time.Second
)

// releaseLockScript deletes the lock only while it still holds our token.
// go-redis switches to EVALSHA after the first call.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// CycleLock serialises hunting cycles of the same user.
// TryLock never waits: ok is false when another holder is running the cycle.
type CycleLock interface {
	TryLock(ctx context.Context, userID string) (unlock func(), ok bool, err error)
}

type localCycleLock struct {
	mu sync.Map // map[string]*sync.Mutex
}

// NewLocalCycleLock guards cycles inside one process only
func NewLocalCycleLock() CycleLock {
	return &localCycleLock{}
}

func (l *localCycleLock) TryLock(_ context.Context, userID string) (func(), bool, error) {
	v, _ := l.mu.LoadOrStore(userID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	if !m.TryLock() {
		return func() {}, false, nil
	}
	return m.Unlock, true, nil
}

type redisCycleLock struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisCycleLock shares cycle locks between hunter processes using the
// session cache Redis instance
func NewRedisCycleLock(client *redis.Client, log *logrus.Logger) CycleLock {
	return &redisCycleLock{client: client, ttl: defaultCycleLockTTL, log: log}
}

func (l *redisCycleLock) TryLock(ctx context.Context, userID string) (func(), bool, error) {
	key := CycleLockKeyPrefix + userID
	token := uuid.NewString()

	opCtx, cancel := context.WithTimeout(ctx, redisLockTimeout)
	defer cancel()

	acquired, err := l.client.SetNX(opCtx, key, token, l.ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("acquire cycle lock for %s: %w", userID, err)
	}
	if !acquired {
		return func() {}, false, nil
	}

	unlock := func() {
		// the cycle context may already be cancelled on shutdown
		relCtx, cancel := context.WithTimeout(context.Background(), redisLockTimeout)
		defer cancel()
		if err := releaseLockScript.Run(relCtx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warnf("Failed to release cycle lock for %s: %+v", userID, err)
		}
	}
	return unlock, true, nil
}
