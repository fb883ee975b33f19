package locks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockTimeout occurs when lock acquisition times out
	ErrLockTimeout = errors.New("timeout acquiring lock")
	// ErrLockNotHeld occurs when trying to release a lock not held by this instance
	ErrLockNotHeld = errors.New("lock not held by this instance")
	// ErrLockAlreadyHeld occurs when lock is already held by another instance
	ErrLockAlreadyHeld = errors.New("lock already held by another instance")
)

const (
	// DefaultLockTTL bounds how long a crashed holder can block a table.
	DefaultLockTTL = 30 * time.Second
	// DefaultAcquireTimeout is the default timeout for acquiring locks
	DefaultAcquireTimeout = 5 * time.Second
	// DefaultRetryAttempts is the default number of retry attempts
	DefaultRetryAttempts = 3
)

// Manager hands out per-table distributed locks backed by Redis. The
// session coordinator takes a table's lock before every
// load-modify-save of session state.
type Manager struct {
	redis      *redis.Client
	instanceID string
}

// Lock represents a held per-table lock.
type Lock struct {
	key        string
	value      string
	manager    *Manager
	ttl        time.Duration
	acquiredAt time.Time
}

// NewManager creates a lock manager with its own instance identity.
func NewManager(redisClient *redis.Client) *Manager {
	return &Manager{
		redis:      redisClient,
		instanceID: uuid.New().String(),
	}
}

// Acquire takes the named lock, retrying with exponential backoff
// until DefaultAcquireTimeout runs out. Acquisition is atomic via
// SET NX EX.
func (m *Manager) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if ttl == 0 {
		ttl = DefaultLockTTL
	}

	acquireCtx, cancel := context.WithTimeout(ctx, DefaultAcquireTimeout)
	defer cancel()

	lockValue := fmt.Sprintf("%s:%s", m.instanceID, uuid.New().String())
	lockKey := fmt.Sprintf("lock:%s", key)

	var lastErr error
	for attempt := 0; attempt < DefaultRetryAttempts; attempt++ {
		select {
		case <-acquireCtx.Done():
			return nil, ErrLockTimeout
		default:
		}

		acquired, err := m.redis.SetNX(acquireCtx, lockKey, lockValue, ttl).Result()
		if err != nil {
			lastErr = fmt.Errorf("redis error: %w", err)
			log.Printf("[LOCK] Redis error on attempt %d/%d for lock %s: %v", attempt+1, DefaultRetryAttempts, lockKey, err)
			time.Sleep(backoff(attempt))
			continue
		}

		if acquired {
			return &Lock{
				key:        lockKey,
				value:      lockValue,
				manager:    m,
				ttl:        ttl,
				acquiredAt: time.Now(),
			}, nil
		}

		lastErr = ErrLockAlreadyHeld
		select {
		case <-acquireCtx.Done():
			return nil, ErrLockTimeout
		case <-time.After(backoff(attempt)):
		}
	}

	log.Printf("[LOCK] Failed to acquire lock after %d attempts: %s", DefaultRetryAttempts, lockKey)
	if lastErr == nil {
		lastErr = ErrLockTimeout
	}
	return nil, lastErr
}

// Release frees the lock if this instance still holds it. A Lua
// script guards against deleting a lock that expired and was
// re-acquired elsewhere.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil {
		return ErrLockNotHeld
	}

	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.manager.redis, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == int64(0) {
		log.Printf("[LOCK] Lock %s was not held by this instance (may have expired)", l.key)
		return ErrLockNotHeld
	}
	return nil
}

// Extend pushes out the lock's expiry if this instance still holds it.
func (l *Lock) Extend(ctx context.Context, additionalTTL time.Duration) error {
	if l == nil {
		return ErrLockNotHeld
	}

	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("expire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.manager.redis, []string{l.key}, l.value, int(additionalTTL.Seconds())).Result()
	if err != nil {
		return fmt.Errorf("failed to extend lock: %w", err)
	}
	if result == int64(0) {
		return ErrLockNotHeld
	}

	l.ttl += additionalTTL
	return nil
}

// backoff: 500ms, 1s, 2s, capped at 2s.
func backoff(attempt int) time.Duration {
	d := time.Duration(500*(1<<attempt)) * time.Millisecond
	if d > 2*time.Second {
		d = 2 * time.Second
	}
	return d
}
