package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/homemeal/homemeal-backend/pkg/util"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix       = "session:"
	scanBatch       = 100
	maxWatchRetries = 5
)

// RedisRegistry keeps sessions as JSON values under "session:<token>".
// Each key carries a TTL equal to the timeout, refreshed on every successful Validate,
// so Redis itself evicts abandoned sessions; Sweep only catches keys that lost their TTL.
type RedisRegistry struct {
	client  *redis.Client
	timeout time.Duration
	now     Clock
}

func NewRedisRegistry(client *redis.Client, timeout time.Duration, clock Clock) *RedisRegistry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if clock == nil {
		clock = time.Now
	}
	return &RedisRegistry{client: client, timeout: timeout, now: clock}
}

func key(token string) string {
	return keyPrefix + token
}

func (r *RedisRegistry) Create(ctx context.Context, userID uint, data UserData) (string, error) {
	token, err := util.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	now := r.now()
	payload, err := json.Marshal(&Session{
		Token:        token,
		UserID:       userID,
		UserData:     data,
		CreatedAt:    now,
		LastActivity: now,
	})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	if err := r.client.Set(ctx, key(token), payload, r.timeout).Err(); err != nil {
		logger.Error("Failed to store session in Redis", err, map[string]interface{}{
			"user_id": userID,
		})
		return "", err
	}
	return token, nil
}

func (r *RedisRegistry) Validate(ctx context.Context, token string) (*Session, error) {
	k := key(token)
	var result *Session

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrInvalidSession
		}
		if err != nil {
			return err
		}

		var s Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}

		now := r.now()
		if s.expired(now, r.timeout) {
			if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, k)
				return nil
			}); err != nil {
				return err
			}
			return ErrInvalidSession
		}

		s.LastActivity = now
		payload, err := json.Marshal(&s)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, r.timeout)
			return nil
		}); err != nil {
			return err
		}

		result = &s
		return nil
	}

	if err := r.watch(ctx, k, txf); err != nil {
		return nil, err
	}
	return result, nil
}

// watch runs txf under WATCH k, retrying when another client touched k first.
func (r *RedisRegistry) watch(ctx context.Context, k string, txf func(tx *redis.Tx) error) error {
	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := r.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("session transaction: %w", redis.TxFailedErr)
}

func (r *RedisRegistry) Revoke(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Del(ctx, key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Sweep removes expired entries that Redis has not evicted on its own.
// Each candidate is re-read and deleted under WATCH so a session refreshed
// after the scan survives.
func (r *RedisRegistry) Sweep(ctx context.Context) (int, error) {
	now := r.now()
	removed := 0

	err := r.scan(ctx, func(keys []string) error {
		values, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}
		for i, v := range values {
			raw, ok := v.(string)
			if !ok || !r.stale(raw, now) {
				continue
			}
			deleted, err := r.sweepKey(ctx, keys[i], now)
			if err != nil {
				return err
			}
			if deleted {
				removed++
			}
		}
		return nil
	})
	return removed, err
}

func (r *RedisRegistry) stale(raw string, now time.Time) bool {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return true
	}
	return s.expired(now, r.timeout)
}

func (r *RedisRegistry) sweepKey(ctx context.Context, k string, now time.Time) (bool, error) {
	deleted := false
	err := r.watch(ctx, k, func(tx *redis.Tx) error {
		deleted = false
		raw, err := tx.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if !r.stale(raw, now) {
			return nil
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, k)
			return nil
		}); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

func (r *RedisRegistry) Count(ctx context.Context) (int, error) {
	total := 0
	err := r.scan(ctx, func(keys []string) error {
		total += len(keys)
		return nil
	})
	return total, err
}

func (r *RedisRegistry) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
