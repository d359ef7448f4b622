package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const issuanceLockKey = "code_issuance_lock"

// Redis holds the issuance mutex. Code issuance reads the full issued set
// and then writes a batch; two concurrent issuances could both observe the
// same free codes, so the whole operation runs under this lock.
type Redis struct {
	Client  *redis.Client
	lockTTL time.Duration
}

func NewRedis(client *redis.Client, lockTTL time.Duration) *Redis {
	return &Redis{Client: client, lockTTL: lockTTL}
}

// AcquireIssuanceLock takes the global issuance mutex on behalf of owner
// (the submission being issued). The TTL bounds how long a crashed issuer
// can hold the lock.
func (r *Redis) AcquireIssuanceLock(ctx context.Context, owner string) (bool, error) {
	return r.Client.SetNX(ctx, issuanceLockKey, owner, r.lockTTL).Result()
}

// ReleaseIssuanceLock releases the mutex only if owner still holds it, so a
// slow issuer cannot drop a lock that expired and was re-acquired.
func (r *Redis) ReleaseIssuanceLock(ctx context.Context, owner string) error {
	val, err := r.Client.Get(ctx, issuanceLockKey).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == owner {
		_, err := r.Client.Del(ctx, issuanceLockKey).Result()
		return err
	}
	return nil
}
