package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const keyPickupLock = "pickup:lock:%s"

// Deletes the key only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var ErrEmptyLockKey = errors.New("lock key is empty")

// PickupLock serializes scans of one order across scanner devices. The
// conditional status write stays the source of truth; the lock only keeps
// concurrent scanners from racing on the database.
type PickupLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPickupLock(cfg config.Config, client *redis.Client) *PickupLock {
	ttl := cfg.RateLimit.PickupLockTTL
	if client == nil || ttl <= 0 {
		return &PickupLock{}
	}
	return &PickupLock{client: client, ttl: ttl}
}

func (p *PickupLock) Enabled() bool {
	return p != nil && p.client != nil
}

// Acquire returns a release func. ok is false when another scanner holds
// the order. A disabled lock always succeeds with a no-op release.
func (p *PickupLock) Acquire(ctx context.Context, orderID string) (release func(), ok bool, err error) {
	release = func() {}
	if !p.Enabled() {
		return release, true, nil
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return release, false, ErrEmptyLockKey
	}

	key := PickupLockKey(orderID)
	token := uuid.NewString()
	ok, err = p.client.SetNX(ctx, key, token, p.ttl).Result()
	if err != nil || !ok {
		return release, false, err
	}
	return func() {
		_ = releaseScript.Run(context.WithoutCancel(ctx), p.client, []string{key}, token).Err()
	}, true, nil
}

func PickupLockKey(orderID string) string {
	return fmt.Sprintf(keyPickupLock, strings.TrimSpace(orderID))
}
