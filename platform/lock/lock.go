// Package lock provides the "already running" guard used around automation
// runs. It is a mutual-exclusion flag, not a fencing mechanism: a holder that
// outlives the TTL can overlap with the next one.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard hands out at most one hold at a time.
type Guard interface {
	// TryAcquire returns ok=false without blocking when someone else holds
	// the guard. release must be called exactly once when ok is true.
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// LocalGuard is an in-process flag.
type LocalGuard struct {
	running atomic.Bool
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{}
}

func (g *LocalGuard) TryAcquire(_ context.Context) (func(), bool, error) {
	if !g.running.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	return func() { g.running.Store(false) }, true, nil
}

// Running reports whether the flag is currently held.
func (g *LocalGuard) Running() bool {
	return g.running.Load()
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisGuard shares the flag across processes with SET NX + TTL. Release
// only deletes the key while this holder still owns it.
type RedisGuard struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, key string, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisGuard{
		client: client,
		key:    "lock:" + key,
		ttl:    ttl,
	}
}

func (g *RedisGuard) TryAcquire(ctx context.Context) (func(), bool, error) {
	owner, err := randomOwner()
	if err != nil {
		return nil, false, err
	}

	acquired, err := g.client.SetNX(ctx, g.key, owner, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", g.key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(releaseCtx, g.client, []string{g.key}, owner).Result()
	}
	return release, true, nil
}

func randomOwner() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
