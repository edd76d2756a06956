package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLocalGuardIsExclusive(t *testing.T) {
	g := NewLocalGuard()
	ctx := context.Background()

	release, ok, err := g.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := g.TryAcquire(ctx); ok {
		t.Fatal("second acquire must fail while held")
	}
	if !g.Running() {
		t.Fatal("expected Running while held")
	}

	release()
	if _, ok, _ := g.TryAcquire(ctx); !ok {
		t.Fatal("acquire after release must succeed")
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisGuardIsExclusiveAcrossInstances(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	first := NewRedisGuard(client, "automation", time.Minute)
	second := NewRedisGuard(client, "automation", time.Minute)

	release, ok, err := first.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if _, ok, err := second.TryAcquire(ctx); err != nil || ok {
		t.Fatalf("second acquire: ok=%v err=%v, want held", ok, err)
	}
	if !mr.Exists("lock:automation") {
		t.Fatal("expected lock key in redis")
	}

	release()
	if mr.Exists("lock:automation") {
		t.Fatal("expected lock key removed on release")
	}
	if _, ok, _ := second.TryAcquire(ctx); !ok {
		t.Fatal("acquire after release must succeed")
	}
}

func TestRedisGuardReleaseDoesNotStealExpiredLock(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	guard := NewRedisGuard(client, "automation", time.Second)

	staleRelease, ok, _ := guard.TryAcquire(ctx)
	if !ok {
		t.Fatal("expected first acquire")
	}
	mr.FastForward(2 * time.Second)

	_, ok, _ = guard.TryAcquire(ctx)
	if !ok {
		t.Fatal("expected acquire after expiry")
	}

	staleRelease()
	if !mr.Exists("lock:automation") {
		t.Fatal("stale holder must not delete the new holder's lock")
	}
}

func TestRedisGuardReportsBackendErrors(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	if _, _, err := NewRedisGuard(client, "automation", time.Minute).TryAcquire(context.Background()); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
