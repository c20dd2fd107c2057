package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aisgo/posibel/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLockAcquireRelease(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	opt := LockOption{TTL: 200 * time.Millisecond, RetryTimes: 1, RetryDelay: 10 * time.Millisecond}
	lock := client.NewLock("resource", opt)
	if err := lock.Acquire(ctx); err != nil {
		t.Fatalf("acquire lock: %v", err)
	}

	lock2 := client.NewLock("resource", opt)
	if err := lock2.Acquire(ctx); !errors.Is(err, ErrLockFailed) {
		t.Fatalf("expected ErrLockFailed, got: %v", err)
	}

	// 非持有者不能释放
	if err := lock2.Release(ctx); !errors.Is(err, ErrUnlockFailed) {
		t.Fatalf("expected ErrUnlockFailed, got: %v", err)
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release lock: %v", err)
	}

	if err := lock2.Acquire(ctx); err != nil {
		t.Fatalf("acquire lock after release: %v", err)
	}
}

func TestLockExpires(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	lock := client.NewLock("ttl", LockOption{TTL: time.Second, RetryTimes: 1})
	if err := lock.Acquire(ctx); err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	server.FastForward(2 * time.Second)

	exists, err := client.Exists(ctx, lock.key)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists != 0 {
		t.Fatalf("expected lock to expire")
	}
}

func TestLockerHold(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if NewLocker(nil) != nil {
		t.Fatalf("nil client must yield nil locker")
	}

	locker := NewLocker(client, LockOption{TTL: time.Second, RetryTimes: 2, RetryDelay: 5 * time.Millisecond})
	before := testutil.ToFloat64(metrics.LockAcquireTotal.WithLabelValues("email", "false"))

	release, err := locker.Hold(ctx, "email", "a@b.io")
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	if _, err := locker.Hold(ctx, "email", "a@b.io"); !errors.Is(err, ErrLockFailed) {
		t.Fatalf("expected contention, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.LockAcquireTotal.WithLabelValues("email", "false")); got != before+1 {
		t.Fatalf("expected failed acquisition to be counted, got %v", got)
	}

	// 不同 key 互不影响
	other, err := locker.Hold(ctx, "email", "c@d.io")
	if err != nil {
		t.Fatalf("hold other key: %v", err)
	}
	_ = other(ctx)

	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	release, err = locker.Hold(ctx, "email", "a@b.io")
	if err != nil {
		t.Fatalf("hold after release: %v", err)
	}
	_ = release(ctx)
}
