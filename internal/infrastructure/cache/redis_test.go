package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_Success(t *testing.T) {
	// Start in-memory Redis
	s := miniredis.RunT(t)
	defer s.Close()

	// Use a non-zero DB to verify it's set
	c, err := OpenRedis(s.Addr(), 2)
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	// Check the client actually works and uses the right DB
	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := c.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	v, err := c.Get(ctx, "k").Result()
	if err != nil {
		t.Fatalf("GET err: %v", err)
	}
	if v != "v" {
		t.Fatalf("GET value = %q, want %q", v, "v")
	}
}

func TestOpenRedis_Failure(t *testing.T) {
	// Unresolvable host → Ping should fail immediately (no 5s delay)
	if _, err := OpenRedis("not-a-real-host:6379", 0); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestBatchLock_AcquireRelease(t *testing.T) {
	s := miniredis.RunT(t)
	c, err := OpenRedis(s.Addr(), 0)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	lock := NewBatchLock(c)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "accrue", time.Minute)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if _, err := lock.Acquire(ctx, "accrue", time.Minute); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire err = %v, want ErrLocked", err)
	}
	// other names are independent
	releaseOther, err := lock.Acquire(ctx, "mark-overdue", time.Minute)
	if err != nil {
		t.Fatalf("Acquire other: %v", err)
	}
	releaseOther()

	release()
	if s.Exists("batch-lock:accrue") {
		t.Fatal("lock key still present after release")
	}
	if _, err := lock.Acquire(ctx, "accrue", time.Minute); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
}

func TestBatchLock_ReleaseDoesNotStealFromNewHolder(t *testing.T) {
	s := miniredis.RunT(t)
	c, err := OpenRedis(s.Addr(), 0)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	lock := NewBatchLock(c)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "accrue", time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	s.FastForward(2 * time.Second)
	if _, err := lock.Acquire(ctx, "accrue", time.Minute); err != nil {
		t.Fatalf("Acquire after expiry: %v", err)
	}
	release() // stale token
	if !s.Exists("batch-lock:accrue") {
		t.Fatal("stale release removed the new holder's lock")
	}
}
