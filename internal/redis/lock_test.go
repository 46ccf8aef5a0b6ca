package redisclient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisWindowLocker(client, 5*time.Second), mr
}

func TestWithWindowLockRunsFn(t *testing.T) {
	locker, _ := newTestLocker(t)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	called := false

	err := locker.WithWindowLock(context.Background(), start, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithWindowLockMutualExclusion(t *testing.T) {
	locker, _ := newTestLocker(t)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	err := locker.WithWindowLock(context.Background(), start, func(ctx context.Context) error {
		// A second acquisition of the same window must fail while held.
		inner := locker.WithWindowLock(ctx, start, func(ctx context.Context) error {
			t.Fatal("inner critical section must not run")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})
	require.NoError(t, err)
}

func TestWithWindowLockReleasedAfterFn(t *testing.T) {
	locker, mr := newTestLocker(t)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	require.NoError(t, locker.WithWindowLock(context.Background(), start, func(ctx context.Context) error {
		return nil
	}))

	key := fmt.Sprintf("lock:window:%d", start.Unix())
	assert.False(t, mr.Exists(key), "lock key should be released")

	// And the same window can be locked again.
	require.NoError(t, locker.WithWindowLock(context.Background(), start, func(ctx context.Context) error {
		return nil
	}))
}

func TestDifferentWindowsDoNotContend(t *testing.T) {
	locker, _ := newTestLocker(t)

	a := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	b := a.Add(15 * time.Minute)

	err := locker.WithWindowLock(context.Background(), a, func(ctx context.Context) error {
		return locker.WithWindowLock(ctx, b, func(ctx context.Context) error {
			return nil
		})
	})
	assert.NoError(t, err)
}
