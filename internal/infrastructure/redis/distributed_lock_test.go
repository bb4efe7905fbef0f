package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-reservation/internal/config"
)

func TestLockManager_AcquireLock(t *testing.T) {
	client, err := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skip("Redis not available")
	}
	defer client.Close()

	ctx := context.Background()
	manager := NewLockManager(client)

	t.Run("ロックを取得できる", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test:hotel-1", 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, lock)
		defer lock.Release(ctx)
	})

	t.Run("同じキーのロックは取得できない", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test:hotel-2", 5*time.Second)
		require.NoError(t, err)
		defer lock1.Release(ctx)

		lock2, err := manager.AcquireLock(ctx, "test:hotel-2", 5*time.Second)
		assert.ErrorIs(t, err, ErrLockNotAcquired)
		assert.Nil(t, lock2)
	})

	t.Run("解放後は再取得できる", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test:hotel-3", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, lock1.Release(ctx))

		lock2, err := manager.AcquireLock(ctx, "test:hotel-3", 5*time.Second)
		require.NoError(t, err)
		defer lock2.Release(ctx)
	})

	t.Run("リトライで取得できる", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test:hotel-4", 5*time.Second)
		require.NoError(t, err)

		go func() {
			time.Sleep(150 * time.Millisecond)
			lock1.Release(ctx)
		}()

		lock2, err := manager.AcquireLockWithRetry(ctx, "test:hotel-4", 5*time.Second, 10, 100*time.Millisecond)
		require.NoError(t, err)
		defer lock2.Release(ctx)
	})

	t.Run("リトライ回数を超えると失敗する", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test:hotel-5", 5*time.Second)
		require.NoError(t, err)
		defer lock1.Release(ctx)

		lock2, err := manager.AcquireLockWithRetry(ctx, "test:hotel-5", 5*time.Second, 3, 10*time.Millisecond)
		assert.ErrorIs(t, err, ErrLockNotAcquired)
		assert.Nil(t, lock2)
	})

	t.Run("解放後は延長できない", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test:hotel-extend", time.Second)
		require.NoError(t, err)
		require.NoError(t, lock.Extend(ctx, 5*time.Second))
		require.NoError(t, lock.Release(ctx))

		assert.ErrorIs(t, lock.Extend(ctx, 5*time.Second), ErrLockNotOwned)
		assert.ErrorIs(t, lock.Release(ctx), ErrLockNotOwned)
	})
}
