package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAgendaLocker(client, 5*time.Second), mr
}

func TestWithAgendaLockRunsAndReleases(t *testing.T) {
	locker, mr := newTestLocker(t)
	profID := uuid.New()
	key := "lock:agenda:" + profID.String() + ":2026-09-07"

	ran := false
	err := locker.WithAgendaLock(context.Background(), profID, "2026-09-07", func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists(key), "lock should be held inside the section")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists(key), "lock should be released afterwards")
}

func TestWithAgendaLockHeldByOther(t *testing.T) {
	locker, mr := newTestLocker(t)
	profID := uuid.New()
	key := "lock:agenda:" + profID.String() + ":2026-09-07"

	require.NoError(t, mr.Set(key, "someone-else"))

	err := locker.WithAgendaLock(context.Background(), profID, "2026-09-07", func(ctx context.Context) error {
		t.Fatal("callback must not run when the lock is held")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	// The foreign token must survive: only the owner may release.
	val, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}

func TestWithAgendaLockPropagatesCallbackError(t *testing.T) {
	locker, mr := newTestLocker(t)
	profID := uuid.New()
	key := "lock:agenda:" + profID.String() + ":2026-09-07"

	wantErr := errors.New("booking rejected")
	err := locker.WithAgendaLock(context.Background(), profID, "2026-09-07", func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, mr.Exists(key), "lock must be released on callback failure")
}

func TestWithAgendaLockSeparateAgendas(t *testing.T) {
	locker, _ := newTestLocker(t)
	profA := uuid.New()
	profB := uuid.New()

	err := locker.WithAgendaLock(context.Background(), profA, "2026-09-07", func(ctx context.Context) error {
		// Same day, other professional: independent lock.
		if err := locker.WithAgendaLock(ctx, profB, "2026-09-07", func(ctx context.Context) error {
			return nil
		}); err != nil {
			return err
		}
		// Same professional, other day: independent lock.
		return locker.WithAgendaLock(ctx, profA, "2026-09-08", func(ctx context.Context) error {
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestWithAgendaLockReentryBlocked(t *testing.T) {
	locker, _ := newTestLocker(t)
	profID := uuid.New()

	err := locker.WithAgendaLock(context.Background(), profID, "2026-09-07", func(ctx context.Context) error {
		return locker.WithAgendaLock(ctx, profID, "2026-09-07", func(ctx context.Context) error {
			return nil
		})
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
}
