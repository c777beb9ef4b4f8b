package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/carehome-dev/care-shift/backend/internal/lock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*lock.Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return lock.New(rdb, "care_shift"), mr
}

func TestAcquire_HoldsKeyWithTTL(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "generate_inst-1", time.Minute)
	require.NoError(t, err)

	assert.True(t, mr.Exists("care_shift_generate_inst-1"))
	assert.Equal(t, time.Minute, mr.TTL("care_shift_generate_inst-1"))

	// WHEN someone else asks for the same name
	_, err = l.Acquire(ctx, "generate_inst-1", time.Minute)
	// THEN it is held
	assert.ErrorIs(t, err, lock.ErrHeld)

	// AND other names are independent
	other, err := l.Acquire(ctx, "generate_inst-2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	// WHEN the holder releases
	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("care_shift_generate_inst-1"))

	// THEN the lock can be taken again
	again, err := l.Acquire(ctx, "generate_inst-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestAcquire_ExpiresAfterTTL(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	_, err := l.Acquire(ctx, "generate_inst-1", time.Minute)
	require.NoError(t, err)

	mr.FastForward(time.Minute + time.Second)

	_, err = l.Acquire(ctx, "generate_inst-1", time.Minute)
	assert.NoError(t, err)
}

func TestRelease_LeavesLockTakenOverByAnotherHolder(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	// GIVEN a first holder whose lock expired and was taken by a second one
	first, err := l.Acquire(ctx, "generate_inst-1", time.Minute)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	second, err := l.Acquire(ctx, "generate_inst-1", time.Minute)
	require.NoError(t, err)
	token, err := mr.Get("care_shift_generate_inst-1")
	require.NoError(t, err)

	// WHEN the first holder releases late
	require.NoError(t, first(ctx))

	// THEN the second holder keeps the lock
	current, err := mr.Get("care_shift_generate_inst-1")
	require.NoError(t, err)
	assert.Equal(t, token, current)
	_, err = l.Acquire(ctx, "generate_inst-1", time.Minute)
	assert.ErrorIs(t, err, lock.ErrHeld)

	require.NoError(t, second(ctx))
	assert.False(t, mr.Exists("care_shift_generate_inst-1"))
}
