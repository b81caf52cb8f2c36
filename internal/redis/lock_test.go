package redisclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/provider-booking/internal/lock"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *Locker) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), ClientOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewLocker(rdb, 5*time.Second, 2*time.Second)
}

func TestLockerRunsAndReleases(t *testing.T) {
	mr, l := newTestClient(t)

	err := l.WithLock(context.Background(), "lock:provider:p1", func(ctx context.Context) error {
		assert.True(t, mr.Exists("lock:provider:p1"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("lock:provider:p1"))
}

func TestLockerSerializesContenders(t *testing.T) {
	_, l := newTestClient(t)

	var inside, overlaps int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), "lock:provider:p1", func(ctx context.Context) error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps)
}

func TestLockerGivesUpAfterWait(t *testing.T) {
	mr, l := newTestClient(t)
	l.wait = 50 * time.Millisecond

	require.NoError(t, mr.Set("lock:provider:p1", "someone-else"))

	err := l.WithLock(context.Background(), "lock:provider:p1", func(ctx context.Context) error {
		t.Fatal("critical section must not run")
		return nil
	})
	assert.True(t, errors.Is(err, lock.ErrNotAcquired))

	v, err := mr.Get("lock:provider:p1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v, "a foreign token must never be released")
}

func TestLockerPropagatesFnError(t *testing.T) {
	mr, l := newTestClient(t)
	boom := errors.New("boom")

	err := l.WithLock(context.Background(), "k", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}
