package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcher_DuplicateTriggerIgnored(t *testing.T) {
	d := New(nil, Config{}, zap.NewNop())
	key := Key(uuid.New(), "derivative")

	release := make(chan struct{})
	var runs atomic.Int32
	job := func(ctx context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}

	accepted, err := d.Submit(key, job)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.True(t, d.InFlight(key))

	accepted, err = d.Submit(key, job)
	require.NoError(t, err)
	assert.False(t, accepted)

	close(release)
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.InFlight(key))
}

func TestDispatcher_KeyFreedAfterJob(t *testing.T) {
	d := New(NewMemoryGuard(), Config{}, zap.NewNop())
	key := Key(uuid.New(), "master")

	done := make(chan struct{})
	accepted, err := d.Submit(key, func(ctx context.Context) error {
		close(done)
		return errors.New("provider failed")
	})
	require.NoError(t, err)
	require.True(t, accepted)
	<-done

	assert.Eventually(t, func() bool { return !d.InFlight(key) }, time.Second, 5*time.Millisecond)

	accepted, err = d.Submit(key, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.True(t, accepted)
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_DifferentStagesRunConcurrently(t *testing.T) {
	d := New(nil, Config{}, zap.NewNop())
	taskID := uuid.New()
	release := make(chan struct{})
	block := func(ctx context.Context) error { <-release; return nil }

	a, err := d.Submit(Key(taskID, "master"), block)
	require.NoError(t, err)
	b, err := d.Submit(Key(taskID, "derivative"), block)
	require.NoError(t, err)
	assert.True(t, a)
	assert.True(t, b)

	close(release)
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_JobIsDetachedFromCaller(t *testing.T) {
	d := New(nil, Config{}, zap.NewNop())

	errCh := make(chan error, 1)
	_, err := d.Submit("k", func(ctx context.Context) error {
		errCh <- ctx.Err()
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, <-errCh)
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_JobTimeout(t *testing.T) {
	d := New(nil, Config{JobTimeout: 20 * time.Millisecond}, zap.NewNop())

	errCh := make(chan error, 1)
	_, err := d.Submit("k", func(ctx context.Context) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return ctx.Err()
	})
	require.NoError(t, err)
	assert.ErrorIs(t, <-errCh, context.DeadlineExceeded)
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_PanicReleasesKey(t *testing.T) {
	guard := NewMemoryGuard()
	d := New(guard, Config{}, zap.NewNop())

	_, err := d.Submit("k", func(ctx context.Context) error { panic("boom") })
	require.NoError(t, err)
	require.NoError(t, d.Shutdown(context.Background()))

	acquired, err := guard.Acquire(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestDispatcher_ShutdownRejectsAndTimesOut(t *testing.T) {
	d := New(nil, Config{}, zap.NewNop())
	release := make(chan struct{})
	defer close(release)

	_, err := d.Submit("slow", func(ctx context.Context) error { <-release; return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = d.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = d.Submit("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrShuttingDown)
}

type failingGuard struct{ err error }

func (g failingGuard) Acquire(context.Context, string) (bool, error) { return false, g.err }
func (g failingGuard) Release(context.Context, string) error         { return nil }

func TestDispatcher_GuardError(t *testing.T) {
	guardErr := errors.New("redis unavailable")
	d := New(failingGuard{err: guardErr}, Config{}, zap.NewNop())

	accepted, err := d.Submit("k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, guardErr)
	assert.False(t, accepted)
	assert.False(t, d.InFlight("k"))
	require.NoError(t, d.Shutdown(context.Background()))
}
