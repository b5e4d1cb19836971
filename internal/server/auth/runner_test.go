package auth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsResult(t *testing.T) {
	r := NewRunner(2)
	v, err := run(context.Background(), r, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	_, err = run(context.Background(), r, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestRun_NilRunnerInline(t *testing.T) {
	v, err := run(context.Background(), nil, func() (string, error) { return "x", nil })
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestNewRunner_ClampsWorkers(t *testing.T) {
	r := NewRunner(0)
	v, err := run(context.Background(), r, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	r := NewRunner(2)

	var active, peak atomic.Int32
	release := make(chan struct{})
	done := make(chan struct{}, 5)

	for i := 0; i < 5; i++ {
		go func() {
			_, _ = run(context.Background(), r, func() (int, error) {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				<-release
				active.Add(-1)
				return 0, nil
			})
			done <- struct{}{}
		}()
	}

	require.Eventually(t, func() bool { return active.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	for i := 0; i < 5; i++ {
		<-done
	}
	assert.Equal(t, int32(2), peak.Load())
}

func TestRun_CanceledBeforeStartNeverRuns(t *testing.T) {
	r := NewRunner(1)

	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = run(context.Background(), r, func() (int, error) {
			close(started)
			<-hold
			return 0, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	_, err := run(ctx, r, func() (int, error) { ran.Store(true); return 0, nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())

	close(hold)
	require.Eventually(t, func() bool {
		_, err := run(context.Background(), r, func() (int, error) { return 0, nil })
		return err == nil
	}, time.Second, time.Millisecond)
}

func TestRun_CanceledMidwayCompletesInBackground(t *testing.T) {
	r := NewRunner(1)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	proceed := make(chan struct{})
	var finished atomic.Bool

	errc := make(chan error, 1)
	go func() {
		_, err := run(ctx, r, func() (int, error) {
			close(started)
			<-proceed
			finished.Store(true)
			return 1, nil
		})
		errc <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.False(t, finished.Load())

	close(proceed)
	require.Eventually(t, finished.Load, time.Second, time.Millisecond)

	// the slot is released once the computation finishes
	v, err := run(context.Background(), r, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
