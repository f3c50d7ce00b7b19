package stealpool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_StealSkipsSelf(t *testing.T) {
	p, err := New(1, testOptions()...)
	require.NoError(t, err)
	defer p.Close()

	// A single-worker pool has no peers to steal from; steal() must
	// return nil rather than stealing from (or deadlocking against)
	// itself.
	w := p.workers[0]
	assert.Nil(t, w.steal())
}

func TestWorker_BackoffEscalatesAndRecovers(t *testing.T) {
	ladder := backoffLadder{
		yieldUntil:       2,
		shortSleepUntil:  4,
		shortSleep:       time.Microsecond,
		mediumSleepUntil: 6,
		mediumSleep:      time.Microsecond,
		longSleep:        5 * time.Millisecond,
	}
	w := &worker{
		pool:   &Pool{backoffLadder: ladder},
		wakeCh: make(chan struct{}, 1),
	}

	for i := 0; i < 5; i++ {
		w.backoff()
	}
	assert.Equal(t, 5, w.misses)

	// Next call parks on wakeCh/longSleep; send a wake and confirm it
	// returns promptly rather than waiting out longSleep.
	done := make(chan struct{})
	go func() {
		w.backoff()
		close(done)
	}()
	time.Sleep(time.Millisecond)
	select {
	case w.wakeCh <- struct{}{}:
	default:
		t.Fatal("worker wasn't parked waiting on wakeCh")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("backoff did not return promptly after wake")
	}
}

func TestGoroutineID_DistinctAcrossGoroutines(t *testing.T) {
	a := goroutineID()
	ch := make(chan uint64, 1)
	go func() {
		ch <- goroutineID()
	}()
	b := <-ch
	assert.NotEqual(t, a, b)
	assert.NotZero(t, a)
	assert.NotZero(t, b)
}

func TestPool_CurrentWorkerFalseOutsideWorker(t *testing.T) {
	p, err := New(1, testOptions()...)
	require.NoError(t, err)
	defer p.Close()

	_, ok := p.currentWorker()
	assert.False(t, ok)
}

func TestPool_CurrentWorkerTrueInsideWorker(t *testing.T) {
	p, err := New(1, testOptions()...)
	require.NoError(t, err)
	defer p.Close()

	f, err := SubmitValue(p, func() (bool, error) {
		_, ok := p.currentWorker()
		return ok, nil
	})
	require.NoError(t, err)

	ok, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
