package stealpool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_GetAfterSettle(t *testing.T) {
	f := newFuture[int]()
	f.settle(42, nil)

	v, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFuture_GetPropagatesError(t *testing.T) {
	f := newFuture[int]()
	wantErr := errors.New("boom")
	f.settle(0, wantErr)

	_, err := f.Get(context.Background())
	assert.Equal(t, wantErr, err)
}

func TestFuture_GetBlocksUntilSettle(t *testing.T) {
	f := newFuture[string]()
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.settle("done", nil)
	}()

	v, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestFuture_GetRespectsContextCancellation(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := f.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_SettleTwicePanics(t *testing.T) {
	f := newFuture[int]()
	f.settle(1, nil)
	assert.Panics(t, func() {
		f.settle(2, nil)
	})
}

func TestFuture_Wait(t *testing.T) {
	f := newFuture[int]()
	done := make(chan struct{})
	go func() {
		f.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before settle")
	case <-time.After(5 * time.Millisecond):
	}

	f.settle(0, nil)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after settle")
	}
}
