package stealpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalRing_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, 3, 5, 100} {
		_, err := newLocalRing(capacity)
		assert.ErrorIs(t, err, ErrInvalidRingCapacity, "capacity=%d", capacity)
	}
}

func TestLocalRing_PushPopFIFO(t *testing.T) {
	r, err := newLocalRing(4)
	require.NoError(t, err)

	var envs []*envelope
	for i := 0; i < 3; i++ {
		e := &envelope{}
		envs = append(envs, e)
		require.True(t, r.push(e))
	}

	for _, want := range envs {
		got := r.pop()
		require.NotNil(t, got)
		assert.Same(t, want, got)
	}
	assert.Nil(t, r.pop())
}

func TestLocalRing_FullRejectsPush(t *testing.T) {
	r, err := newLocalRing(2)
	require.NoError(t, err)

	require.True(t, r.push(&envelope{}))
	// capacity 2 means only 1 usable slot (one slot always kept empty to
	// disambiguate full from empty).
	assert.False(t, r.push(&envelope{}))
}

func TestLocalRing_EmptyPopStealReturnNil(t *testing.T) {
	r, err := newLocalRing(4)
	require.NoError(t, err)
	assert.Nil(t, r.pop())
	assert.Nil(t, r.steal())
	assert.True(t, r.empty())
	assert.Equal(t, 0, r.length())
}

func TestLocalRing_Steal(t *testing.T) {
	r, err := newLocalRing(4)
	require.NoError(t, err)

	e := &envelope{}
	require.True(t, r.push(e))
	got := r.steal()
	require.NotNil(t, got)
	assert.Same(t, e, got)
	assert.Nil(t, r.steal())
}

// TestLocalRing_ConcurrentPopAndSteal exercises the CAS-on-both race on
// head: owner pop() and a concurrent steal() must never both return the
// same envelope.
func TestLocalRing_ConcurrentPopAndSteal(t *testing.T) {
	const n = 2000
	r, err := newLocalRing(4096)
	require.NoError(t, err)

	envs := make([]*envelope, n)
	for i := range envs {
		envs[i] = &envelope{}
		require.True(t, r.push(envs[i]))
	}

	seen := make(chan *envelope, n)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			e := r.pop()
			if e == nil {
				if r.empty() {
					return
				}
				continue
			}
			seen <- e
		}
	}()
	go func() {
		defer wg.Done()
		for {
			e := r.steal()
			if e == nil {
				if r.empty() {
					return
				}
				continue
			}
			seen <- e
		}
	}()
	wg.Wait()
	close(seen)

	unique := make(map[*envelope]struct{}, n)
	count := 0
	for e := range seen {
		_, dup := unique[e]
		assert.False(t, dup, "envelope dequeued twice")
		unique[e] = struct{}{}
		count++
	}
	assert.Equal(t, n, count)
}
