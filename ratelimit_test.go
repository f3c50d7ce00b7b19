package stealpool

import (
	"context"
	"testing"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRateLimiter_RejectsOverBudget(t *testing.T) {
	limiter := catrate.NewLimiter(map[time.Duration]int{
		time.Minute: 1,
	})
	p, err := New(2, append(testOptions(), WithRateLimiter(limiter, nil))...)
	require.NoError(t, err)
	defer p.Close()

	f, err := SubmitValue(p, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	_, err = f.Get(context.Background())
	require.NoError(t, err)

	_, err = SubmitValue(p, func() (int, error) { return 2, nil })
	require.Error(t, err)
	var rateErr *RateLimitedError
	require.ErrorAs(t, err, &rateErr)
}

func TestWithRateLimiter_SeparateCategoriesIndependent(t *testing.T) {
	limiter := catrate.NewLimiter(map[time.Duration]int{
		time.Minute: 1,
	})
	var category string
	p, err := New(2, append(testOptions(), WithRateLimiter(limiter, func() any { return category }))...)
	require.NoError(t, err)
	defer p.Close()

	category = "a"
	f, err := SubmitValue(p, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	_, err = f.Get(context.Background())
	require.NoError(t, err)

	category = "b"
	_, err = SubmitValue(p, func() (int, error) { return 2, nil })
	assert.NoError(t, err)

	category = "a"
	_, err = SubmitValue(p, func() (int, error) { return 3, nil })
	assert.Error(t, err)
}
