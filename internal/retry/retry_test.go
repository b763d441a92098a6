//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, Interval: time.Millisecond}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, p.Interval)
}

func TestDo_SucceedsFirstTime(t *testing.T) {
	calls := 0
	res, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 1, calls)
}

func TestDo_FailsTwiceThenSucceeds(t *testing.T) {
	var retries []int
	p := fastPolicy(3)
	p.OnRetry = func(err error, attempt int, wait time.Duration) {
		retries = append(retries, attempt)
		assert.Equal(t, time.Millisecond, wait)
	}
	calls := 0
	res, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("503 service unavailable")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	calls := 0
	last := errors.New("third failure")
	_, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) (int, error) {
		calls++
		if calls == 3 {
			return 0, last
		}
		return 0, errors.New("earlier failure")
	})
	assert.Same(t, last, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	cause := errors.New("bad request")
	_, err := Do(context.Background(), fastPolicy(5), func(ctx context.Context) (int, error) {
		calls++
		return 0, Permanent(cause)
	})
	assert.Same(t, cause, err)
	assert.Equal(t, 1, calls)
}

func TestDo_PermanentOnLastAttemptIsUnwrapped(t *testing.T) {
	cause := errors.New("bad request")
	_, err := Do(context.Background(), fastPolicy(1), func(ctx context.Context) (int, error) {
		return 0, Permanent(cause)
	})
	assert.Same(t, cause, err)
}

func TestDo_SingleAttemptForNonPositiveMax(t *testing.T) {
	for _, max := range []int{0, -2} {
		calls := 0
		_, err := Do(context.Background(), fastPolicy(max), func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("fail")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls, "MaxAttempts=%d", max)
	}
}

func TestDo_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, Interval: time.Hour}
	p.OnRetry = func(error, int, time.Duration) { cancel() }

	calls := 0
	_, err := Do(ctx, p, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
