//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package retry runs an operation again after a fixed pause when it fails.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rodrigobaron/mcp-agent/log"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultInterval    = 500 * time.Millisecond
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, the first one included.
	// Values below 1 mean a single attempt.
	MaxAttempts int
	// Interval is the constant pause between two attempts.
	Interval time.Duration
	// OnRetry, when set, is called before each pause with the error of the
	// failed attempt, its 1-based number and the pause length.
	OnRetry func(err error, attempt int, wait time.Duration)
}

// DefaultPolicy returns three attempts spaced by half a second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
	}
}

// Permanent marks err as not retryable. Do returns the wrapped error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do calls op until it succeeds, returns a permanent error or the attempts
// are used up. The error of the last attempt is returned unchanged. If ctx is
// done while waiting, the context error is returned.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	attempt := 0
	res, err := backoff.Retry(ctx,
		func() (T, error) {
			attempt++
			return op(ctx)
		},
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Interval)),
		backoff.WithMaxTries(uint(maxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Infof("attempt %d/%d failed, retrying in %s: %v", attempt, maxAttempts, wait, err)
			if p.OnRetry != nil {
				p.OnRetry(err, attempt, wait)
			}
		}),
	)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return res, err
}
