//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"errors"
	"fmt"
)

// ErrInitializationFailure is matched by errors returned when the tool
// servers of an agent could not be connected.
var ErrInitializationFailure = errors.New("failed to initialize tool connections")

// InitializationError reports the server registration that failed.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInitializationFailure, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInitializationFailure.
func (e *InitializationError) Is(target error) bool {
	return target == ErrInitializationFailure
}
