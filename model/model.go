//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package model provides interfaces for working with LLMs.
package model

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the provider answered without any choice.
var ErrEmptyResponse = errors.New("model returned no choices")

// Model is the interface for all language models.
//
// A call is atomic: the provider is asked for one complete assistant turn and
// the full response is returned at once. Transport and API failures are
// returned as errors so that callers can decide whether to retry them.
type Model interface {
	// GenerateContent generates one assistant turn for the given request.
	GenerateContent(ctx context.Context, request *Request) (*Response, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about a Model.
type Info struct {
	Name string
}
