//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package event provides the events streamed by an agent run.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is one element of the stream returned by an agent run. Exactly one
// of Step and Result is set.
type Event struct {
	// ID is the unique identifier of the event.
	ID string `json:"id"`

	// InvocationID is the invocation ID of the event.
	InvocationID string `json:"invocationId"`

	// Author is the author of the event.
	Author string `json:"author"`

	// Timestamp is the timestamp of the event.
	Timestamp time.Time `json:"timestamp"`

	// Step carries an execution step.
	Step *ExecutionStep `json:"step,omitempty"`

	// Result carries the final summary of the run.
	Result *AgentResult `json:"result,omitempty"`
}

// Option is a function that can be used to configure the Event.
type Option func(*Event)

// WithTimestamp overrides the creation time of the event.
func WithTimestamp(ts time.Time) Option {
	return func(e *Event) {
		e.Timestamp = ts
	}
}

// New creates a new Event with generated ID and timestamp.
func New(invocationID, author string, opts ...Option) *Event {
	e := &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		InvocationID: invocationID,
		Author:       author,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewStepEvent creates an event carrying step.
func NewStepEvent(invocationID, author string, step ExecutionStep, opts ...Option) *Event {
	e := New(invocationID, author, opts...)
	e.Step = &step
	return e
}

// NewResultEvent creates the final event of a run.
func NewResultEvent(invocationID, author string, result *AgentResult, opts ...Option) *Event {
	e := New(invocationID, author, opts...)
	e.Result = result
	return e
}

// IsFinal reports whether the event carries the run result.
func (e *Event) IsFinal() bool {
	return e != nil && e.Result != nil
}
