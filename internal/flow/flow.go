//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package flow defines the interface of a single reasoning round.
package flow

import (
	"context"

	"github.com/rodrigobaron/mcp-agent/model"
)

// StepOutcome is what one round added to the conversation.
type StepOutcome struct {
	// Messages are the new messages in the order they were produced: the
	// assistant text, then for each tool call its announcement and result.
	Messages []model.Message
	// Finished is true when the model answered without calling any tool.
	Finished bool
	// TotalTokens is the provider reported usage of the round, 0 if unknown.
	TotalTokens int
}

// Flow runs one round of model call plus tool execution.
type Flow interface {
	RunStep(ctx context.Context, conversation []model.Message) (*StepOutcome, error)
}

type stepKey struct{}

// WithStepNumber annotates ctx with the 1-based round number.
func WithStepNumber(ctx context.Context, step int) context.Context {
	return context.WithValue(ctx, stepKey{}, step)
}

// StepNumber returns the round number set by WithStepNumber, or 0.
func StepNumber(ctx context.Context) int {
	step, _ := ctx.Value(stepKey{}).(int)
	return step
}
