//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package event

// StepType classifies an execution step.
type StepType string

// Step types.
const (
	StepTypeAssistant  StepType = "ASSISTANT"
	StepTypeToolResult StepType = "TOOL_RESULT"
)

// ExecutionStep is the record of one message produced during a run.
type ExecutionStep struct {
	// Type is ASSISTANT for model output and TOOL_RESULT for tool output.
	Type StepType `json:"type"`
	// StepNumber is the 1-based round that produced the message.
	StepNumber int `json:"stepNumber"`
	// Content is the textual content of the message.
	Content string `json:"content"`
	// TokensUsed is the token count reported for the whole round. Every
	// message of a round carries the same value.
	TokensUsed int `json:"tokensUsed"`
}

// AgentResult summarizes a finished run.
type AgentResult struct {
	TotalSteps      int             `json:"totalSteps"`
	Steps           []ExecutionStep `json:"steps"`
	TotalTokensUsed int             `json:"totalTokensUsed"`
	// Err is set when the run stopped on a fatal error. The other fields
	// then describe the rounds completed before it.
	Err error `json:"-"`
}

// Failed reports whether the run stopped on a fatal error.
func (r *AgentResult) Failed() bool {
	return r != nil && r.Err != nil
}
