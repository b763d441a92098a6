//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package prompt holds the prompt templates of the agent and renders their
// `{name}` placeholders.
package prompt

import (
	"context"
)

// Template represents a structured prompt template with optional variable placeholders.
type Template struct {
	// ID is a unique identifier for the template.
	ID string `json:"id"`

	// Description provides details about the template's purpose and usage.
	Description string `json:"description"`

	// Content contains the template text. A placeholder is a name in braces;
	// "{{" and "}}" stand for literal braces.
	Content string `json:"content"`

	// Variables holds metadata about the variables used in the template.
	Variables []Variable `json:"variables,omitempty"`
}

// Variable represents a placeholder in a template that can be replaced with actual values.
type Variable struct {
	// Name is the identifier for the variable in the template.
	Name string `json:"name"`

	// Description explains what the variable represents.
	Description string `json:"description"`

	// Required indicates if the variable must be provided.
	Required bool `json:"required"`

	// DefaultValue is used when the variable is not explicitly provided.
	DefaultValue string `json:"default_value,omitempty"`
}

// Renderer processes a template by replacing variables with actual values.
type Renderer interface {
	// Render processes the template and returns the final prompt string.
	Render(ctx context.Context, template *Template, variables map[string]string) (string, error)
}

// Common errors returned by the prompt package.
var (
	ErrMissingRequiredVar = PromptError{Code: "missing_required_variable", Message: "missing required variable"}
	ErrInvalidTemplate    = PromptError{Code: "invalid_template", Message: "invalid template format"}
)

// PromptError represents errors in the prompt system.
type PromptError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e PromptError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the cause.
func (e PromptError) Unwrap() error {
	return e.Cause
}

// Is matches errors with the same code.
func (e PromptError) Is(target error) bool {
	t, ok := target.(PromptError)
	return ok && t.Code == e.Code
}

// WithCause attaches an underlying cause to the error.
func (e PromptError) WithCause(cause error) PromptError {
	e.Cause = cause
	return e
}
