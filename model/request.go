//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"fmt"
	"strings"

	"github.com/rodrigobaron/mcp-agent/tool"
)

// Role represents the role of a message author.
type Role string

// Role constants for message authors.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolChoiceAuto lets the model decide whether to call a tool.
const ToolChoiceAuto = "auto"

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	default:
		return false
	}
}

// ContentType is the kind of a structured content part.
type ContentType string

// Content part kinds.
const (
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeResource ContentType = "resource"
)

// ContentPart is one element of structured message content.
type ContentPart struct {
	Type ContentType `json:"type"`
	// Text is set for text parts, and holds a placeholder for the others.
	Text string `json:"text,omitempty"`
	// MIMEType is set for binary parts when known.
	MIMEType string `json:"mime_type,omitempty"`
}

// Message represents a single message in a conversation.
// Messages are treated as values and are never mutated once appended to a
// conversation.
type Message struct {
	Role         Role          `json:"role"`                    // The role of the message author
	Content      string        `json:"content"`                 // The message content
	ContentParts []ContentPart `json:"content_parts,omitempty"` // Structured content, used by tool results
	ToolID       string        `json:"tool_id,omitempty"`       // Used by tool response
	ToolName     string        `json:"tool_name,omitempty"`     // Used by tool response
	ToolCalls    []ToolCall    `json:"tool_calls,omitempty"`    // Optional tool calls for the message
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{
		Role:    RoleSystem,
		Content: content,
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{
		Role:    RoleUser,
		Content: content,
	}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{
		Role:    RoleAssistant,
		Content: content,
	}
}

// NewToolCallMessage creates the assistant record of a single tool call.
// The content is a human readable description of the call.
func NewToolCallMessage(call ToolCall) Message {
	args := string(call.Function.Arguments)
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	return Message{
		Role:      RoleAssistant,
		Content:   fmt.Sprintf("Calling %s with arguments: %s", call.Function.Name, args),
		ToolCalls: []ToolCall{call},
	}
}

// NewToolResultMessage creates a tool message answering the call toolID.
func NewToolResultMessage(toolID, toolName string, parts []ContentPart) Message {
	return Message{
		Role:         RoleTool,
		ToolID:       toolID,
		ToolName:     toolName,
		ContentParts: parts,
	}
}

// NewToolErrorMessage creates a tool message reporting a failed call.
func NewToolErrorMessage(toolID, toolName string, err error) Message {
	return Message{
		Role:     RoleTool,
		ToolID:   toolID,
		ToolName: toolName,
		Content:  "Error: " + err.Error(),
	}
}

// Text returns the textual content of the message. Structured content is
// reduced to the text of its parts joined by newlines; non-text parts
// contribute their placeholder when they carry one.
func (m Message) Text() string {
	if len(m.ContentParts) == 0 {
		return m.Content
	}
	texts := make([]string, 0, len(m.ContentParts))
	for _, p := range m.ContentParts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// GenerationConfig contains configuration for text generation.
type GenerationConfig struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`

	// Stop sequences where the API will stop generating further tokens.
	Stop []string `json:"stop,omitempty"`
}

// Request is the request to the model.
type Request struct {
	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// GenerationConfig contains the generation parameters.
	GenerationConfig `json:",inline"`

	// Tools are the tools offered to the model, in registration order.
	Tools []*tool.Declaration `json:"-"`

	// ToolChoice is forwarded as the provider tool_choice. Empty means auto.
	ToolChoice string `json:"tool_choice,omitempty"`
}

// ToolCall represents a call to a tool (function) in the model response.
type ToolCall struct {
	// Type of the tool. Currently, only `function` is supported.
	Type string `json:"type"`
	// Function definition for the tool
	Function FunctionDefinitionParam `json:"function,omitempty"`
	// The ID of the tool call returned by the model.
	ID string `json:"id,omitempty"`
}

// FunctionDefinitionParam is the function part of a tool call.
type FunctionDefinitionParam struct {
	// The name of the function to be called.
	Name string `json:"name"`
	// A description of what the function does.
	Description string `json:"description,omitempty"`

	// Arguments to pass to the function, json-encoded.
	Arguments []byte `json:"arguments,omitempty"`
}
