//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package tool defines the tool abstractions used by the agent: the
// declarations advertised to the model, the sessions that execute calls on a
// tool server and the registry that maps tool names to live connections.
package tool

import (
	"context"
)

// Content kinds returned by tool servers.
const (
	ContentText     = "text"
	ContentImage    = "image"
	ContentAudio    = "audio"
	ContentResource = "resource"
)

// Declaration describes a tool to the model.
type Declaration struct {
	// Name is the unique identifier of the tool
	Name string `json:"name"`

	// Description explains the tool's purpose and functionality
	Description string `json:"description"`

	// InputSchema is the JSON schema of the tool arguments as published by
	// the tool server. It is passed through to the model untouched.
	InputSchema map[string]any `json:"inputSchema"`
}

// Content is one part of a tool result.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

// Result is the outcome of a successful tool call.
type Result struct {
	Content []Content `json:"content"`
}

// Session is a live, initialized session with a tool server.
type Session interface {
	// ListTools returns the tools advertised by the server.
	ListTools(ctx context.Context) ([]*Declaration, error)

	// CallTool invokes the named tool with decoded JSON arguments.
	CallTool(ctx context.Context, name string, args map[string]any) (*Result, error)

	// Close ends the session and releases the transport.
	Close() error
}

// Server is a tool server that can be connected to.
type Server interface {
	// Name identifies the server in logs and errors.
	Name() string

	// Connect opens the transport, performs the protocol handshake and
	// returns the ready session.
	Connect(ctx context.Context) (Session, error)
}
