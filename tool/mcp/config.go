//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package mcp

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// filterMode defines how the filter should behave.
type filterMode string

// Modes of the name, pattern and glob tool filters.
const (
	// FilterModeInclude keeps only the listed tools.
	FilterModeInclude filterMode = "include"
	// FilterModeExclude drops the listed tools.
	FilterModeExclude filterMode = "exclude"
)

// transport specifies the transport method: "stdio", "sse", "streamable".
type transport string

const (
	// transportStdio is the stdio transport.
	transportStdio transport = "stdio"
	// transportSSE is the Server-Sent Events transport.
	transportSSE transport = "sse"
	// transportStreamable is the streamable HTTP transport.
	transportStreamable transport = "streamable"
)

var defaultClientInfo = mcp.Implementation{
	Name:    "mcp-agent",
	Version: "1.0.0",
}

// ServerConfig defines how to reach one MCP tool server.
type ServerConfig struct {
	// Name identifies the server in logs. Derived from the command or URL
	// when empty.
	Name string `json:"name,omitempty"`

	// Transport specifies the transport method: "stdio", "sse", "streamable".
	// Empty means stdio.
	Transport string `json:"transport"`

	// Streamable/SSE configuration.
	ServerURL string            `json:"server_url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`

	// STDIO configuration.
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	// Timeout bounds every request to the server that has no deadline yet.
	Timeout time.Duration `json:"timeout,omitempty"`

	// ClientInfo is sent during initialization.
	ClientInfo mcp.Implementation `json:"client_info,omitempty"`
}

// Validate checks that the transport is known and its required fields are
// set.
func (c ServerConfig) Validate() error {
	t, err := validateTransport(c.Transport)
	if err != nil {
		return err
	}
	switch t {
	case transportStdio:
		if strings.TrimSpace(c.Command) == "" {
			return errors.New("stdio server requires a command")
		}
	default:
		if strings.TrimSpace(c.ServerURL) == "" {
			return fmt.Errorf("%s server requires a server_url", t)
		}
	}
	return nil
}

// displayName returns the configured name or one derived from the target.
func (c ServerConfig) displayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Command != "" {
		return strings.TrimSpace(strings.Join(append([]string{c.Command}, c.Args...), " "))
	}
	return c.ServerURL
}

// stdioParams builds the process parameters. Extra environment variables
// are applied through env(1) so that the server still inherits the parent
// environment.
func (c ServerConfig) stdioParams() mcp.StdioServerParameters {
	if len(c.Env) == 0 {
		return mcp.StdioServerParameters{Command: c.Command, Args: c.Args}
	}
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys)+len(c.Args)+1)
	for _, k := range keys {
		args = append(args, k+"="+c.Env[k])
	}
	args = append(args, c.Command)
	args = append(args, c.Args...)
	return mcp.StdioServerParameters{Command: "env", Args: args}
}

func (c ServerConfig) httpHeaders() http.Header {
	headers := http.Header{}
	for k, v := range c.Headers {
		headers.Set(k, v)
	}
	return headers
}

// serverOptions holds internal configuration for Server.
type serverOptions struct {
	toolFilter ToolFilter
	mcpOptions []mcp.ClientOption // MCP client options.
	dial       dialFunc
}

// ServerOption is a function type for configuring Server.
type ServerOption func(*serverOptions)

// WithToolFilter configures tool filtering.
func WithToolFilter(filter ToolFilter) ServerOption {
	return func(c *serverOptions) {
		c.toolFilter = filter
	}
}

// WithMCPOptions sets additional MCP client options.
// This can be used to pass options to the underlying MCP client.
func WithMCPOptions(options ...mcp.ClientOption) ServerOption {
	return func(c *serverOptions) {
		c.mcpOptions = append(c.mcpOptions, options...)
	}
}

// validateTransport validates the transport string and returns the internal transport type.
func validateTransport(t string) (transport, error) {
	switch t {
	case "stdio", "":
		return transportStdio, nil
	case "sse":
		return transportSSE, nil
	case "streamable", "streamable_http":
		return transportStreamable, nil
	default:
		return "", fmt.Errorf("unsupported transport: %s, supported: stdio, sse, streamable", t)
	}
}
