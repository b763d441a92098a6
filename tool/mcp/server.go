//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package mcp connects the agent to MCP tool servers over stdio, SSE or
// streamable HTTP.
package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/rodrigobaron/mcp-agent/log"
	"github.com/rodrigobaron/mcp-agent/tool"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// client is the part of the MCP connector used by a session.
type client interface {
	Initialize(ctx context.Context, req *mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req *mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

type dialFunc func(cfg ServerConfig, opts []mcp.ClientOption) (client, error)

// Server is a tool.Server backed by an MCP server.
type Server struct {
	config ServerConfig
	opts   serverOptions
}

// NewServer creates a server for the given configuration. Nothing is
// started until Connect is called.
func NewServer(config ServerConfig, opts ...ServerOption) *Server {
	o := serverOptions{dial: createClient}
	for _, opt := range opts {
		opt(&o)
	}
	if config.ClientInfo.Name == "" {
		config.ClientInfo = defaultClientInfo
	}
	return &Server{config: config, opts: o}
}

// Name implements tool.Server.
func (s *Server) Name() string {
	return s.config.displayName()
}

// Connect implements tool.Server. It starts the transport and performs the
// initialize handshake.
func (s *Server) Connect(ctx context.Context) (tool.Session, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	log.Debugf("connecting to MCP server %s (transport=%s)", s.Name(), s.config.Transport)

	c, err := s.opts.dial(s.config, s.opts.mcpOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}

	sess := &session{config: s.config, client: c, filter: s.opts.toolFilter}
	if err := sess.initialize(ctx); err != nil {
		if closeErr := c.Close(); closeErr != nil {
			log.Errorf("close MCP client after initialization failure: %v (init error: %v)", closeErr, err)
		}
		return nil, err
	}
	return sess, nil
}

// createClient creates the appropriate MCP client based on transport configuration.
func createClient(cfg ServerConfig, mcpOptions []mcp.ClientOption) (client, error) {
	transportType, err := validateTransport(cfg.Transport)
	if err != nil {
		return nil, err
	}

	switch transportType {
	case transportStdio:
		config := mcp.StdioTransportConfig{
			ServerParams: cfg.stdioParams(),
			Timeout:      cfg.Timeout,
		}
		return mcp.NewStdioClient(config, cfg.ClientInfo)

	case transportSSE:
		var options []mcp.ClientOption
		if len(cfg.Headers) > 0 {
			options = append(options, mcp.WithHTTPHeaders(cfg.httpHeaders()))
		}
		options = append(options, mcpOptions...)
		return mcp.NewSSEClient(cfg.ServerURL, cfg.ClientInfo, options...)

	case transportStreamable:
		var options []mcp.ClientOption
		if len(cfg.Headers) > 0 {
			options = append(options, mcp.WithHTTPHeaders(cfg.httpHeaders()))
		}
		options = append(options, mcpOptions...)
		return mcp.NewClient(cfg.ServerURL, cfg.ClientInfo, options...)

	default:
		return nil, fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
}

// session implements tool.Session over an initialized MCP client.
type session struct {
	config ServerConfig
	filter ToolFilter

	mu     sync.RWMutex
	client client
}

// withTimeout creates a context with timeout if configured and no existing deadline.
func (s *session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			return context.WithTimeout(ctx, s.config.Timeout)
		}
	}
	return ctx, func() {}
}

func (s *session) initialize(ctx context.Context) error {
	initCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	initResp, err := s.client.Initialize(initCtx, &mcp.InitializeRequest{})
	if err != nil {
		return fmt.Errorf("failed to initialize MCP session: %w", err)
	}
	log.Debugf("MCP session initialized (server=%s %s, protocol=%s)",
		initResp.ServerInfo.Name, initResp.ServerInfo.Version, initResp.ProtocolVersion)
	return nil
}

// ListTools implements tool.Session.
func (s *session) ListTools(ctx context.Context) ([]*tool.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, errTransportClosed
	}

	listCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	listResp, err := s.client.ListTools(listCtx, &mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	decls := make([]*tool.Declaration, 0, len(listResp.Tools))
	for _, t := range listResp.Tools {
		decls = append(decls, &tool.Declaration{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: convertInputSchema(t.InputSchema),
		})
	}
	if s.filter != nil {
		decls = s.filter.Filter(ctx, decls)
	}
	log.Debugf("listed %d tools from %s", len(decls), s.config.displayName())
	return decls, nil
}

// CallTool implements tool.Session.
func (s *session) CallTool(ctx context.Context, name string, args map[string]any) (*tool.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, errTransportClosed
	}

	log.Debugf("calling tool %s with %v", name, args)
	toolCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	callReq := &mcp.CallToolRequest{}
	callReq.Params.Name = name
	callReq.Params.Arguments = args

	callResp, err := s.client.CallTool(toolCtx, callReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call tool %s: %w", name, err)
	}
	return &tool.Result{Content: convertContents(callResp.Content)}, nil
}

// Close implements tool.Session.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	if err != nil {
		return fmt.Errorf("failed to close MCP client: %w", err)
	}
	log.Debugf("MCP session with %s closed", s.config.displayName())
	return nil
}
