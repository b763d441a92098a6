//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package function

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rodrigobaron/mcp-agent/tool"
)

var errSessionClosed = errors.New("session closed")

// Server serves function tools from the current process.
type Server struct {
	name  string
	tools []Tool
}

var _ tool.Server = (*Server)(nil)

// NewServer creates a server named name offering tools in order.
func NewServer(name string, tools ...Tool) *Server {
	return &Server{name: name, tools: tools}
}

// Name implements tool.Server.
func (s *Server) Name() string {
	return s.name
}

// Connect implements tool.Server. Every session sees the tools the server
// had when it was opened.
func (s *Server) Connect(ctx context.Context) (tool.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess := &session{byName: make(map[string]Tool, len(s.tools))}
	for _, t := range s.tools {
		decl := t.Declaration()
		if _, dup := sess.byName[decl.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", decl.Name)
		}
		sess.byName[decl.Name] = t
		sess.decls = append(sess.decls, decl)
	}
	return sess, nil
}

type session struct {
	mu     sync.RWMutex
	decls  []*tool.Declaration
	byName map[string]Tool
	closed bool
}

func (s *session) ListTools(ctx context.Context) ([]*tool.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errSessionClosed
	}
	return append([]*tool.Declaration(nil), s.decls...), nil
}

func (s *session) CallTool(ctx context.Context, name string, args map[string]any) (*tool.Result, error) {
	s.mu.RLock()
	t, ok := s.byName[name]
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, errSessionClosed
	}
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t.Call(ctx, args)
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
