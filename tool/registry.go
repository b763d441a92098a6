//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/rodrigobaron/mcp-agent/log"
)

// Definition binds a declared tool to the connection that serves it.
type Definition struct {
	*Declaration
	Connection *ConnectionContext
}

// Registry maps tool names to definitions.
//
// A registry belongs to one agent and is not safe for concurrent use.
type Registry struct {
	defs  map[string]*Definition
	order []string
	conns []*ConnectionContext
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register connects to server and stores every tool it advertises. A tool
// whose name is already present replaces the previous definition and keeps
// its position in DescribeAll.
//
// Any failure is returned as a *ConnectionError. A session that was opened
// before the failure is closed.
func (r *Registry) Register(ctx context.Context, server Server) error {
	name := server.Name()
	session, err := server.Connect(ctx)
	if err != nil {
		return &ConnectionError{Server: name, Err: err}
	}
	decls, err := session.ListTools(ctx)
	if err != nil {
		if cerr := session.Close(); cerr != nil {
			log.Warnf("close session of %s after list failure: %v", name, cerr)
		}
		return &ConnectionError{Server: name, Err: fmt.Errorf("list tools: %w", err)}
	}

	conn := NewConnectionContext(name, session)
	r.conns = append(r.conns, conn)
	stored := 0
	for _, decl := range decls {
		if decl == nil || decl.Name == "" {
			continue
		}
		if prev, ok := r.defs[decl.Name]; ok {
			log.Debugf("tool %s from %s replaces the one from %s", decl.Name, name, prev.Connection.Server())
		} else {
			r.order = append(r.order, decl.Name)
		}
		r.defs[decl.Name] = &Definition{Declaration: decl, Connection: conn}
		stored++
	}
	log.Infof("registered %d tools from %s", stored, name)
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// DescribeAll returns the declarations of all tools in registration order.
func (r *Registry) DescribeAll() []*Declaration {
	decls := make([]*Declaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.defs[name].Declaration)
	}
	return decls
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Teardown releases every connection in reverse acquisition order and empties
// the registry. A failing release is logged and does not stop the others;
// the failures are joined into the returned error. Calling Teardown again is
// a no-op.
func (r *Registry) Teardown() error {
	var errs []error
	for i := len(r.conns) - 1; i >= 0; i-- {
		conn := r.conns[i]
		if err := conn.Release(); err != nil {
			log.Errorf("release connection to %s: %v", conn.Server(), err)
			errs = append(errs, fmt.Errorf("%s: %w", conn.Server(), err))
		}
	}
	r.conns = nil
	r.order = nil
	r.defs = make(map[string]*Definition)
	return errors.Join(errs...)
}
