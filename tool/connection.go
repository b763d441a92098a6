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
	"sync"
)

// ConnectionContext owns a live session with one tool server. Every
// Definition registered from that server shares the same ConnectionContext.
type ConnectionContext struct {
	server  string
	session Session
	release func() error

	once     sync.Once
	released bool
	err      error
}

// NewConnectionContext wraps session. Releasing the context closes the
// session.
func NewConnectionContext(server string, session Session) *ConnectionContext {
	return &ConnectionContext{
		server:  server,
		session: session,
		release: session.Close,
	}
}

// Server returns the name of the tool server.
func (c *ConnectionContext) Server() string {
	return c.server
}

// Session returns the underlying session.
func (c *ConnectionContext) Session() Session {
	return c.session
}

// Available reports whether the session can still serve calls.
func (c *ConnectionContext) Available() bool {
	return c != nil && c.session != nil && !c.released
}

// Release runs the release procedure. Only the first call has an effect;
// later calls return the first result.
func (c *ConnectionContext) Release() error {
	c.once.Do(func() {
		c.released = true
		if c.release != nil {
			c.err = c.release()
		}
	})
	return c.err
}
