//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"github.com/rodrigobaron/mcp-agent/internal/retry"
	"github.com/rodrigobaron/mcp-agent/prompt"
	"github.com/rodrigobaron/mcp-agent/tool"
)

// DefaultMaxSteps bounds the number of rounds of a run.
const DefaultMaxSteps = 10

const defaultName = "mcp-agent"

// RetryPolicy controls how failed model calls are retried.
type RetryPolicy = retry.Policy

// DefaultRetryPolicy returns three attempts spaced by half a second.
func DefaultRetryPolicy() RetryPolicy {
	return retry.DefaultPolicy()
}

// Option is a function that configures an Agent.
type Option func(*Options)

// Options contains the configuration of an Agent.
type Options struct {
	// Name is the author of the emitted events.
	Name string
	// Instruction is added to the system prompt when not empty.
	Instruction string
	// Servers are connected, in order, on the first run.
	Servers []tool.Server
	// MaxSteps bounds the number of rounds. Values below 1 mean DefaultMaxSteps.
	MaxSteps int
	// ChannelBufferSize is the capacity of the event channel. With 0 the
	// producer waits for the consumer on every event.
	ChannelBufferSize int
	// Registry replaces the registry the agent creates for itself.
	Registry *tool.Registry
	// SystemTemplate is rendered into the system message.
	SystemTemplate *prompt.Template
	// Renderer renders SystemTemplate.
	Renderer prompt.Renderer

	retryPolicy RetryPolicy
}

// WithName sets the name of the agent.
func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

// WithInstruction sets task specific instructions.
func WithInstruction(instruction string) Option {
	return func(opts *Options) {
		opts.Instruction = instruction
	}
}

// WithServers appends tool servers.
func WithServers(servers ...tool.Server) Option {
	return func(opts *Options) {
		opts.Servers = append(opts.Servers, servers...)
	}
}

// WithMaxSteps sets the maximum number of rounds.
func WithMaxSteps(n int) Option {
	return func(opts *Options) {
		opts.MaxSteps = n
	}
}

// WithRetryPolicy sets the retry policy of model calls.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(opts *Options) {
		opts.retryPolicy = p
	}
}

// WithChannelBufferSize sets the buffer size of the event channel.
func WithChannelBufferSize(size int) Option {
	return func(opts *Options) {
		opts.ChannelBufferSize = size
	}
}

// WithRegistry makes the agent use registry instead of a new one.
func WithRegistry(registry *tool.Registry) Option {
	return func(opts *Options) {
		opts.Registry = registry
	}
}

// WithSystemTemplate replaces the system prompt. The template receives the
// rendered instruction in its "instruction" placeholder.
func WithSystemTemplate(t *prompt.Template) Option {
	return func(opts *Options) {
		if t != nil {
			opts.SystemTemplate = t
		}
	}
}
