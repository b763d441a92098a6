//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package agent runs the tool augmented reasoning loop: the model is asked
// for a turn, the tools it requests are executed, and the results are fed
// back until the model answers without tools or the step budget runs out.
package agent

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/rodrigobaron/mcp-agent/internal/flow"
	"github.com/rodrigobaron/mcp-agent/internal/flow/llmflow"
	itelemetry "github.com/rodrigobaron/mcp-agent/internal/telemetry"
	"github.com/rodrigobaron/mcp-agent/log"
	"github.com/rodrigobaron/mcp-agent/model"
	"github.com/rodrigobaron/mcp-agent/prompt"
	imetric "github.com/rodrigobaron/mcp-agent/telemetry/metric"
	"github.com/rodrigobaron/mcp-agent/tool"
)

// Info contains basic information about an agent.
type Info struct {
	Name  string
	Model string
	Tools int
}

// Agent connects to tool servers and runs queries against a model.
//
// An Agent owns its tool registry. Runs of the same Agent must not overlap.
type Agent struct {
	name           string
	model          model.Model
	instruction    string
	servers        []tool.Server
	maxSteps       int
	bufferSize     int
	systemTemplate *prompt.Template
	renderer       prompt.Renderer
	registry       *tool.Registry
	flow           flow.Flow

	// mu guards registration progress, the start of runs and teardown.
	mu         sync.Mutex
	registered int

	// runs tracks the producer goroutines; cancels stops them by invocation.
	runs    sync.WaitGroup
	runsMu  sync.Mutex
	cancels map[string]context.CancelFunc

	stepCounter  metric.Int64Counter
	tokenCounter metric.Int64Counter
}

// New creates an agent that uses m.
func New(m model.Model, opts ...Option) *Agent {
	options := Options{
		Name:           defaultName,
		MaxSteps:       DefaultMaxSteps,
		SystemTemplate: prompt.System,
		Renderer:       prompt.BraceRenderer{},
		retryPolicy:    DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxSteps < 1 {
		options.MaxSteps = DefaultMaxSteps
	}
	if options.ChannelBufferSize < 0 {
		options.ChannelBufferSize = 0
	}
	registry := options.Registry
	if registry == nil {
		registry = tool.NewRegistry()
	}

	return &Agent{
		name:           options.Name,
		model:          m,
		instruction:    options.Instruction,
		servers:        options.Servers,
		maxSteps:       options.MaxSteps,
		bufferSize:     options.ChannelBufferSize,
		systemTemplate: options.SystemTemplate,
		renderer:       options.Renderer,
		registry:       registry,
		cancels:        make(map[string]context.CancelFunc),
		flow:           llmflow.New(m, registry, llmflow.Options{RetryPolicy: options.retryPolicy}),
		stepCounter:    newCounter(itelemetry.MetricSteps, "Number of completed reasoning rounds"),
		tokenCounter:   newCounter(itelemetry.MetricTokens, "Tokens reported by the model provider"),
	}
}

func newCounter(name, description string) metric.Int64Counter {
	c, err := imetric.Meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		log.Warnf("create %s counter: %v", name, err)
		return noop.Int64Counter{}
	}
	return c
}

// Info returns the basic information about this agent.
func (a *Agent) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	info := Info{Name: a.name, Tools: a.registry.Len()}
	if a.model != nil {
		info.Model = a.model.Info().Name
	}
	return info
}

// Tools returns the declarations of the registered tools.
func (a *Agent) Tools() []*tool.Declaration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry.DescribeAll()
}

// Cleanup closes every tool server connection. It is safe to call without a
// prior Run, more than once, and while the stream of a Run is still open: the
// run is cancelled and Cleanup waits for it to stop before closing the
// connections, so its channel is closed without a final result. A later Run
// connects again.
func (a *Agent) Cleanup() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runsMu.Lock()
	for _, cancel := range a.cancels {
		cancel()
	}
	a.runsMu.Unlock()
	a.runs.Wait()

	a.registered = 0
	return a.registry.Teardown()
}

// track records a started run. It must be called with mu held.
func (a *Agent) track(invocationID string, cancel context.CancelFunc) {
	a.runs.Add(1)
	a.runsMu.Lock()
	a.cancels[invocationID] = cancel
	a.runsMu.Unlock()
}

// untrack releases the context of a finished run.
func (a *Agent) untrack(invocationID string) {
	a.runsMu.Lock()
	if cancel, ok := a.cancels[invocationID]; ok {
		cancel()
		delete(a.cancels, invocationID)
	}
	a.runsMu.Unlock()
	a.runs.Done()
}
