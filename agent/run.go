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
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rodrigobaron/mcp-agent/event"
	"github.com/rodrigobaron/mcp-agent/internal/flow"
	itelemetry "github.com/rodrigobaron/mcp-agent/internal/telemetry"
	"github.com/rodrigobaron/mcp-agent/log"
	"github.com/rodrigobaron/mcp-agent/model"
	"github.com/rodrigobaron/mcp-agent/prompt"
	"github.com/rodrigobaron/mcp-agent/telemetry/trace"
)

// Run answers query. The tool servers are connected on the first call; if
// one of them fails, an error matching ErrInitializationFailure is returned
// and no channel is created. Servers connected before the failure stay
// registered and a later Run resumes with the failed one.
//
// The returned channel carries one event per produced message followed by a
// single final event holding the AgentResult, then it is closed. When ctx is
// cancelled, or Cleanup is called, the channel is closed without further
// events.
func (a *Agent) Run(ctx context.Context, query string) (<-chan *event.Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initialize(ctx); err != nil {
		return nil, err
	}
	system, err := prompt.RenderSystem(ctx, a.renderer, a.systemTemplate, a.instruction)
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}
	conversation := []model.Message{
		model.NewSystemMessage(system),
		model.NewUserMessage(query),
	}

	invocationID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	a.track(invocationID, cancel)
	eventChan := make(chan *event.Event, a.bufferSize)
	go func() {
		defer a.untrack(invocationID)
		a.run(runCtx, invocationID, conversation, eventChan)
	}()
	return eventChan, nil
}

// initialize registers the servers not registered yet. It must be called
// with mu held.
func (a *Agent) initialize(ctx context.Context) error {
	for a.registered < len(a.servers) {
		server := a.servers[a.registered]
		if err := a.registry.Register(ctx, server); err != nil {
			log.Errorf("register tool server %s: %v", server.Name(), err)
			return &InitializationError{Err: err}
		}
		a.registered++
	}
	return nil
}

func (a *Agent) run(ctx context.Context, invocationID string, conversation []model.Message, eventChan chan<- *event.Event) {
	defer close(eventChan)
	ctx, span := trace.Tracer.Start(ctx, fmt.Sprintf("agent_run [%s]", a.name))
	defer span.End()
	span.SetAttributes(attribute.String(itelemetry.KeyInvocationID, invocationID))

	result := &event.AgentResult{}
	var transcript []model.Message
	finished := false
	for step := 1; step <= a.maxSteps; step++ {
		if ctx.Err() != nil {
			log.Debugf("run %s cancelled before step %d", invocationID, step)
			return
		}
		history := make([]model.Message, 0, len(conversation)+len(transcript))
		history = append(append(history, conversation...), transcript...)

		out, err := a.flow.RunStep(flow.WithStepNumber(ctx, step), history)
		if err != nil {
			if ctx.Err() != nil {
				log.Debugf("run %s cancelled during step %d: %v", invocationID, step, err)
				return
			}
			log.Errorf("step %d of run %s failed: %v", step, invocationID, err)
			span.SetStatus(codes.Error, err.Error())
			result.Err = err
			break
		}

		result.TotalSteps = step
		for _, msg := range out.Messages {
			record := event.ExecutionStep{
				Type:       classify(msg),
				StepNumber: step,
				Content:    msg.Text(),
				TokensUsed: out.TotalTokens,
			}
			transcript = append(transcript, msg)
			result.Steps = append(result.Steps, record)
			result.TotalTokensUsed += record.TokensUsed
			if !emit(ctx, eventChan, event.NewStepEvent(invocationID, a.name, record)) {
				return
			}
		}
		a.stepCounter.Add(ctx, 1)
		a.tokenCounter.Add(ctx, int64(out.TotalTokens))
		if out.Finished {
			finished = true
			break
		}
	}
	if !finished && !result.Failed() {
		log.Infof("run %s reached the limit of %d steps", invocationID, a.maxSteps)
	}
	emit(ctx, eventChan, event.NewResultEvent(invocationID, a.name, result))
}

// classify maps a message to the kind of step it records.
func classify(msg model.Message) event.StepType {
	if msg.Role == model.RoleAssistant {
		return event.StepTypeAssistant
	}
	return event.StepTypeToolResult
}

// emit sends e unless ctx is done first.
func emit(ctx context.Context, eventChan chan<- *event.Event, e *event.Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case eventChan <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
