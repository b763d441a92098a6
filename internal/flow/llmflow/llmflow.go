//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package llmflow implements a flow that asks the model for one turn and
// executes the tool calls of that turn.
package llmflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/rodrigobaron/mcp-agent/internal/flow"
	"github.com/rodrigobaron/mcp-agent/internal/retry"
	itelemetry "github.com/rodrigobaron/mcp-agent/internal/telemetry"
	"github.com/rodrigobaron/mcp-agent/log"
	"github.com/rodrigobaron/mcp-agent/model"
	imetric "github.com/rodrigobaron/mcp-agent/telemetry/metric"
	"github.com/rodrigobaron/mcp-agent/telemetry/trace"
	"github.com/rodrigobaron/mcp-agent/tool"
)

// Options contains configuration options for creating a Flow.
type Options struct {
	// RetryPolicy governs model calls. The zero value means a single attempt.
	RetryPolicy retry.Policy
}

// Flow is the default flow.Flow: one model call per round followed by the
// sequential execution of the requested tools.
type Flow struct {
	model       model.Model
	registry    *tool.Registry
	retryPolicy retry.Policy
	toolCalls   metric.Int64Counter
}

var _ flow.Flow = (*Flow)(nil)

// New creates a new Flow that calls m and resolves tools in registry.
func New(m model.Model, registry *tool.Registry, opts Options) *Flow {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	var toolCalls metric.Int64Counter = noop.Int64Counter{}
	counter, err := imetric.Meter.Int64Counter(itelemetry.MetricToolCalls,
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		log.Warnf("create %s counter: %v", itelemetry.MetricToolCalls, err)
	} else {
		toolCalls = counter
	}
	return &Flow{
		model:       m,
		registry:    registry,
		retryPolicy: opts.RetryPolicy,
		toolCalls:   toolCalls,
	}
}

// RunStep executes one round over conversation. An error is returned only
// when the model could not produce a turn; tool failures are reported to the
// model as tool messages.
func (f *Flow) RunStep(ctx context.Context, conversation []model.Message) (*flow.StepOutcome, error) {
	req := &model.Request{
		Messages:   conversation,
		Tools:      f.registry.DescribeAll(),
		ToolChoice: model.ToolChoiceAuto,
	}
	rsp, err := f.callModel(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := rsp.Choices[0].Message
	var messages []model.Message
	if msg.Content != "" {
		messages = append(messages, model.NewAssistantMessage(msg.Content))
	}
	for _, call := range msg.ToolCalls {
		messages = append(messages, model.NewToolCallMessage(call))
		def, ok := f.registry.Lookup(call.Function.Name)
		if !ok || !def.Connection.Available() {
			log.Warnf("tool %q not found or its session is closed, skipping remaining tool calls", call.Function.Name)
			break
		}
		messages = append(messages, f.executeTool(ctx, def, call))
	}
	return &flow.StepOutcome{
		Messages:    messages,
		Finished:    len(msg.ToolCalls) == 0,
		TotalTokens: rsp.TotalTokens(),
	}, nil
}

func (f *Flow) callModel(ctx context.Context, req *model.Request) (*model.Response, error) {
	modelName := f.model.Info().Name
	ctx, span := trace.Tracer.Start(ctx, itelemetry.NewChatSpanName(modelName))
	defer span.End()

	rsp, err := retry.Do(ctx, f.retryPolicy, func(ctx context.Context) (*model.Response, error) {
		rsp, err := f.model.GenerateContent(ctx, req)
		if err != nil {
			return nil, err
		}
		if rsp == nil || len(rsp.Choices) == 0 {
			return nil, retry.Permanent(fmt.Errorf("call %s: %w", modelName, model.ErrEmptyResponse))
		}
		return rsp, nil
	})
	itelemetry.TraceCallLLM(span, modelName, flow.StepNumber(ctx), req, rsp)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	log.Debugf("model %s answered with %d tool calls", modelName, len(rsp.Choices[0].Message.ToolCalls))
	return rsp, nil
}

func (f *Flow) executeTool(ctx context.Context, def *tool.Definition, call model.ToolCall) model.Message {
	name := call.Function.Name
	ctx, span := trace.Tracer.Start(ctx, itelemetry.NewExecuteToolSpanName(name))
	defer span.End()

	result, err := f.invoke(ctx, def, call)
	itelemetry.TraceToolCall(span, def.Declaration, call.ID, call.Function.Arguments, result, err)
	f.toolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", name),
		attribute.Bool("error", err != nil),
	))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("execute tool %s: %v", name, err)
		return model.NewToolErrorMessage(call.ID, name, err)
	}
	return model.NewToolResultMessage(call.ID, name, convertContent(result))
}

func (f *Flow) invoke(ctx context.Context, def *tool.Definition, call model.ToolCall) (*tool.Result, error) {
	args, err := decodeArguments(call.Function.Arguments)
	if err != nil {
		return nil, err
	}
	result, err := def.Connection.Session().CallTool(ctx, call.Function.Name, args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &tool.Result{}
	}
	return result, nil
}

// decodeArguments parses the JSON object sent by the model. Empty input and
// a JSON null both mean no arguments.
func decodeArguments(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func convertContent(result *tool.Result) []model.ContentPart {
	parts := make([]model.ContentPart, 0, len(result.Content))
	for _, c := range result.Content {
		parts = append(parts, model.ContentPart{
			Type:     model.ContentType(c.Type),
			Text:     c.Text,
			MIMEType: c.MIMEType,
		})
	}
	return parts
}
