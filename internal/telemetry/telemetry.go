//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds the names and span helpers shared by the tracing
// and metric code.
package telemetry

import (
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rodrigobaron/mcp-agent/model"
	"github.com/rodrigobaron/mcp-agent/tool"
)

const (
	ServiceName      = "mcp-agent"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "mcp-agent"
	InstrumentName   = "github.com/rodrigobaron/mcp-agent"

	SpanNamePrefixChat        = "chat"
	SpanNamePrefixExecuteTool = "execute_tool"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// Metric instrument names.
const (
	MetricSteps     = "mcpagent.steps"
	MetricTokens    = "mcpagent.tokens"
	MetricToolCalls = "mcpagent.tool.calls"
)

var (
	KeyInvocationID = "mcpagent.invocation_id"
	KeyStepNumber   = "mcpagent.step_number"
	KeyLLMRequest   = "mcpagent.llm_request"
	KeyLLMResponse  = "mcpagent.llm_response"
	KeyToolCallID   = "mcpagent.tool_call_id"
	KeyToolArgs     = "mcpagent.tool_call_args"
	KeyToolResponse = "mcpagent.tool_response"
)

// NewChatSpanName returns the name of the span wrapping a model call.
func NewChatSpanName(modelName string) string {
	if modelName == "" {
		return SpanNamePrefixChat
	}
	return SpanNamePrefixChat + " " + modelName
}

// NewExecuteToolSpanName returns the name of the span wrapping a tool call.
func NewExecuteToolSpanName(toolName string) string {
	return SpanNamePrefixExecuteTool + " " + toolName
}

// TraceToolCall records a tool invocation on span.
func TraceToolCall(span trace.Span, decl *tool.Declaration, callID string, args []byte, result *tool.Result, err error) {
	span.SetAttributes(
		attribute.String("gen_ai.operation.name", "execute_tool"),
		attribute.String("gen_ai.tool.name", decl.Name),
		attribute.String("gen_ai.tool.description", decl.Description),
		attribute.String(KeyToolCallID, callID),
		attribute.String(KeyToolArgs, string(args)),
	)
	if err != nil {
		span.SetAttributes(attribute.String("error.type", err.Error()))
		return
	}
	span.SetAttributes(attribute.String(KeyToolResponse, marshalOrPlaceholder(result)))
}

// TraceCallLLM records a model call on span.
func TraceCallLLM(span trace.Span, modelName string, step int, req *model.Request, rsp *model.Response) {
	span.SetAttributes(
		attribute.String("gen_ai.operation.name", "chat"),
		attribute.String("gen_ai.request.model", modelName),
		attribute.Int(KeyStepNumber, step),
		attribute.String(KeyLLMRequest, marshalOrPlaceholder(req)),
	)
	if rsp == nil {
		return
	}
	span.SetAttributes(attribute.String(KeyLLMResponse, marshalOrPlaceholder(rsp)))
	if rsp.Usage != nil {
		span.SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", rsp.Usage.PromptTokens),
			attribute.Int("gen_ai.usage.output_tokens", rsp.Usage.CompletionTokens),
		)
	}
}

func marshalOrPlaceholder(v any) string {
	bts, err := json.Marshal(v)
	if err != nil {
		return "<not json serializable>"
	}
	return string(bts)
}

// NewGRPCConn connects to an OpenTelemetry collector without TLS.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}
	return conn, nil
}
