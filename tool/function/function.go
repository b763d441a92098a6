//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package function exposes Go functions as tools. A Server groups them and
// can be registered next to MCP servers.
package function

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/rodrigobaron/mcp-agent/tool"
)

// Tool is an in-process tool.
type Tool interface {
	Declaration() *tool.Declaration
	Call(ctx context.Context, args map[string]any) (*tool.Result, error)
}

// FunctionTool wraps fn as a tool. The arguments sent by the model are
// decoded into I through JSON; the output is returned as text, as is for a
// string and JSON encoded otherwise.
type FunctionTool[I, O any] struct {
	name        string
	description string
	inputSchema map[string]any
	fn          func(context.Context, I) (O, error)
}

// Option is a function that configures a FunctionTool.
type Option func(*functionToolOptions)

type functionToolOptions struct {
	name        string
	description string
	inputSchema map[string]any
}

// WithName sets the name of the function tool.
func WithName(name string) Option {
	return func(opts *functionToolOptions) {
		opts.name = name
	}
}

// WithDescription sets the description of the function tool.
func WithDescription(description string) Option {
	return func(opts *functionToolOptions) {
		opts.description = description
	}
}

// WithInputSchema replaces the schema derived from I.
func WithInputSchema(schema map[string]any) Option {
	return func(opts *functionToolOptions) {
		opts.inputSchema = schema
	}
}

// NewFunctionTool creates a tool calling fn.
func NewFunctionTool[I, O any](fn func(context.Context, I) (O, error), opts ...Option) *FunctionTool[I, O] {
	options := &functionToolOptions{}
	for _, opt := range opts {
		opt(options)
	}
	schema := options.inputSchema
	if schema == nil {
		schema = inputSchema(reflect.TypeOf((*I)(nil)).Elem())
	}
	return &FunctionTool[I, O]{
		name:        options.name,
		description: options.description,
		inputSchema: schema,
		fn:          fn,
	}
}

// Declaration returns the tool's declaration information.
func (ft *FunctionTool[I, O]) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:        ft.name,
		Description: ft.description,
		InputSchema: ft.inputSchema,
	}
}

// Call decodes args into the input type and runs the function.
func (ft *FunctionTool[I, O]) Call(ctx context.Context, args map[string]any) (*tool.Result, error) {
	var input I
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments of %s: %w", ft.name, err)
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("decode arguments of %s: %w", ft.name, err)
	}
	out, err := ft.fn(ctx, input)
	if err != nil {
		return nil, err
	}
	text, err := render(out)
	if err != nil {
		return nil, fmt.Errorf("encode result of %s: %w", ft.name, err)
	}
	return &tool.Result{Content: []tool.Content{{Type: tool.ContentText, Text: text}}}, nil
}

func render(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	bts, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(bts), nil
}
