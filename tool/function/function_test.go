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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigobaron/mcp-agent/tool"
)

type addInput struct {
	A float64 `json:"a" jsonschema:"description=first operand"`
	B float64 `json:"b"`
	// Round is optional.
	Round bool `json:"round,omitempty"`
}

type addOutput struct {
	Sum float64 `json:"sum"`
}

func newAddTool() *FunctionTool[addInput, addOutput] {
	return NewFunctionTool(func(ctx context.Context, in addInput) (addOutput, error) {
		return addOutput{Sum: in.A + in.B}, nil
	}, WithName("add"), WithDescription("Adds two numbers"))
}

func newUpperTool() *FunctionTool[map[string]string, string] {
	return NewFunctionTool(func(ctx context.Context, in map[string]string) (string, error) {
		if in["text"] == "" {
			return "", errors.New("text is required")
		}
		return strings.ToUpper(in["text"]), nil
	}, WithName("upper"), WithInputSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
	}))
}

func TestFunctionTool_Declaration(t *testing.T) {
	decl := newAddTool().Declaration()
	assert.Equal(t, "add", decl.Name)
	assert.Equal(t, "Adds two numbers", decl.Description)
	assert.Equal(t, "object", decl.InputSchema["type"])
	assert.NotContains(t, decl.InputSchema, "$schema")

	props, ok := decl.InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "round")
	a, ok := props["a"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "number", a["type"])
	assert.Equal(t, "first operand", a["description"])

	required, ok := decl.InputSchema["required"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"a", "b"}, required)
}

func TestFunctionTool_Call(t *testing.T) {
	res, err := newAddTool().Call(context.Background(), map[string]any{"a": 2, "b": 3.5})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.Equal(t, tool.ContentText, res.Content[0].Type)
	assert.JSONEq(t, `{"sum":5.5}`, res.Content[0].Text)

	res, err = newUpperTool().Call(context.Background(), map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "HI", res.Content[0].Text)
}

func TestFunctionTool_CallErrors(t *testing.T) {
	_, err := newAddTool().Call(context.Background(), map[string]any{"a": "two"})
	assert.ErrorContains(t, err, "decode arguments of add")

	_, err = newUpperTool().Call(context.Background(), map[string]any{})
	assert.EqualError(t, err, "text is required")
}

func TestServer(t *testing.T) {
	srv := NewServer("local", newAddTool(), newUpperTool())
	assert.Equal(t, "local", srv.Name())

	r := tool.NewRegistry()
	require.NoError(t, r.Register(context.Background(), srv))
	decls := r.DescribeAll()
	require.Len(t, decls, 2)
	assert.Equal(t, "add", decls[0].Name)
	assert.Equal(t, "upper", decls[1].Name)

	def, ok := r.Lookup("upper")
	require.True(t, ok)
	res, err := def.Connection.Session().CallTool(context.Background(), "upper", map[string]any{"text": "go"})
	require.NoError(t, err)
	assert.Equal(t, "GO", res.Content[0].Text)

	_, err = def.Connection.Session().CallTool(context.Background(), "nope", nil)
	assert.ErrorContains(t, err, `unknown tool "nope"`)

	require.NoError(t, r.Teardown())
	_, err = def.Connection.Session().CallTool(context.Background(), "upper", map[string]any{"text": "go"})
	assert.ErrorIs(t, err, errSessionClosed)
	_, err = def.Connection.Session().ListTools(context.Background())
	assert.ErrorIs(t, err, errSessionClosed)
}

func TestServer_DuplicateNames(t *testing.T) {
	srv := NewServer("dup", newAddTool(), newAddTool())
	err := tool.NewRegistry().Register(context.Background(), srv)
	assert.ErrorIs(t, err, tool.ErrConnectionFailure)
	assert.ErrorContains(t, err, `duplicate tool "add"`)
}

func TestServer_CancelledConnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewServer("x").Connect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
