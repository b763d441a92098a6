//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package llmflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/rodrigobaron/mcp-agent/internal/flow"
	"github.com/rodrigobaron/mcp-agent/internal/retry"
	"github.com/rodrigobaron/mcp-agent/model"
	"github.com/rodrigobaron/mcp-agent/telemetry/trace"
	"github.com/rodrigobaron/mcp-agent/tool"
)

type scripted struct {
	rsp *model.Response
	err error
}

// scriptedModel replays its script, one entry per call.
type scriptedModel struct {
	script   []scripted
	requests []*model.Request
}

func (m *scriptedModel) GenerateContent(ctx context.Context, req *model.Request) (*model.Response, error) {
	m.requests = append(m.requests, req)
	if len(m.requests) > len(m.script) {
		return nil, errors.New("unexpected model call")
	}
	s := m.script[len(m.requests)-1]
	return s.rsp, s.err
}

func (m *scriptedModel) Info() model.Info {
	return model.Info{Name: "fake-model"}
}

type toolCall struct {
	name string
	args map[string]any
}

type fakeSession struct {
	tools  []*tool.Declaration
	errs   map[string]error
	calls  []toolCall
	closed bool
}

func (s *fakeSession) ListTools(ctx context.Context) ([]*tool.Declaration, error) {
	return s.tools, nil
}

func (s *fakeSession) CallTool(ctx context.Context, name string, args map[string]any) (*tool.Result, error) {
	s.calls = append(s.calls, toolCall{name: name, args: args})
	if err := s.errs[name]; err != nil {
		return nil, err
	}
	return &tool.Result{Content: []tool.Content{
		{Type: tool.ContentText, Text: name + " ok"},
		{Type: tool.ContentImage, Text: "[image content]", MIMEType: "image/png"},
	}}, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeServer struct {
	session *fakeSession
}

func (s *fakeServer) Name() string { return "fake" }

func (s *fakeServer) Connect(ctx context.Context) (tool.Session, error) {
	return s.session, nil
}

func newRegistry(t *testing.T, names ...string) (*tool.Registry, *fakeSession) {
	t.Helper()
	session := &fakeSession{errs: map[string]error{}}
	for _, n := range names {
		session.tools = append(session.tools, &tool.Declaration{
			Name:        n,
			Description: n + " tool",
			InputSchema: map[string]any{"type": "object"},
		})
	}
	r := tool.NewRegistry()
	require.NoError(t, r.Register(context.Background(), &fakeServer{session: session}))
	return r, session
}

func textResponse(text string, tokens int) *model.Response {
	return &model.Response{
		Choices: []model.Choice{{Message: model.NewAssistantMessage(text)}},
		Usage:   &model.Usage{TotalTokens: tokens},
	}
}

func callResponse(text string, tokens int, calls ...model.ToolCall) *model.Response {
	msg := model.NewAssistantMessage(text)
	msg.ToolCalls = calls
	return &model.Response{
		Choices: []model.Choice{{Message: msg}},
		Usage:   &model.Usage{TotalTokens: tokens},
	}
}

func call(id, name, args string) model.ToolCall {
	return model.ToolCall{
		Type: "function",
		ID:   id,
		Function: model.FunctionDefinitionParam{
			Name:      name,
			Arguments: []byte(args),
		},
	}
}

func conversation() []model.Message {
	return []model.Message{
		model.NewSystemMessage("system"),
		model.NewUserMessage("what is the weather?"),
	}
}

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, Interval: time.Millisecond}
}

func TestFlow_Interface(t *testing.T) {
	var f flow.Flow = New(&scriptedModel{}, nil, Options{})
	assert.NotNil(t, f)
}

func TestRunStep_FinalAnswer(t *testing.T) {
	registry, _ := newRegistry(t, "weather")
	m := &scriptedModel{script: []scripted{{rsp: textResponse("It is sunny.", 42)}}}
	f := New(m, registry, Options{RetryPolicy: fastPolicy(3)})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Equal(t, 42, out.TotalTokens)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, model.RoleAssistant, out.Messages[0].Role)
	assert.Equal(t, "It is sunny.", out.Messages[0].Content)

	require.Len(t, m.requests, 1)
	req := m.requests[0]
	assert.Equal(t, model.ToolChoiceAuto, req.ToolChoice)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "weather", req.Tools[0].Name)
	assert.Len(t, req.Messages, 2)
}

func TestRunStep_ToolCall(t *testing.T) {
	registry, session := newRegistry(t, "weather")
	m := &scriptedModel{script: []scripted{{
		rsp: callResponse("", 17, call("call_1", "weather", `{"city":"Paris"}`)),
	}}}
	f := New(m, registry, Options{})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	assert.False(t, out.Finished)
	assert.Equal(t, 17, out.TotalTokens)
	require.Len(t, out.Messages, 2)

	announce := out.Messages[0]
	assert.Equal(t, model.RoleAssistant, announce.Role)
	assert.Equal(t, `Calling weather with arguments: {"city":"Paris"}`, announce.Content)
	require.Len(t, announce.ToolCalls, 1)
	assert.Equal(t, "call_1", announce.ToolCalls[0].ID)

	result := out.Messages[1]
	assert.Equal(t, model.RoleTool, result.Role)
	assert.Equal(t, "call_1", result.ToolID)
	assert.Equal(t, "weather", result.ToolName)
	assert.Equal(t, "weather ok\n[image content]", result.Text())
	require.Len(t, result.ContentParts, 2)
	assert.Equal(t, model.ContentTypeImage, result.ContentParts[1].Type)
	assert.Equal(t, "image/png", result.ContentParts[1].MIMEType)

	require.Len(t, session.calls, 1)
	assert.Equal(t, map[string]any{"city": "Paris"}, session.calls[0].args)
}

func TestRunStep_TextAndToolCalls(t *testing.T) {
	registry, session := newRegistry(t, "a", "b")
	m := &scriptedModel{script: []scripted{{
		rsp: callResponse("Let me check.", 5, call("1", "a", ""), call("2", "b", "null")),
	}}}
	f := New(m, registry, Options{})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	require.Len(t, out.Messages, 5)
	assert.Equal(t, "Let me check.", out.Messages[0].Content)
	assert.Equal(t, "Calling a with arguments: {}", out.Messages[1].Content)
	assert.Equal(t, "a ok\n[image content]", out.Messages[2].Text())
	assert.Equal(t, "Calling b with arguments: null", out.Messages[3].Content)
	assert.Equal(t, "2", out.Messages[4].ToolID)

	require.Len(t, session.calls, 2)
	assert.Equal(t, "a", session.calls[0].name)
	assert.Empty(t, session.calls[0].args)
	assert.NotNil(t, session.calls[1].args)
}

func TestRunStep_ToolErrorBecomesMessage(t *testing.T) {
	registry, session := newRegistry(t, "flaky", "steady")
	session.errs["flaky"] = errors.New("disk full")
	m := &scriptedModel{script: []scripted{{
		rsp: callResponse("", 1, call("1", "flaky", "{}"), call("2", "steady", "{}")),
	}}}
	f := New(m, registry, Options{})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	require.Len(t, out.Messages, 4)
	assert.Equal(t, model.RoleTool, out.Messages[1].Role)
	assert.Equal(t, "Error: disk full", out.Messages[1].Text())
	assert.Equal(t, "steady ok\n[image content]", out.Messages[3].Text())
	assert.Len(t, session.calls, 2)
}

func TestRunStep_MalformedArguments(t *testing.T) {
	registry, session := newRegistry(t, "weather")
	m := &scriptedModel{script: []scripted{{
		rsp: callResponse("", 1, call("1", "weather", `{"city":`)),
	}}}
	f := New(m, registry, Options{})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	require.Len(t, out.Messages, 2)
	assert.Contains(t, out.Messages[1].Text(), "Error: invalid tool arguments")
	assert.Empty(t, session.calls)
	assert.False(t, out.Finished)
}

func TestRunStep_UnknownToolStopsProcessing(t *testing.T) {
	registry, session := newRegistry(t, "weather")
	m := &scriptedModel{script: []scripted{{
		rsp: callResponse("", 1, call("1", "missing", "{}"), call("2", "weather", "{}")),
	}}}
	f := New(m, registry, Options{})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "Calling missing with arguments: {}", out.Messages[0].Content)
	assert.False(t, out.Finished)
	assert.Empty(t, session.calls)
}

func TestRunStep_ReleasedConnectionStopsProcessing(t *testing.T) {
	registry, session := newRegistry(t, "weather")
	def, ok := registry.Lookup("weather")
	require.True(t, ok)
	require.NoError(t, def.Connection.Release())

	m := &scriptedModel{script: []scripted{{
		rsp: callResponse("", 1, call("1", "weather", "{}")),
	}}}
	f := New(m, registry, Options{})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	assert.Len(t, out.Messages, 1)
	assert.Empty(t, session.calls)
	assert.True(t, session.closed)
}

func TestRunStep_RetriesModelFailures(t *testing.T) {
	transient := errors.New("503 service unavailable")
	m := &scriptedModel{script: []scripted{
		{err: transient},
		{err: transient},
		{rsp: textResponse("done", 3)},
	}}
	var retried []int
	policy := fastPolicy(3)
	policy.OnRetry = func(err error, attempt int, wait time.Duration) {
		retried = append(retried, attempt)
	}
	f := New(m, nil, Options{RetryPolicy: policy})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Len(t, m.requests, 3)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRunStep_RetryExhausted(t *testing.T) {
	last := errors.New("third failure")
	m := &scriptedModel{script: []scripted{
		{err: errors.New("first failure")},
		{err: errors.New("second failure")},
		{err: last},
	}}
	f := New(m, nil, Options{RetryPolicy: fastPolicy(3)})

	out, err := f.RunStep(context.Background(), conversation())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, last)
	assert.Len(t, m.requests, 3)
}

func TestRunStep_EmptyResponseNotRetried(t *testing.T) {
	tests := []struct {
		name string
		rsp  *model.Response
	}{
		{"no choices", &model.Response{}},
		{"nil response", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &scriptedModel{script: []scripted{{rsp: tt.rsp}, {rsp: textResponse("late", 1)}}}
			f := New(m, nil, Options{RetryPolicy: fastPolicy(3)})

			_, err := f.RunStep(context.Background(), conversation())
			assert.ErrorIs(t, err, model.ErrEmptyResponse)
			assert.Len(t, m.requests, 1)
		})
	}
}

func TestRunStep_MissingUsage(t *testing.T) {
	rsp := textResponse("ok", 0)
	rsp.Usage = nil
	f := New(&scriptedModel{script: []scripted{{rsp: rsp}}}, nil, Options{})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	assert.Equal(t, 0, out.TotalTokens)
}

func TestRunStep_EmptyTextNoToolsFinishes(t *testing.T) {
	f := New(&scriptedModel{script: []scripted{{rsp: textResponse("", 2)}}}, nil, Options{})

	out, err := f.RunStep(context.Background(), conversation())
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Empty(t, out.Messages)
}

func TestRunStep_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	old := trace.Tracer
	trace.Tracer = tp.Tracer("test")
	t.Cleanup(func() { trace.Tracer = old })

	registry, _ := newRegistry(t, "weather")
	m := &scriptedModel{script: []scripted{{
		rsp: callResponse("", 1, call("1", "weather", "{}")),
	}}}
	f := New(m, registry, Options{})

	ctx := flow.WithStepNumber(context.Background(), 4)
	_, err := f.RunStep(ctx, conversation())
	require.NoError(t, err)

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"execute_tool weather", "chat fake-model"}, names)
}

func TestDecodeArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr bool
	}{
		{"empty", "", map[string]any{}, false},
		{"blank", "  \n", map[string]any{}, false},
		{"null", "null", map[string]any{}, false},
		{"object", `{"a":1,"b":"x"}`, map[string]any{"a": float64(1), "b": "x"}, false},
		{"array", `[1,2]`, nil, true},
		{"broken", `{"a":`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeArguments([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
