//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rodrigobaron/mcp-agent/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

type fakeClient struct {
	initErr  error
	listErr  error
	callErr  error
	tools    []mcp.Tool
	contents []mcp.Content

	closed      int
	lastName    string
	lastArgs    map[string]any
	hadDeadline bool
}

func (c *fakeClient) Initialize(ctx context.Context, req *mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}
	res := &mcp.InitializeResult{}
	res.ServerInfo.Name = "fake"
	res.ServerInfo.Version = "0.1.0"
	return res, nil
}

func (c *fakeClient) ListTools(ctx context.Context, req *mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return &mcp.ListToolsResult{Tools: c.tools}, nil
}

func (c *fakeClient) CallTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, c.hadDeadline = ctx.Deadline()
	c.lastName = req.Params.Name
	c.lastArgs = req.Params.Arguments
	if c.callErr != nil {
		return nil, c.callErr
	}
	return &mcp.CallToolResult{Content: c.contents}, nil
}

func (c *fakeClient) Close() error {
	c.closed++
	return nil
}

func withClient(c *fakeClient) ServerOption {
	return func(o *serverOptions) {
		o.dial = func(ServerConfig, []mcp.ClientOption) (client, error) { return c, nil }
	}
}

func stdioConfig() ServerConfig {
	return ServerConfig{Transport: "stdio", Command: "weather-server", Args: []string{"--units", "metric"}}
}

func TestServer_Name(t *testing.T) {
	assert.Equal(t, "weather-server --units metric", NewServer(stdioConfig()).Name())
	assert.Equal(t, "http://localhost:3000/mcp", NewServer(ServerConfig{Transport: "streamable", ServerURL: "http://localhost:3000/mcp"}).Name())
	assert.Equal(t, "weather", NewServer(ServerConfig{Name: "weather", Command: "x"}).Name())
}

func TestServer_DefaultClientInfo(t *testing.T) {
	s := NewServer(stdioConfig())
	assert.Equal(t, defaultClientInfo, s.config.ClientInfo)
}

func TestServer_ConnectListAndCall(t *testing.T) {
	fc := &fakeClient{
		tools: []mcp.Tool{
			{Name: "get_forecast", Description: "Forecast for a city"},
			{Name: "get_alerts", Description: "Weather alerts"},
		},
		contents: []mcp.Content{mcp.NewTextContent("sunny"), mcp.NewTextContent("22C")},
	}
	s := NewServer(stdioConfig(), withClient(fc))

	sess, err := s.Connect(context.Background())
	require.NoError(t, err)

	decls, err := sess.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "get_forecast", decls[0].Name)
	assert.Equal(t, "Forecast for a city", decls[0].Description)
	assert.Equal(t, "object", decls[0].InputSchema["type"])

	res, err := sess.CallTool(context.Background(), "get_forecast", map[string]any{"city": "Lisbon"})
	require.NoError(t, err)
	assert.Equal(t, []tool.Content{
		{Type: tool.ContentText, Text: "sunny"},
		{Type: tool.ContentText, Text: "22C"},
	}, res.Content)
	assert.Equal(t, "get_forecast", fc.lastName)
	assert.Equal(t, map[string]any{"city": "Lisbon"}, fc.lastArgs)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
	assert.Equal(t, 1, fc.closed)

	_, err = sess.CallTool(context.Background(), "get_forecast", nil)
	assert.ErrorIs(t, err, errTransportClosed)
	_, err = sess.ListTools(context.Background())
	assert.ErrorIs(t, err, errTransportClosed)
}

func TestServer_ConnectInitializeFailureClosesClient(t *testing.T) {
	fc := &fakeClient{initErr: errors.New("protocol mismatch")}
	s := NewServer(stdioConfig(), withClient(fc))

	_, err := s.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol mismatch")
	assert.Equal(t, 1, fc.closed)
}

func TestServer_ConnectDialFailure(t *testing.T) {
	s := NewServer(stdioConfig(), func(o *serverOptions) {
		o.dial = func(ServerConfig, []mcp.ClientOption) (client, error) {
			return nil, errors.New("exec: not found")
		}
	})
	_, err := s.Connect(context.Background())
	assert.ErrorContains(t, err, "exec: not found")
}

func TestServer_ConnectInvalidConfig(t *testing.T) {
	_, err := NewServer(ServerConfig{Transport: "carrier-pigeon"}).Connect(context.Background())
	assert.ErrorContains(t, err, "unsupported transport")

	_, err = NewServer(ServerConfig{Transport: "sse"}).Connect(context.Background())
	assert.ErrorContains(t, err, "server_url")
}

func TestServer_RegistryIntegration(t *testing.T) {
	fc := &fakeClient{tools: []mcp.Tool{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	s := NewServer(stdioConfig(), withClient(fc), WithToolFilter(NewExcludeFilter("b")))

	r := tool.NewRegistry()
	require.NoError(t, r.Register(context.Background(), s))
	assert.Equal(t, 2, r.Len())
	_, ok := r.Lookup("b")
	assert.False(t, ok)

	require.NoError(t, r.Teardown())
	assert.Equal(t, 1, fc.closed)
}

func TestServer_RegistryListFailure(t *testing.T) {
	fc := &fakeClient{listErr: errors.New("boom")}
	r := tool.NewRegistry()
	err := r.Register(context.Background(), NewServer(stdioConfig(), withClient(fc)))
	assert.ErrorIs(t, err, tool.ErrConnectionFailure)
	assert.Equal(t, 1, fc.closed)
}

func TestSession_CallToolError(t *testing.T) {
	fc := &fakeClient{callErr: errors.New("invalid params")}
	sess, err := NewServer(stdioConfig(), withClient(fc)).Connect(context.Background())
	require.NoError(t, err)

	_, err = sess.CallTool(context.Background(), "x", nil)
	assert.ErrorContains(t, err, "failed to call tool x: invalid params")
}

func TestSession_Timeout(t *testing.T) {
	cfg := stdioConfig()
	cfg.Timeout = time.Second
	fc := &fakeClient{}
	sess, err := NewServer(cfg, withClient(fc)).Connect(context.Background())
	require.NoError(t, err)

	_, err = sess.CallTool(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.True(t, fc.hadDeadline)
}

func TestServerConfig_StdioParams(t *testing.T) {
	cfg := stdioConfig()
	p := cfg.stdioParams()
	assert.Equal(t, "weather-server", p.Command)
	assert.Equal(t, []string{"--units", "metric"}, p.Args)

	cfg.Env = map[string]string{"B": "2", "A": "1"}
	p = cfg.stdioParams()
	assert.Equal(t, "env", p.Command)
	assert.Equal(t, []string{"A=1", "B=2", "weather-server", "--units", "metric"}, p.Args)
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr string
	}{
		{"stdio ok", ServerConfig{Command: "srv"}, ""},
		{"stdio without command", ServerConfig{Transport: "stdio"}, "requires a command"},
		{"sse ok", ServerConfig{Transport: "sse", ServerURL: "http://x"}, ""},
		{"streamable without url", ServerConfig{Transport: "streamable_http"}, "server_url"},
		{"unknown", ServerConfig{Transport: "grpc"}, "unsupported transport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
