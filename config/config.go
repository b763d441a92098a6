//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads the YAML run configuration of the mcpagent command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rodrigobaron/mcp-agent/agent"
	"github.com/rodrigobaron/mcp-agent/log"
	"github.com/rodrigobaron/mcp-agent/telemetry"
	"github.com/rodrigobaron/mcp-agent/tool"
	"github.com/rodrigobaron/mcp-agent/tool/mcp"
)

// DefaultAPIKeyEnv is read when the model section names no variable.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// Config is the run configuration.
type Config struct {
	Model       ModelConfig      `yaml:"model"`
	Instruction string           `yaml:"instruction"`
	MaxSteps    int              `yaml:"max_steps"`
	LogLevel    string           `yaml:"log_level"`
	Retry       RetryConfig      `yaml:"retry"`
	Servers     []ServerConfig   `yaml:"servers"`
	Telemetry   telemetry.Config `yaml:"telemetry"`
}

// ModelConfig selects the chat completions endpoint.
type ModelConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// APIKey returns the key found in the configured environment variable.
func (m ModelConfig) APIKey() string {
	name := m.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	return os.Getenv(name)
}

// RetryConfig tunes the retries of model calls.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	Interval    Duration `yaml:"interval"`
}

// Policy converts the section, filling unset values with the defaults.
func (r RetryConfig) Policy() agent.RetryPolicy {
	p := agent.DefaultRetryPolicy()
	if r.MaxAttempts > 0 {
		p.MaxAttempts = r.MaxAttempts
	}
	if r.Interval > 0 {
		p.Interval = time.Duration(r.Interval)
	}
	return p
}

// ServerConfig describes one MCP tool server.
type ServerConfig struct {
	Name      string            `yaml:"name"`
	Transport string            `yaml:"transport"`
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args"`
	Env       map[string]string `yaml:"env"`
	ServerURL string            `yaml:"server_url"`
	Headers   map[string]string `yaml:"headers"`
	Timeout   Duration          `yaml:"timeout"`
	// IncludeTools and ExcludeTools hold tool names or globs like "read_*".
	IncludeTools []string `yaml:"include_tools"`
	ExcludeTools []string `yaml:"exclude_tools"`
}

// MCP converts the section into the server configuration of package mcp.
func (s ServerConfig) MCP() mcp.ServerConfig {
	return mcp.ServerConfig{
		Name:      s.Name,
		Transport: s.Transport,
		ServerURL: s.ServerURL,
		Headers:   s.Headers,
		Command:   s.Command,
		Args:      s.Args,
		Env:       s.Env,
		Timeout:   time.Duration(s.Timeout),
	}
}

// Filter returns the tool filter of the section, or nil when it has none.
func (s ServerConfig) Filter() mcp.ToolFilter {
	var filters []mcp.ToolFilter
	if len(s.IncludeTools) > 0 {
		filters = append(filters, mcp.NewGlobIncludeFilter(s.IncludeTools...))
	}
	if len(s.ExcludeTools) > 0 {
		filters = append(filters, mcp.NewGlobExcludeFilter(s.ExcludeTools...))
	}
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		return mcp.NewCompositeFilter(filters...)
	}
}

// Validate checks the section.
func (s ServerConfig) Validate() error {
	if err := s.MCP().Validate(); err != nil {
		return err
	}
	if s.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document. Unknown keys are rejected. The result is
// not validated, so that command line flags can complete it first.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem of the configuration.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Model.Name) == "" {
		errs = append(errs, errors.New("model.name is required"))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, errors.New("max_steps must not be negative"))
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("retry.max_attempts must not be negative"))
	}
	for i, s := range c.Servers {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("servers[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// ToolServers builds the configured tool servers in order.
func (c *Config) ToolServers() []tool.Server {
	servers := make([]tool.Server, 0, len(c.Servers))
	for _, s := range c.Servers {
		var opts []mcp.ServerOption
		if f := s.Filter(); f != nil {
			opts = append(opts, mcp.WithToolFilter(f))
		}
		servers = append(servers, mcp.NewServer(s.MCP(), opts...))
	}
	return servers
}

// Duration is a time.Duration written as a string such as "30s". A bare
// number is a count of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}
	var secs float64
	if err := node.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
