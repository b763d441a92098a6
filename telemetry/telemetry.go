//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry starts tracing and metrics together from one set of
// settings.
package telemetry

import (
	"context"
	"errors"

	itelemetry "github.com/rodrigobaron/mcp-agent/internal/telemetry"
	"github.com/rodrigobaron/mcp-agent/telemetry/metric"
	"github.com/rodrigobaron/mcp-agent/telemetry/trace"
)

// Config selects the OTLP collectors. An empty endpoint disables the
// corresponding signal.
type Config struct {
	TracesEndpoint  string `yaml:"traces_endpoint"`
	MetricsEndpoint string `yaml:"metrics_endpoint"`
	// Protocol is "grpc" (default) or "http".
	Protocol    string `yaml:"protocol"`
	ServiceName string `yaml:"service_name"`
}

// Enabled reports whether at least one signal is configured.
func (c Config) Enabled() bool {
	return c.TracesEndpoint != "" || c.MetricsEndpoint != ""
}

// Start starts the configured signals. The returned function flushes and
// stops all of them.
func Start(ctx context.Context, cfg Config) (clean func() error, err error) {
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = itelemetry.ProtocolGRPC
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = itelemetry.ServiceName
	}

	var cleans []func() error
	cleanAll := func() error {
		var errs []error
		for i := len(cleans) - 1; i >= 0; i-- {
			errs = append(errs, cleans[i]())
		}
		return errors.Join(errs...)
	}

	if cfg.TracesEndpoint != "" {
		c, err := trace.Start(ctx,
			trace.WithEndpoint(cfg.TracesEndpoint),
			trace.WithProtocol(protocol),
			trace.WithServiceName(serviceName),
		)
		if err != nil {
			return nil, err
		}
		cleans = append(cleans, c)
	}
	if cfg.MetricsEndpoint != "" {
		c, err := metric.Start(ctx,
			metric.WithEndpoint(cfg.MetricsEndpoint),
			metric.WithProtocol(protocol),
			metric.WithServiceName(serviceName),
		)
		if err != nil {
			_ = cleanAll()
			return nil, err
		}
		cleans = append(cleans, c)
	}
	return cleanAll, nil
}
