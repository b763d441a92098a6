//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"

	"github.com/rodrigobaron/mcp-agent/agent"
	"github.com/rodrigobaron/mcp-agent/config"
	"github.com/rodrigobaron/mcp-agent/log"
	"github.com/rodrigobaron/mcp-agent/model"
	"github.com/rodrigobaron/mcp-agent/model/openai"
	"github.com/rodrigobaron/mcp-agent/telemetry"
)

type runOptions struct {
	configPath  string
	model       string
	baseURL     string
	instruction string
	maxSteps    int
	servers     []string
	logLevel    string
	noColor     bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Answer a query, reading it from stdin when no argument is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.buildConfig(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			query, err := readQuery(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAgent(ctx, cfg, newModel(cfg.Model), query, newPrinter(cmd.OutOrStdout(), !opts.noColor))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	f.StringVarP(&opts.model, "model", "m", "", "model name, overrides the configuration")
	f.StringVar(&opts.baseURL, "base-url", "", "chat completions base URL")
	f.StringVarP(&opts.instruction, "instruction", "i", "", "task specific instructions")
	f.IntVar(&opts.maxSteps, "max-steps", agent.DefaultMaxSteps, "maximum number of reasoning rounds")
	f.StringArrayVarP(&opts.servers, "server", "s", nil, `stdio tool server command line, e.g. "npx @playwright/mcp@latest" (repeatable)`)
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	return cmd
}

// buildConfig loads the configuration file, if any, and applies the flags
// that were set on top of it.
func (o *runOptions) buildConfig(changed func(name string) bool) (*config.Config, error) {
	cfg := &config.Config{}
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if changed("model") {
		cfg.Model.Name = o.model
	}
	if changed("base-url") {
		cfg.Model.BaseURL = o.baseURL
	}
	if changed("instruction") {
		cfg.Instruction = o.instruction
	}
	if changed("max-steps") || cfg.MaxSteps == 0 {
		cfg.MaxSteps = o.maxSteps
	}
	if changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	for _, line := range o.servers {
		words, err := shellwords.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("parse --server %q: %w", line, err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("empty --server value")
		}
		cfg.Servers = append(cfg.Servers, config.ServerConfig{
			Command: words[0],
			Args:    words[1:],
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readQuery joins the arguments, or reads stdin when there are none.
func readQuery(args []string, stdin io.Reader) (string, error) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read query: %w", err)
		}
		query = strings.TrimSpace(string(data))
	}
	if query == "" {
		return "", errors.New("no query given")
	}
	return query, nil
}

func newModel(cfg config.ModelConfig) model.Model {
	opts := []openai.Option{openai.WithAPIKey(cfg.APIKey())}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(cfg.Name, opts...)
}

// runAgent runs query to completion and prints every event. The tool
// servers are always released before returning.
func runAgent(ctx context.Context, cfg *config.Config, m model.Model, query string, p *printer) error {
	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	}
	if cfg.Telemetry.Enabled() {
		clean, err := telemetry.Start(ctx, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("start telemetry: %w", err)
		}
		defer func() {
			if err := clean(); err != nil {
				log.Warnf("stop telemetry: %v", err)
			}
		}()
	}

	a := agent.New(m,
		agent.WithInstruction(cfg.Instruction),
		agent.WithServers(cfg.ToolServers()...),
		agent.WithMaxSteps(cfg.MaxSteps),
		agent.WithRetryPolicy(cfg.Retry.Policy()),
	)
	defer func() {
		if err := a.Cleanup(); err != nil {
			log.Warnf("cleanup: %v", err)
		}
	}()

	events, err := a.Run(ctx, query)
	if err != nil {
		return err
	}
	var failure error
	for e := range events {
		p.print(e)
		if e.IsFinal() && e.Result.Failed() {
			failure = e.Result.Err
		}
	}
	if failure != nil {
		return failure
	}
	return ctx.Err()
}
