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
	"fmt"

	"github.com/spf13/cobra"

	itelemetry "github.com/rodrigobaron/mcp-agent/internal/telemetry"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = itelemetry.ServiceVersion

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mcpagent",
		Short:         "Run a tool using agent backed by MCP servers",
		SilenceUsage:  true,
	}
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mcpagent %s\n", version)
		},
	}
}
