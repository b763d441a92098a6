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
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/rodrigobaron/mcp-agent/event"
)

type printer struct {
	w         io.Writer
	assistant lipgloss.Style
	tool      lipgloss.Style
	summary   lipgloss.Style
	failure   lipgloss.Style
}

func newPrinter(w io.Writer, color bool) *printer {
	p := &printer{
		w:         w,
		assistant: lipgloss.NewStyle(),
		tool:      lipgloss.NewStyle(),
		summary:   lipgloss.NewStyle(),
		failure:   lipgloss.NewStyle(),
	}
	if color {
		p.assistant = p.assistant.Bold(true).Foreground(lipgloss.Color("12"))
		p.tool = p.tool.Bold(true).Foreground(lipgloss.Color("10"))
		p.summary = p.summary.Faint(true)
		p.failure = p.failure.Bold(true).Foreground(lipgloss.Color("9"))
	}
	return p
}

func (p *printer) print(e *event.Event) {
	switch {
	case e.Step != nil:
		if e.Step.Type == event.StepTypeAssistant {
			fmt.Fprintf(p.w, "%s %s\n", p.assistant.Render("[ASSISTANT]:"), e.Step.Content)
			return
		}
		fmt.Fprintf(p.w, "%s\n%s\n", p.tool.Render("[TOOL]:"), e.Step.Content)
	case e.Result != nil:
		r := e.Result
		if r.Failed() {
			fmt.Fprintf(p.w, "%s %v\n", p.failure.Render("[ERROR]:"), r.Err)
		}
		fmt.Fprintln(p.w, p.summary.Render(fmt.Sprintf("steps: %d, records: %d, tokens: %d",
			r.TotalSteps, len(r.Steps), r.TotalTokensUsed)))
	}
}
