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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rodrigobaron/mcp-agent/tool"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

var errTransportClosed = errors.New("transport is closed")

// convertInputSchema turns the schema published by the server into a plain
// JSON object. A missing or unreadable schema becomes an empty object schema.
func convertInputSchema(schema any) map[string]any {
	fallback := map[string]any{"type": "object", "properties": map[string]any{}}
	if schema == nil {
		return fallback
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return fallback
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return fallback
	}
	if t, _ := m["type"].(string); t == "" {
		m["type"] = "object"
	}
	return m
}

// convertContents keeps text parts as text and replaces any other part by a
// "[<type> content]" placeholder.
func convertContents(contents []mcp.Content) []tool.Content {
	out := make([]tool.Content, 0, len(contents))
	for _, c := range contents {
		if text, ok := c.(mcp.TextContent); ok {
			out = append(out, tool.Content{Type: tool.ContentText, Text: text.Text})
			continue
		}
		if text, ok := c.(*mcp.TextContent); ok && text != nil {
			out = append(out, tool.Content{Type: tool.ContentText, Text: text.Text})
			continue
		}
		out = append(out, describeContent(c))
	}
	return out
}

// describeContent reads the kind of a non text part from its wire form.
func describeContent(c mcp.Content) tool.Content {
	var head struct {
		Type     string `json:"type"`
		MIMEType string `json:"mimeType"`
	}
	if b, err := json.Marshal(c); err == nil {
		_ = json.Unmarshal(b, &head)
	}
	kind := head.Type
	if kind == "" {
		kind = "unknown"
	}
	return tool.Content{
		Type:     kind,
		Text:     fmt.Sprintf("[%s content]", kind),
		MIMEType: head.MIMEType,
	}
}
