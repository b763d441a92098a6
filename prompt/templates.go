//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package prompt

import (
	"context"
)

// Variable names used by the built-in templates.
const (
	VarInstruction     = "instruction"
	VarUserInstruction = "user_instruction"
)

// System is the system prompt of the agent. Its instruction placeholder
// receives the rendered UserInstructions, or nothing.
var System = &Template{
	ID:          "system",
	Description: "Frames the model as a tool using agent.",
	Content: `
You are an intelligent agent that can use tools to solve tasks.
When you need information or need to perform an action, use the appropriate tool.
Always think step-by-step about what you're trying to accomplish.

{instruction}

Guidelines for using tools:
1. Only use tools when necessary
2. When calling a tool, provide all required parameters
3. Wait for tool results before proceeding
4. If a tool fails, try to understand why and adjust your approach
5. When you have a final answer, provide it directly without calling additional tools
`,
	Variables: []Variable{
		{Name: VarInstruction, Description: "Rendered task instructions."},
	},
}

// UserInstructions wraps caller supplied instructions.
var UserInstructions = &Template{
	ID:          "user_instructions",
	Description: "Task specific instructions appended to the system prompt.",
	Content: `
Task-specific instructions:
{user_instruction}

Complete the task according to these instructions, using available tools when appropriate.
`,
	Variables: []Variable{
		{Name: VarUserInstruction, Description: "Instructions given by the caller.", Required: true},
	},
}

// RenderSystem renders t with the instruction wrapped in UserInstructions.
// An empty instruction leaves the placeholder empty.
func RenderSystem(ctx context.Context, r Renderer, t *Template, instruction string) (string, error) {
	wrapped := ""
	if instruction != "" {
		var err error
		wrapped, err = r.Render(ctx, UserInstructions, map[string]string{VarUserInstruction: instruction})
		if err != nil {
			return "", err
		}
	}
	return r.Render(ctx, t, map[string]string{VarInstruction: wrapped})
}
