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
	"fmt"
	"strings"
)

// BraceRenderer substitutes `{name}` placeholders.
type BraceRenderer struct{}

var _ Renderer = BraceRenderer{}

// Render implements Renderer. A placeholder without a value falls back to the
// default of its declared Variable; an undeclared or required placeholder
// without a value is an error.
func (BraceRenderer) Render(_ context.Context, t *Template, variables map[string]string) (string, error) {
	if t == nil {
		return "", ErrInvalidTemplate.WithCause(fmt.Errorf("nil template"))
	}
	declared := make(map[string]Variable, len(t.Variables))
	for _, v := range t.Variables {
		declared[v.Name] = v
	}

	var b strings.Builder
	s := t.Content
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return "", ErrInvalidTemplate.WithCause(fmt.Errorf("unclosed placeholder at offset %d", i))
			}
			name := s[i+1 : i+1+end]
			val, err := lookup(name, variables, declared)
			if err != nil {
				return "", err
			}
			b.WriteString(val)
			i += end + 1
		case c == '}':
			return "", ErrInvalidTemplate.WithCause(fmt.Errorf("single '}' at offset %d", i))
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func lookup(name string, variables map[string]string, declared map[string]Variable) (string, error) {
	if val, ok := variables[name]; ok {
		return val, nil
	}
	v, ok := declared[name]
	if !ok || v.Required {
		return "", ErrMissingRequiredVar.WithCause(fmt.Errorf("variable %q", name))
	}
	return v.DefaultValue, nil
}
