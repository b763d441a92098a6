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
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rodrigobaron/mcp-agent/log"
	"github.com/rodrigobaron/mcp-agent/tool"
)

// ToolFilter selects which of the tools listed by a server are registered.
type ToolFilter interface {
	Filter(ctx context.Context, tools []*tool.Declaration) []*tool.Declaration
}

// ToolFilterFunc is a function type that implements ToolFilter interface.
type ToolFilterFunc func(ctx context.Context, tools []*tool.Declaration) []*tool.Declaration

// Filter implements the ToolFilter interface.
func (f ToolFilterFunc) Filter(ctx context.Context, tools []*tool.Declaration) []*tool.Declaration {
	return f(ctx, tools)
}

// ToolNameFilter filters tools by a list of tool names.
type ToolNameFilter struct {
	// Names is the list of tool names to filter by.
	Names []string
	// Mode specifies whether to include or exclude the listed names.
	Mode filterMode
}

// Filter implements the ToolFilter interface.
func (f *ToolNameFilter) Filter(ctx context.Context, tools []*tool.Declaration) []*tool.Declaration {
	if len(f.Names) == 0 {
		return tools
	}

	nameSet := make(map[string]bool, len(f.Names))
	for _, name := range f.Names {
		nameSet[name] = true
	}

	filtered := make([]*tool.Declaration, 0, len(tools))
	for _, t := range tools {
		if keep(f.Mode, nameSet[t.Name]) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// CompositeFilter combines multiple filters using AND logic.
type CompositeFilter struct {
	// Filters is the list of filters to combine.
	Filters []ToolFilter
}

// Filter implements the ToolFilter interface.
func (f *CompositeFilter) Filter(ctx context.Context, tools []*tool.Declaration) []*tool.Declaration {
	result := tools
	for _, filter := range f.Filters {
		result = filter.Filter(ctx, result)
	}
	return result
}

// PatternFilter filters tools using regular expressions on names and
// descriptions.
type PatternFilter struct {
	// NamePatterns is the list of regex patterns to match against tool names.
	NamePatterns []string
	// DescriptionPatterns is the list of regex patterns to match against descriptions.
	DescriptionPatterns []string
	// Mode specifies whether to include or exclude matches.
	Mode filterMode
}

// Filter implements the ToolFilter interface. Invalid patterns never match.
func (f *PatternFilter) Filter(ctx context.Context, tools []*tool.Declaration) []*tool.Declaration {
	if len(f.NamePatterns) == 0 && len(f.DescriptionPatterns) == 0 {
		return tools
	}
	names := compileAll(f.NamePatterns)
	descs := compileAll(f.DescriptionPatterns)

	filtered := make([]*tool.Declaration, 0, len(tools))
	for _, t := range tools {
		if keep(f.Mode, matchAny(names, t.Name) || matchAny(descs, t.Description)) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// GlobFilter filters tools by shell style name patterns such as "read_*"
// or "{get,list}_*". A name without metacharacters matches only itself.
type GlobFilter struct {
	Patterns []string
	Mode     filterMode
}

// Filter implements the ToolFilter interface. Invalid patterns never match.
func (f *GlobFilter) Filter(ctx context.Context, tools []*tool.Declaration) []*tool.Declaration {
	if len(f.Patterns) == 0 {
		return tools
	}
	patterns := make([]string, 0, len(f.Patterns))
	for _, p := range f.Patterns {
		if !doublestar.ValidatePattern(p) {
			log.Warnf("ignoring invalid tool filter glob %q", p)
			continue
		}
		patterns = append(patterns, p)
	}

	filtered := make([]*tool.Declaration, 0, len(tools))
	for _, t := range tools {
		if keep(f.Mode, globAny(patterns, t.Name)) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func globAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// keep applies the filter mode to a match. Unknown modes behave as include.
func keep(mode filterMode, matched bool) bool {
	if mode == FilterModeExclude {
		return !matched
	}
	return matched
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Warnf("ignoring invalid tool filter pattern %q: %v", p, err)
			continue
		}
		out = append(out, re)
	}
	return out
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// NewIncludeFilter creates a filter that only includes specified tool names.
func NewIncludeFilter(toolNames ...string) ToolFilter {
	return &ToolNameFilter{
		Names: toolNames,
		Mode:  FilterModeInclude,
	}
}

// NewExcludeFilter creates a filter that excludes specified tool names.
func NewExcludeFilter(toolNames ...string) ToolFilter {
	return &ToolNameFilter{
		Names: toolNames,
		Mode:  FilterModeExclude,
	}
}

// NewPatternIncludeFilter creates a filter that includes tools matching name patterns.
func NewPatternIncludeFilter(namePatterns ...string) ToolFilter {
	return &PatternFilter{
		NamePatterns: namePatterns,
		Mode:         FilterModeInclude,
	}
}

// NewPatternExcludeFilter creates a filter that excludes tools matching name patterns.
func NewPatternExcludeFilter(namePatterns ...string) ToolFilter {
	return &PatternFilter{
		NamePatterns: namePatterns,
		Mode:         FilterModeExclude,
	}
}

// NewGlobIncludeFilter creates a filter that includes tools matching globs.
func NewGlobIncludeFilter(globs ...string) ToolFilter {
	return &GlobFilter{Patterns: globs, Mode: FilterModeInclude}
}

// NewGlobExcludeFilter creates a filter that excludes tools matching globs.
func NewGlobExcludeFilter(globs ...string) ToolFilter {
	return &GlobFilter{Patterns: globs, Mode: FilterModeExclude}
}

// NewDescriptionFilter creates a filter that matches tools by description patterns.
func NewDescriptionFilter(descPatterns ...string) ToolFilter {
	return &PatternFilter{
		DescriptionPatterns: descPatterns,
		Mode:                FilterModeInclude,
	}
}

// NewCompositeFilter creates a composite filter that applies multiple filters.
func NewCompositeFilter(filters ...ToolFilter) ToolFilter {
	return &CompositeFilter{
		Filters: filters,
	}
}
