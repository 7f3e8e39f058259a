// Copyright (c) 2024 santosr2
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package scheduler implements the Selection & Scheduler component
// (spec.md §4.E): it evaluates the selection algebra a command's flags
// describe into an ordered repo set, partitions that set into waves
// against the dependency graph, and runs each wave's tasks with bounded
// parallelism, hook composition, and cancellation semantics.
package scheduler

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jpetrucciani/harmonia/internal/config"
	"github.com/jpetrucciani/harmonia/internal/graph"
)

// SelectionInput is every flag the selection algebra reads, gathered from
// a command's CLI surface.
type SelectionInput struct {
	Explicit    []string
	Groups      []string
	All         bool
	Changed     bool
	WithDeps    bool
	WithAllDeps bool
	Include     []string
	Exclude     []string
	// Mutating marks an operation that must drop external repos unless
	// they were named explicitly (spec.md §4.E).
	Mutating bool
}

// Select evaluates the selection algebra against ws and g, returning the
// final repo id set in lexicographic order. changed holds the repos the
// VCS adapter reported as dirty, consulted only when in.Changed is set.
func Select(ws *config.Workspace, g *graph.Graph, changed map[string]bool, in SelectionInput) ([]string, error) {
	start := make(map[string]bool)
	explicitlyNamed := make(map[string]bool, len(in.Explicit))

	for _, id := range in.Explicit {
		if _, ok := ws.Repos[id]; !ok {
			return nil, &config.UnknownRepoError{Name: id, From: "selection"}
		}
		start[id] = true
		explicitlyNamed[id] = true
	}

	for _, name := range in.Groups {
		members, ok := ws.Groups[name]
		if !ok {
			return nil, &config.UnknownGroupError{Name: name}
		}
		for _, id := range members {
			start[id] = true
		}
	}

	if in.All {
		for id := range ws.Repos {
			start[id] = true
		}
	}

	if in.Changed {
		for id, dirty := range changed {
			if dirty {
				start[id] = true
			}
		}
	}

	for id := range ws.Repos {
		if matchesAnyGlob(id, in.Include) {
			start[id] = true
		}
	}

	usedExplicitInput := len(in.Explicit) > 0 || len(in.Groups) > 0 || in.All || in.Changed || len(in.Include) > 0
	if !usedExplicitInput {
		defaulted, err := defaultSelection(ws)
		if err != nil {
			return nil, err
		}
		for id := range defaulted {
			start[id] = true
		}
	}

	if in.WithAllDeps {
		for id := range snapshot(start) {
			for _, dep := range g.TransitiveDependenciesOf(id) {
				start[dep] = true
			}
		}
	} else if in.WithDeps {
		for id := range snapshot(start) {
			for _, dep := range g.DependenciesOf(id) {
				start[dep] = true
			}
		}
	}

	for id := range start {
		repo, ok := ws.Repos[id]
		if !ok || repo.Ignored || matchesAnyGlob(id, in.Exclude) {
			delete(start, id)
			continue
		}
		if in.Mutating && repo.External && !explicitlyNamed[id] {
			delete(start, id)
		}
	}

	result := make([]string, 0, len(start))
	for id := range start {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

// defaultSelection is the selection algebra's fallback when nothing was
// specified: the workspace's default group, or every repo when no default
// group is configured.
func defaultSelection(ws *config.Workspace) (map[string]bool, error) {
	out := make(map[string]bool)
	if ws.DefaultGroup == "" {
		for id := range ws.Repos {
			out[id] = true
		}
		return out, nil
	}
	members, ok := ws.Groups[ws.DefaultGroup]
	if !ok {
		return nil, &config.UnknownGroupError{Name: ws.DefaultGroup}
	}
	for _, id := range members {
		out[id] = true
	}
	return out, nil
}

func snapshot(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// matchesAnyGlob reports whether name matches any of patterns, where "*"
// stands for any run of characters.
func matchesAnyGlob(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesGlob(name, pattern) {
			return true
		}
	}
	return false
}

func matchesGlob(name, pattern string) bool {
	if pattern == name {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	re, err := regexp.Compile("^" + quoted + "$")
	if err != nil {
		return false
	}
	return re.MatchString(name)
}
