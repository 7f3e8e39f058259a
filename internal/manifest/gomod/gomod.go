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

// Package gomod implements the manifest.Adapter for go.mod. A Go module has
// no version field of its own (its version is a VCS tag, not manifest
// content), so ReadVersion always returns Raw(""); the adapter's real job
// is require-line constraint rewriting.
package gomod

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strings"

	xsemver "golang.org/x/mod/semver"

	"github.com/jpetrucciani/harmonia/internal/manifest"
	"github.com/jpetrucciani/harmonia/internal/semver"
)

func init() {
	manifest.Register(manifest.EcosystemGo, func() manifest.Adapter {
		return New()
	})
}

var (
	requirePattern = regexp.MustCompile(`^\s*(\S+)\s+(v\S+)(\s*//\s*indirect)?\s*$`)
	replacePattern = regexp.MustCompile(`^\s*(\S+)\s+=>\s+`)
)

// Adapter implements manifest.Adapter for go.mod.
type Adapter struct{}

// New creates a go.mod adapter.
func New() *Adapter {
	return &Adapter{}
}

// ReadVersion always returns Raw(""): go.mod carries no version field for
// its own module, only for its dependencies.
func (a *Adapter) ReadVersion(_ context.Context, _ manifest.Spec, _ []byte) (semver.Version, error) {
	return semver.ParseVersion("", semver.KindRaw)
}

// WriteVersion is a no-op that returns content unchanged: there is nothing
// in go.mod to rewrite for the module's own version.
func (a *Adapter) WriteVersion(_ context.Context, _ manifest.Spec, content []byte, _ semver.Version) ([]byte, error) {
	return content, nil
}

// ReadDependencies parses the require block(s), skipping indirect
// dependencies and anything listed in a replace directive, mirroring the
// teacher's require-line handling.
func (a *Adapter) ReadDependencies(_ context.Context, _ manifest.Spec, content []byte) ([]manifest.Dependency, error) {
	deps := make([]manifest.Dependency, 0)
	replacements := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	inRequireBlock := false
	inReplaceBlock := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "require (":
			inRequireBlock = true
			continue
		case line == "replace (":
			inReplaceBlock = true
			continue
		case line == ")":
			inRequireBlock = false
			inReplaceBlock = false
			continue
		}

		if inReplaceBlock {
			if m := replacePattern.FindStringSubmatch(line); len(m) > 1 {
				replacements[m[1]] = true
			}
			continue
		}

		if strings.HasPrefix(line, "replace ") {
			if m := replacePattern.FindStringSubmatch(strings.TrimPrefix(line, "replace ")); len(m) > 1 {
				replacements[m[1]] = true
			}
			continue
		}

		if strings.HasPrefix(line, "require ") && !strings.HasSuffix(line, "(") {
			if dep, indirect := parseRequireLine(strings.TrimPrefix(line, "require ")); dep != nil && !indirect {
				deps = append(deps, *dep)
			}
			continue
		}

		if inRequireBlock {
			if dep, indirect := parseRequireLine(line); dep != nil && !indirect {
				deps = append(deps, *dep)
			}
		}
	}

	filtered := deps[:0]
	for _, dep := range deps {
		if !replacements[dep.Name] && !strings.HasPrefix(dep.Constraint, "v0.0.0-") {
			filtered = append(filtered, dep)
		}
	}
	return filtered, nil
}

func parseRequireLine(line string) (dep *manifest.Dependency, indirect bool) {
	m := requirePattern.FindStringSubmatch(line)
	if len(m) < 3 {
		return nil, false
	}
	modulePath, version := m[1], m[2]
	indirect = len(m) > 3 && strings.TrimSpace(m[3]) != ""
	// go.mod versions are always exact pins; tag malformed ones so the
	// dependency graph engine can report them rather than silently drop them.
	if !xsemver.IsValid(version) {
		version = version + " (invalid)"
	}
	return &manifest.Dependency{Name: modulePath, Constraint: version}, indirect
}

// WriteDependencyConstraint rewrites a require line's version in place,
// matching "module/path vX.Y.Z" textually so comments and column alignment
// in the surrounding require block are untouched.
func (a *Adapter) WriteDependencyConstraint(_ context.Context, _ manifest.Spec, content []byte, name, newConstraint string) ([]byte, error) {
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	lines := make([]string, 0)
	found := false
	lineStart := regexp.MustCompile(`^(\s*)` + regexp.QuoteMeta(name) + `(\s+)v\S+(\s*//\s*indirect)?\s*$`)

	for scanner.Scan() {
		line := scanner.Text()
		if m := lineStart.FindStringSubmatch(line); m != nil {
			suffix := m[3]
			lines = append(lines, m[1]+name+m[2]+newConstraint+suffix)
			found = true
			continue
		}
		lines = append(lines, line)
	}
	if !found {
		return nil, fmt.Errorf("gomod adapter: require line for %q not found", name)
	}
	out := strings.Join(lines, "\n")
	if strings.HasSuffix(string(content), "\n") {
		out += "\n"
	}
	return []byte(out), nil
}
