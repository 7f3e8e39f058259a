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

// Package python implements the manifest.Adapter for pyproject.toml, covering
// both PEP 621 ([project]) and Poetry ([tool.poetry]) layouts.
package python

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jpetrucciani/harmonia/internal/manifest"
	"github.com/jpetrucciani/harmonia/internal/manifest/rewrite"
	"github.com/jpetrucciani/harmonia/internal/semver"
)

func init() {
	manifest.Register(manifest.EcosystemPython, func() manifest.Adapter {
		return New()
	})
}

// Adapter implements manifest.Adapter for pyproject.toml.
type Adapter struct{}

// New creates a Python pyproject.toml adapter.
func New() *Adapter {
	return &Adapter{}
}

// splitPath separates a dotted VersionPath/DependenciesPath into the
// section (table header) and the final key within it, e.g.
// []string{"tool", "poetry", "version"} -> ("tool.poetry", "version").
func splitPath(path []string) (section, key string) {
	if len(path) == 0 {
		return "", ""
	}
	if len(path) == 1 {
		return "", path[0]
	}
	return strings.Join(path[:len(path)-1], "."), path[len(path)-1]
}

// ReadVersion decodes the full document and walks spec.VersionPath; when
// the path is absent it falls back to spec.VersionPattern against the raw
// text, and failing that returns Raw("") per the ambiguity policy.
func (a *Adapter) ReadVersion(_ context.Context, spec manifest.Spec, content []byte) (semver.Version, error) {
	if len(spec.VersionPath) > 0 {
		if raw, ok := lookupTOMLPath(content, spec.VersionPath); ok {
			return semver.ParseVersion(raw, semver.KindSemver)
		}
	}
	if spec.VersionPattern != "" {
		if raw, ok := matchPattern(content, spec.VersionPattern); ok {
			return semver.ParseVersion(raw, semver.KindSemver)
		}
	}
	return semver.ParseVersion("", semver.KindRaw)
}

// WriteVersion rewrites the version field in the table named by
// spec.VersionPath, preserving everything else in the file byte-for-byte.
func (a *Adapter) WriteVersion(_ context.Context, spec manifest.Spec, content []byte, newVersion semver.Version) ([]byte, error) {
	section, key := splitPath(spec.VersionPath)
	if key == "" {
		return nil, fmt.Errorf("python adapter: no VersionPath configured for %s", spec.FilePath)
	}
	if section == "" {
		return rewrite.TOMLScalarInSection(content, "project", key, newVersion.String())
	}
	return rewrite.TOMLScalarInSection(content, section, key, newVersion.String())
}

// ReadDependencies decodes the table named by spec.DependenciesPath. Poetry's
// inline-table form (name = { version = "...", extras = [...] }) and the
// PEP 621 plain-string-list form ("name>=1.0") are both supported.
func (a *Adapter) ReadDependencies(_ context.Context, spec manifest.Spec, content []byte) ([]manifest.Dependency, error) {
	if len(spec.DependenciesPath) == 0 {
		return nil, nil
	}

	var doc map[string]interface{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("python adapter: decode %s: %w", spec.FilePath, err)
	}

	table := navigateTable(doc, spec.DependenciesPath)
	if table == nil {
		return lookupDependencyListSyntax(content, spec.DependenciesPath)
	}

	deps := make([]manifest.Dependency, 0, len(table))
	for name, val := range table {
		switch v := val.(type) {
		case string:
			deps = append(deps, manifest.Dependency{Name: name, Constraint: v})
		case map[string]interface{}:
			if version, ok := v["version"].(string); ok {
				deps = append(deps, manifest.Dependency{Name: name, Constraint: version})
			}
		}
	}
	return deps, nil
}

// WriteDependencyConstraint rewrites one dependency's constraint inside the
// table named by spec.DependenciesPath.
func (a *Adapter) WriteDependencyConstraint(_ context.Context, spec manifest.Spec, content []byte, name, newConstraint string) ([]byte, error) {
	if len(spec.DependenciesPath) == 0 {
		return nil, fmt.Errorf("python adapter: no DependenciesPath configured for %s", spec.FilePath)
	}
	section := strings.Join(spec.DependenciesPath, ".")
	return rewrite.TOMLDependencyInSection(content, section, name, newConstraint)
}

func navigateTable(doc map[string]interface{}, path []string) map[string]interface{} {
	cur := doc
	for _, seg := range path {
		next, ok := cur[seg]
		if !ok {
			return nil
		}
		table, ok := next.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = table
	}
	return cur
}

func lookupTOMLPath(content []byte, path []string) (string, bool) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return "", false
	}
	section, key := splitPath(path)
	table := doc
	if section != "" {
		table = navigateTable(doc, strings.Split(section, "."))
		if table == nil {
			return "", false
		}
	}
	val, ok := table[key]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

func matchPattern(content []byte, pattern string) (string, bool) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false
	}
	m := re.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return string(m[1]), true
	}
	return string(m[0]), true
}

// lookupDependencyListSyntax handles PEP 621's `dependencies = ["pkg>=1.0", ...]`
// list-of-string-specifier form, which go-toml decodes as []interface{}
// rather than a table.
func lookupDependencyListSyntax(content []byte, path []string) ([]manifest.Dependency, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("python adapter: decode dependency list: %w", err)
	}
	section, key := splitPath(path)
	table := doc
	if section != "" {
		table = navigateTable(doc, strings.Split(section, "."))
		if table == nil {
			return nil, nil
		}
	}
	raw, ok := table[key].([]interface{})
	if !ok {
		return nil, nil
	}

	specifierPattern := regexp.MustCompile(`^([A-Za-z0-9_.-]+)\s*(.*)$`)
	deps := make([]manifest.Dependency, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		m := specifierPattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		deps = append(deps, manifest.Dependency{Name: m[1], Constraint: strings.TrimSpace(m[2])})
	}
	return deps, nil
}
