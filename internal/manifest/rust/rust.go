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

// Package rust implements the manifest.Adapter for Cargo.toml.
package rust

import (
	"context"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jpetrucciani/harmonia/internal/manifest"
	"github.com/jpetrucciani/harmonia/internal/manifest/rewrite"
	"github.com/jpetrucciani/harmonia/internal/semver"
)

func init() {
	manifest.Register(manifest.EcosystemRust, func() manifest.Adapter {
		return New()
	})
}

// Adapter implements manifest.Adapter for Cargo.toml.
type Adapter struct{}

// New creates a Cargo.toml adapter.
func New() *Adapter {
	return &Adapter{}
}

// ReadVersion reads the [package].version field, defaulting the path to
// "package.version" when spec.VersionPath is unset — Cargo has exactly one
// place a crate's own version can live.
func (a *Adapter) ReadVersion(_ context.Context, spec manifest.Spec, content []byte) (semver.Version, error) {
	path := spec.VersionPath
	if len(path) == 0 {
		path = []string{"package", "version"}
	}

	var doc map[string]interface{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return semver.ParseVersion("", semver.KindRaw)
	}
	table := navigateTable(doc, path[:len(path)-1])
	if table == nil {
		return semver.ParseVersion("", semver.KindRaw)
	}
	raw, ok := table[path[len(path)-1]].(string)
	if !ok {
		return semver.ParseVersion("", semver.KindRaw)
	}
	return semver.ParseVersion(raw, semver.KindSemver)
}

// WriteVersion rewrites [package].version.
func (a *Adapter) WriteVersion(_ context.Context, spec manifest.Spec, content []byte, newVersion semver.Version) ([]byte, error) {
	section, key := "package", "version"
	if len(spec.VersionPath) > 0 {
		section, key = splitPath(spec.VersionPath)
	}
	return rewrite.TOMLScalarInSection(content, section, key, newVersion.String())
}

// ReadDependencies reads a dependency table. spec.DependenciesPath defaults
// to "dependencies"; callers pass ["dev-dependencies"] or
// ["build-dependencies"] for the other two Cargo dependency sections.
func (a *Adapter) ReadDependencies(_ context.Context, spec manifest.Spec, content []byte) ([]manifest.Dependency, error) {
	path := spec.DependenciesPath
	if len(path) == 0 {
		path = []string{"dependencies"}
	}

	var doc map[string]interface{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("rust adapter: decode %s: %w", spec.FilePath, err)
	}
	table := navigateTable(doc, path)
	if table == nil {
		return nil, nil
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

// WriteDependencyConstraint rewrites one dependency's version inside the
// table named by spec.DependenciesPath (default "dependencies").
func (a *Adapter) WriteDependencyConstraint(_ context.Context, spec manifest.Spec, content []byte, name, newConstraint string) ([]byte, error) {
	path := spec.DependenciesPath
	if len(path) == 0 {
		path = []string{"dependencies"}
	}
	return rewrite.TOMLDependencyInSection(content, strings.Join(path, "."), name, newConstraint)
}

func splitPath(path []string) (section, key string) {
	if len(path) <= 1 {
		return "", strings.Join(path, "")
	}
	return strings.Join(path[:len(path)-1], "."), path[len(path)-1]
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
