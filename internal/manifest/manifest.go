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

// Package manifest defines the Ecosystem Manifest Adapter contract and the
// compiled-in registry of adapters (python, rust, node, go, custom). Each
// adapter hides its manifest's file format behind four operations: read the
// package version, write a new version, read the declared dependencies, and
// write a single dependency's constraint — every write preserving the
// surrounding file's formatting outside the changed span.
package manifest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jpetrucciani/harmonia/internal/semver"
)

// Ecosystem tags the manifest adapter a repo uses.
type Ecosystem string

const (
	EcosystemPython Ecosystem = "python"
	EcosystemRust   Ecosystem = "rust"
	EcosystemNode   Ecosystem = "node"
	EcosystemGo     Ecosystem = "go"
	EcosystemCustom Ecosystem = "custom"
)

// Spec is the repo-supplied description of where a manifest lives and how
// to read it: the file path, the extraction path for its version field,
// the extraction path for its dependency list, and an optional regex
// fallback for ecosystems (or custom specs) that need one.
type Spec struct {
	FilePath          string
	VersionPath       []string
	DependenciesPath  []string
	VersionPattern    string
	DependencyPattern string
	InternalPattern   string
	InternalPackages  []string
}

// Dependency is one entry read from a manifest's dependency list. Internal
// is left false by adapters: classifying a dependency as internal requires
// resolving its name against the workspace's repos (via internal_pattern
// or internal_packages, §3), which is the Dependency Graph Engine's job,
// not the adapter's.
type Dependency struct {
	Name       string
	Constraint string
	Internal   bool
}

// Adapter is the Ecosystem Manifest Adapter contract (spec.md §4.B).
// Implementations must not reorder or reformat any byte of the manifest
// file outside the span they are asked to change.
type Adapter interface {
	// ReadVersion extracts the package's own version from content. An
	// ecosystem that cannot express a version (e.g. go.mod) returns a
	// KindRaw empty Version rather than an error.
	ReadVersion(ctx context.Context, spec Spec, content []byte) (semver.Version, error)

	// WriteVersion rewrites the manifest's version field in place,
	// returning the new file content without touching disk.
	WriteVersion(ctx context.Context, spec Spec, content []byte, newVersion semver.Version) ([]byte, error)

	// ReadDependencies extracts the manifest's dependency list from
	// content. A missing dependency table is not an error: it means "no
	// internal dependencies".
	ReadDependencies(ctx context.Context, spec Spec, content []byte) ([]Dependency, error)

	// WriteDependencyConstraint rewrites one dependency's constraint string
	// in place, returning the new file content without touching disk.
	WriteDependencyConstraint(ctx context.Context, spec Spec, content []byte, name, newConstraint string) ([]byte, error)
}

var (
	mu       sync.RWMutex
	registry = make(map[Ecosystem]func() Adapter)
)

// Register adds an adapter constructor to the compiled-in registry. Called
// from each adapter package's init(), mirroring the teacher's integrations
// registry pattern minus runtime plugin discovery — Harmonia's ecosystems
// are a fixed, compiled-in set.
func Register(ecosystem Ecosystem, constructor func() Adapter) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[ecosystem]; exists {
		panic("manifest adapter already registered: " + string(ecosystem))
	}
	registry[ecosystem] = constructor
}

// Get returns a new Adapter instance for the given ecosystem.
func Get(ecosystem Ecosystem) (Adapter, error) {
	mu.RLock()
	defer mu.RUnlock()

	constructor, ok := registry[ecosystem]
	if !ok {
		return nil, fmt.Errorf("manifest adapter %q not registered", ecosystem)
	}
	return constructor(), nil
}

// List returns the sorted set of registered ecosystem tags.
func List() []Ecosystem {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]Ecosystem, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
