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

// Package node implements the manifest.Adapter for package.json. Unlike the
// teacher's npm integration, which reads into a struct and re-marshals the
// whole document with json.MarshalIndent on write, this adapter never
// decodes for writes: every mutation goes through rewrite/json.go's
// span-scoped replace so key order, indentation and unrelated fields are
// untouched. Decoding with encoding/json is still used for the read side,
// where byte-exactness does not matter.
package node

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jpetrucciani/harmonia/internal/manifest"
	"github.com/jpetrucciani/harmonia/internal/manifest/rewrite"
	"github.com/jpetrucciani/harmonia/internal/semver"
)

func init() {
	manifest.Register(manifest.EcosystemNode, func() manifest.Adapter {
		return New()
	})
}

// dependencyBlocks are package.json's four standard dependency tables, in
// the order ReadDependencies reports them.
var dependencyBlocks = []string{"dependencies", "devDependencies", "peerDependencies", "optionalDependencies"}

type packageJSON struct {
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// Adapter implements manifest.Adapter for package.json.
type Adapter struct{}

// New creates a package.json adapter.
func New() *Adapter {
	return &Adapter{}
}

// ReadVersion reads the top-level "version" field.
func (a *Adapter) ReadVersion(_ context.Context, _ manifest.Spec, content []byte) (semver.Version, error) {
	var doc packageJSON
	if err := json.Unmarshal(content, &doc); err != nil || doc.Version == "" {
		return semver.ParseVersion("", semver.KindRaw)
	}
	return semver.ParseVersion(doc.Version, semver.KindSemver)
}

// WriteVersion rewrites the top-level "version" field in place.
func (a *Adapter) WriteVersion(_ context.Context, _ manifest.Spec, content []byte, newVersion semver.Version) ([]byte, error) {
	return rewrite.JSONStringField(content, "version", newVersion.String())
}

// ReadDependencies reads all four standard dependency blocks. The
// DependenciesPath field is unused here: node's block set is fixed.
func (a *Adapter) ReadDependencies(_ context.Context, _ manifest.Spec, content []byte) ([]manifest.Dependency, error) {
	var doc packageJSON
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("node adapter: decode package.json: %w", err)
	}

	blocks := []map[string]string{doc.Dependencies, doc.DevDependencies, doc.PeerDependencies, doc.OptionalDependencies}
	deps := make([]manifest.Dependency, 0)
	for _, block := range blocks {
		for name, constraint := range block {
			deps = append(deps, manifest.Dependency{Name: name, Constraint: constraint})
		}
	}
	return deps, nil
}

// WriteDependencyConstraint rewrites one dependency's version in the
// "dependencies" block, preserving its existing ^/~/>= prefix. Use
// WriteDependencyConstraintIn for the other three blocks.
func (a *Adapter) WriteDependencyConstraint(ctx context.Context, spec manifest.Spec, content []byte, name, newConstraint string) ([]byte, error) {
	return a.WriteDependencyConstraintIn(ctx, spec, content, "dependencies", name, newConstraint)
}

// WriteDependencyConstraintIn rewrites one dependency's version inside a
// specific block ("dependencies", "devDependencies", ...), keeping its
// existing constraint-prefix convention.
func (a *Adapter) WriteDependencyConstraintIn(_ context.Context, _ manifest.Spec, content []byte, block, name, newConstraint string) ([]byte, error) {
	return rewrite.JSONDependencyField(content, block, name, newConstraint, true)
}

// DependencyBlocks returns the ordered set of dependency block names this
// adapter reads, for callers that need to locate which block a dependency
// actually lives in before calling WriteDependencyConstraintIn.
func DependencyBlocks() []string {
	return dependencyBlocks
}
