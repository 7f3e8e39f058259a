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

// Package custom implements the manifest.Adapter for repos whose manifest
// is neither pyproject.toml, Cargo.toml, package.json nor go.mod: the repo's
// harmonia.toml supplies a VersionPattern and DependencyPattern regex, each
// required to declare a named "value" capture group, and this adapter does
// nothing but apply them with rewrite.ReplaceCapturedSpan.
package custom

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jpetrucciani/harmonia/internal/manifest"
	"github.com/jpetrucciani/harmonia/internal/manifest/rewrite"
	"github.com/jpetrucciani/harmonia/internal/semver"
)

func init() {
	manifest.Register(manifest.EcosystemCustom, func() manifest.Adapter {
		return New()
	})
}

// Adapter implements manifest.Adapter for a user-supplied regex spec.
type Adapter struct{}

// New creates a custom regex-driven adapter.
func New() *Adapter {
	return &Adapter{}
}

// ReadVersion applies spec.VersionPattern against content and returns its
// "value" capture as a semver Version. A missing or empty VersionPattern
// means this repo declares no version field of its own: Raw("").
func (a *Adapter) ReadVersion(_ context.Context, spec manifest.Spec, content []byte) (semver.Version, error) {
	if spec.VersionPattern == "" {
		return semver.ParseVersion("", semver.KindRaw)
	}
	re, err := compileNamed(spec.VersionPattern)
	if err != nil {
		return semver.Version{}, fmt.Errorf("custom adapter: version_pattern: %w", err)
	}
	m := re.FindSubmatch(content)
	if m == nil {
		return semver.ParseVersion("", semver.KindRaw)
	}
	return semver.ParseVersion(string(m[valueGroupIndex(re)]), semver.KindSemver)
}

// WriteVersion rewrites the span matched by spec.VersionPattern's "value"
// group in place.
func (a *Adapter) WriteVersion(_ context.Context, spec manifest.Spec, content []byte, newVersion semver.Version) ([]byte, error) {
	if spec.VersionPattern == "" {
		return nil, fmt.Errorf("custom adapter: no version_pattern configured for %s", spec.FilePath)
	}
	re, err := compileNamed(spec.VersionPattern)
	if err != nil {
		return nil, fmt.Errorf("custom adapter: version_pattern: %w", err)
	}
	return rewrite.ReplaceCapturedSpan(content, re, newVersion.String())
}

// ReadDependencies applies spec.DependencyPattern repeatedly, expecting it
// to declare both a "name" and a "value" named group per match.
func (a *Adapter) ReadDependencies(_ context.Context, spec manifest.Spec, content []byte) ([]manifest.Dependency, error) {
	if spec.DependencyPattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(spec.DependencyPattern)
	if err != nil {
		return nil, fmt.Errorf("custom adapter: dependency_pattern: %w", err)
	}
	nameIdx, valueIdx := -1, -1
	for i, n := range re.SubexpNames() {
		switch n {
		case "name":
			nameIdx = i
		case "value":
			valueIdx = i
		}
	}
	if nameIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("custom adapter: dependency_pattern must declare \"name\" and \"value\" capture groups")
	}

	matches := re.FindAllSubmatch(content, -1)
	deps := make([]manifest.Dependency, 0, len(matches))
	for _, m := range matches {
		deps = append(deps, manifest.Dependency{Name: string(m[nameIdx]), Constraint: string(m[valueIdx])})
	}
	return deps, nil
}

// WriteDependencyConstraint rewrites the "value" span of the
// DependencyPattern match whose "name" group equals name.
func (a *Adapter) WriteDependencyConstraint(_ context.Context, spec manifest.Spec, content []byte, name, newConstraint string) ([]byte, error) {
	if spec.DependencyPattern == "" {
		return nil, fmt.Errorf("custom adapter: no dependency_pattern configured for %s", spec.FilePath)
	}
	re, err := regexp.Compile(spec.DependencyPattern)
	if err != nil {
		return nil, fmt.Errorf("custom adapter: dependency_pattern: %w", err)
	}
	nameIdx, valueIdx := -1, -1
	for i, n := range re.SubexpNames() {
		switch n {
		case "name":
			nameIdx = i
		case "value":
			valueIdx = i
		}
	}
	if nameIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("custom adapter: dependency_pattern must declare \"name\" and \"value\" capture groups")
	}

	locs := re.FindAllSubmatchIndex(content, -1)
	for _, loc := range locs {
		nameStart, nameEnd := loc[2*nameIdx], loc[2*nameIdx+1]
		if string(content[nameStart:nameEnd]) != name {
			continue
		}
		valStart, valEnd := loc[2*valueIdx], loc[2*valueIdx+1]
		out := make([]byte, 0, len(content)-(valEnd-valStart)+len(newConstraint))
		out = append(out, content[:valStart]...)
		out = append(out, newConstraint...)
		out = append(out, content[valEnd:]...)
		return out, nil
	}
	return nil, fmt.Errorf("custom adapter: dependency %q not found", name)
}

func compileNamed(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if valueGroupIndex(re) < 0 {
		return nil, fmt.Errorf("pattern must declare a \"value\" capture group")
	}
	return re, nil
}

func valueGroupIndex(re *regexp.Regexp) int {
	for i, n := range re.SubexpNames() {
		if n == "value" {
			return i
		}
	}
	return -1
}
