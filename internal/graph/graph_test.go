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

package graph

import (
	"testing"

	"github.com/jpetrucciani/harmonia/internal/config"
	"github.com/jpetrucciani/harmonia/internal/manifest"
)

// linearChainWorkspace builds core <- lib <- api (lib depends on core, api
// depends on lib) purely via depends_on, matching spec.md's linear-chain
// scenario.
func linearChainWorkspace() *config.Workspace {
	return &config.Workspace{
		Repos: map[string]*config.Repo{
			"core": {ID: "core", PackageName: "core"},
			"lib":  {ID: "lib", PackageName: "lib", DependsOn: []string{"core"}},
			"api":  {ID: "api", PackageName: "api", DependsOn: []string{"lib"}},
		},
	}
}

func TestBuildLinearChainOrder(t *testing.T) {
	ws := linearChainWorkspace()
	g, warnings := Build(ws, nil)
	if len(warnings) != 0 {
		t.Fatalf("Build() warnings = %v, want none", warnings)
	}

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}
	want := []string{"core", "lib", "api"}
	if len(order) != len(want) {
		t.Fatalf("TopologicalSort() = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("TopologicalSort()[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestCascadeImpactLinearChain(t *testing.T) {
	ws := linearChainWorkspace()
	g, _ := Build(ws, nil)

	got := g.CascadeImpact("core")
	want := map[string]bool{"lib": true, "api": true}
	if len(got) != len(want) {
		t.Fatalf("CascadeImpact(core) = %v, want %v", got, want)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected dependent %q", id)
		}
	}
}

func TestIgnoredRepoExcludedFromGraph(t *testing.T) {
	ws := linearChainWorkspace()
	ws.Repos["lib"].Ignored = true

	g, _ := Build(ws, nil)
	if g.HasNode("lib") {
		t.Error("HasNode(lib) = true, want false for an ignored repo")
	}
}

func TestBuildFromManifestDependenciesWithInternalPattern(t *testing.T) {
	ws := &config.Workspace{
		Repos: map[string]*config.Repo{
			"core": {ID: "core", PackageName: "acme-core"},
			"cli": {
				ID: "cli", PackageName: "acme-cli",
				Dependencies: config.DependencyPolicy{InternalPattern: "^acme-"},
			},
		},
	}
	deps := map[string][]manifest.Dependency{
		"cli": {
			{Name: "acme-core", Constraint: "^1.0.0"},
			{Name: "requests", Constraint: ">=2.0"},
		},
	}

	g, warnings := Build(ws, deps)
	if len(warnings) != 0 {
		t.Fatalf("Build() warnings = %v, want none", warnings)
	}
	if got := g.DependenciesOf("cli"); len(got) != 1 || got[0] != "core" {
		t.Errorf("DependenciesOf(cli) = %v, want [core]", got)
	}
}

func TestBuildBadInternalPatternProducesWarning(t *testing.T) {
	ws := &config.Workspace{
		Repos: map[string]*config.Repo{
			"cli": {ID: "cli", Dependencies: config.DependencyPolicy{InternalPattern: "("}},
		},
	}
	_, warnings := Build(ws, map[string][]manifest.Dependency{"cli": {{Name: "x"}}})
	if len(warnings) != 1 {
		t.Fatalf("Build() warnings = %v, want 1 BadInternalPatternError", warnings)
	}
	if _, ok := warnings[0].(*config.BadInternalPatternError); !ok {
		t.Errorf("warning type = %T, want *config.BadInternalPatternError", warnings[0])
	}
}

func TestManifestConstraintWinsOverDependsOn(t *testing.T) {
	ws := &config.Workspace{
		Repos: map[string]*config.Repo{
			"core": {ID: "core", PackageName: "core"},
			"lib": {
				ID: "lib", PackageName: "lib", DependsOn: []string{"core"},
				Dependencies: config.DependencyPolicy{InternalPackages: []string{"core"}},
			},
		},
	}
	deps := map[string][]manifest.Dependency{
		"lib": {{Name: "core", Constraint: "^2.0.0"}},
	}

	g, _ := Build(ws, deps)
	edge, ok := g.EdgeBetween("lib", "core")
	if !ok {
		t.Fatal("EdgeBetween(lib, core) not found")
	}
	if edge.Source != EdgeSourceManifest {
		t.Errorf("edge.Source = %q, want manifest", edge.Source)
	}
	if edge.Constraint.Raw != "^2.0.0" {
		t.Errorf("edge.Constraint.Raw = %q, want ^2.0.0", edge.Constraint.Raw)
	}
	if len(g.Secondary()) != 1 {
		t.Errorf("len(Secondary()) = %d, want 1 (the superseded depends_on edge)", len(g.Secondary()))
	}
}

func TestTransitiveDependenciesMemoized(t *testing.T) {
	ws := linearChainWorkspace()
	g, _ := Build(ws, nil)

	first := g.TransitiveDependenciesOf("api")
	second := g.TransitiveDependenciesOf("api")
	if len(first) != len(second) {
		t.Fatalf("memoized result changed between calls: %v vs %v", first, second)
	}
	want := map[string]bool{"core": true, "lib": true}
	for _, id := range first {
		if !want[id] {
			t.Errorf("unexpected transitive dependency %q", id)
		}
	}
}

func TestMergeOrderRestrictsToClosure(t *testing.T) {
	ws := &config.Workspace{
		Repos: map[string]*config.Repo{
			"core":     {ID: "core", PackageName: "core"},
			"lib":      {ID: "lib", PackageName: "lib", DependsOn: []string{"core"}},
			"api":      {ID: "api", PackageName: "api", DependsOn: []string{"lib"}},
			"unrelated": {ID: "unrelated", PackageName: "unrelated"},
		},
	}
	g, _ := Build(ws, nil)

	order, err := g.MergeOrder([]string{"api"})
	if err != nil {
		t.Fatalf("MergeOrder() error = %v", err)
	}
	for _, id := range order {
		if id == "unrelated" {
			t.Error("MergeOrder([api]) included unrelated repo")
		}
	}
	if len(order) != 3 {
		t.Errorf("MergeOrder([api]) = %v, want 3 entries (core, lib, api)", order)
	}
}

func TestLayersGroupsIndependentRepos(t *testing.T) {
	ws := &config.Workspace{
		Repos: map[string]*config.Repo{
			"core": {ID: "core", PackageName: "core"},
			"a":    {ID: "a", PackageName: "a", DependsOn: []string{"core"}},
			"b":    {ID: "b", PackageName: "b", DependsOn: []string{"core"}},
		},
	}
	g, _ := Build(ws, nil)

	layers, err := g.Layers()
	if err != nil {
		t.Fatalf("Layers() error = %v", err)
	}
	if len(layers) != 2 {
		t.Fatalf("len(Layers()) = %d, want 2", len(layers))
	}
	if len(layers[0]) != 1 || layers[0][0] != "core" {
		t.Errorf("Layers()[0] = %v, want [core]", layers[0])
	}
	if len(layers[1]) != 2 {
		t.Errorf("Layers()[1] = %v, want 2 entries", layers[1])
	}
}

func TestLayersOverIgnoresEdgesLeavingSubset(t *testing.T) {
	g, _ := Build(linearChainWorkspace(), nil)

	layers, err := g.LayersOver([]string{"lib", "api"})
	if err != nil {
		t.Fatalf("LayersOver() error = %v", err)
	}
	if len(layers) != 2 {
		t.Fatalf("len(LayersOver([lib, api])) = %d, want 2 (core excluded from subset)", len(layers))
	}
	if len(layers[0]) != 1 || layers[0][0] != "lib" {
		t.Errorf("LayersOver()[0] = %v, want [lib]", layers[0])
	}
	if len(layers[1]) != 1 || layers[1][0] != "api" {
		t.Errorf("LayersOver()[1] = %v, want [api]", layers[1])
	}
}
