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

// Package graph builds the internal-dependency DAG across a workspace's
// repos, answers direct/transitive queries, produces a deterministic
// topological order, enumerates cycles, and checks manifest dependency
// constraints against resolved versions.
//
// Edges point from a dependent repo to the repo it depends on (from.edges[to]
// means "from depends on to"), following the teacher's dag package shape.
package graph

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/jpetrucciani/harmonia/internal/config"
	"github.com/jpetrucciani/harmonia/internal/manifest"
	"github.com/jpetrucciani/harmonia/internal/semver"
)

// EdgeSource records which input produced an edge.
type EdgeSource string

const (
	EdgeSourceManifest  EdgeSource = "manifest"
	EdgeSourceDependsOn EdgeSource = "depends_on"
)

// Edge is one internal dependency: From depends on To under Constraint.
type Edge struct {
	From       string
	To         string
	Constraint semver.Constraint
	Source     EdgeSource
}

// Graph is the built, queryable dependency graph for one workspace.
type Graph struct {
	nodes   map[string]bool
	ordered []string
	edges   map[string]map[string]*Edge
	reverse map[string]map[string]bool

	// secondary holds depends_on-declared edges superseded by a
	// manifest-derived constraint on the same (from, to) pair, kept for
	// diagnostics per spec.md §4.D.
	secondary []Edge

	transitiveDeps      map[string][]string
	transitiveDependents map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:                make(map[string]bool),
		edges:                make(map[string]map[string]*Edge),
		reverse:              make(map[string]map[string]bool),
		transitiveDeps:       make(map[string][]string),
		transitiveDependents: make(map[string][]string),
	}
}

func (g *Graph) addNode(id string) {
	if g.nodes[id] {
		return
	}
	g.nodes[id] = true
	g.edges[id] = make(map[string]*Edge)
	g.reverse[id] = make(map[string]bool)
	g.ordered = append(g.ordered, id)
}

func (g *Graph) addEdge(from, to string, constraint semver.Constraint, source EdgeSource) {
	g.addNode(from)
	g.addNode(to)

	if existing, ok := g.edges[from][to]; ok {
		// Manifest-derived constraints win; a depends_on edge that arrives
		// second, or one a manifest edge later overwrites, is kept in
		// secondary for diagnostics instead of silently dropped.
		if existing.Source == EdgeSourceManifest && source == EdgeSourceDependsOn {
			g.secondary = append(g.secondary, Edge{From: from, To: to, Constraint: constraint, Source: source})
			return
		}
		if existing.Source == EdgeSourceDependsOn && source == EdgeSourceManifest {
			g.secondary = append(g.secondary, *existing)
		}
	}

	g.edges[from][to] = &Edge{From: from, To: to, Constraint: constraint, Source: source}
	g.reverse[to][from] = true
}

// Build constructs the graph from a resolved workspace and each repo's
// manifest-read dependency list. Ignored repos are excluded as nodes, and
// consequently from every edge.
func Build(ws *config.Workspace, manifestDeps map[string][]manifest.Dependency) (*Graph, []error) {
	g := New()
	var warnings []error

	packageIndex := make(map[string]string, len(ws.Repos)) // package name -> repo id
	for id, r := range ws.Repos {
		if r.Ignored {
			continue
		}
		packageIndex[r.EffectivePackageName()] = id
	}

	for id, r := range ws.Repos {
		if r.Ignored {
			continue
		}
		g.addNode(id)
	}

	for id, r := range ws.Repos {
		if r.Ignored {
			continue
		}

		var pattern *regexp.Regexp
		if r.Dependencies.InternalPattern != "" {
			compiled, err := regexp.Compile(r.Dependencies.InternalPattern)
			if err != nil {
				warnings = append(warnings, &config.BadInternalPatternError{Repo: id, Pattern: r.Dependencies.InternalPattern, Cause: err})
			} else {
				pattern = compiled
			}
		}
		internalNames := make(map[string]bool, len(r.Dependencies.InternalPackages))
		for _, name := range r.Dependencies.InternalPackages {
			internalNames[name] = true
		}

		for _, dep := range manifestDeps[id] {
			if !internalNames[dep.Name] && (pattern == nil || !pattern.MatchString(dep.Name)) {
				continue
			}
			targetID, ok := packageIndex[dep.Name]
			if !ok {
				targetID, ok = resolveByID(ws, dep.Name)
				if !ok {
					continue
				}
			}
			if targetID == id {
				continue
			}
			g.addEdge(id, targetID, semver.ParseConstraint(dep.Constraint), EdgeSourceManifest)
		}

		for _, depName := range r.DependsOn {
			targetID, ok := resolveDependsOn(ws, packageIndex, depName)
			if !ok {
				continue
			}
			if targetID == id {
				continue
			}
			g.addEdge(id, targetID, semver.Constraint{}, EdgeSourceDependsOn)
		}
	}

	return g, warnings
}

func resolveByID(ws *config.Workspace, name string) (string, bool) {
	if _, ok := ws.Repos[name]; ok {
		return name, true
	}
	return "", false
}

func resolveDependsOn(ws *config.Workspace, packageIndex map[string]string, name string) (string, bool) {
	if r, ok := ws.Repos[name]; ok && !r.Ignored {
		return name, true
	}
	if id, ok := packageIndex[name]; ok {
		return id, true
	}
	return "", false
}

// HasNode reports whether id is a node in the graph.
func (g *Graph) HasNode(id string) bool {
	return g.nodes[id]
}

// Nodes returns every node id in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.ordered))
	copy(out, g.ordered)
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Secondary returns the depends_on edges superseded by a manifest-derived
// constraint on the same pair, for `graph` command diagnostics.
func (g *Graph) Secondary() []Edge {
	out := make([]Edge, len(g.secondary))
	copy(out, g.secondary)
	return out
}

// DependenciesOf returns the repos id directly depends on, sorted.
func (g *Graph) DependenciesOf(id string) []string {
	deps := make([]string, 0, len(g.edges[id]))
	for to := range g.edges[id] {
		deps = append(deps, to)
	}
	sort.Strings(deps)
	return deps
}

// DependentsOf returns the repos that directly depend on id, sorted.
func (g *Graph) DependentsOf(id string) []string {
	deps := make([]string, 0, len(g.reverse[id]))
	for from := range g.reverse[id] {
		deps = append(deps, from)
	}
	sort.Strings(deps)
	return deps
}

// EdgeBetween returns the edge from -> to, if one exists.
func (g *Graph) EdgeBetween(from, to string) (Edge, bool) {
	e, ok := g.edges[from][to]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// TransitiveDependenciesOf returns every repo reachable by following
// dependency edges outward from id, memoized for the graph's lifetime.
func (g *Graph) TransitiveDependenciesOf(id string) []string {
	if cached, ok := g.transitiveDeps[id]; ok {
		return cached
	}
	result := g.bfs(id, g.edges)
	g.transitiveDeps[id] = result
	return result
}

// TransitiveDependentsOf returns every repo that transitively depends on
// id, memoized for the graph's lifetime.
func (g *Graph) TransitiveDependentsOf(id string) []string {
	if cached, ok := g.transitiveDependents[id]; ok {
		return cached
	}
	result := g.bfs(id, g.reverseAdjacency())
	g.transitiveDependents[id] = result
	return result
}

func (g *Graph) reverseAdjacency() map[string]map[string]*Edge {
	adj := make(map[string]map[string]*Edge, len(g.reverse))
	for to, froms := range g.reverse {
		adj[to] = make(map[string]*Edge, len(froms))
		for from := range froms {
			adj[to][from] = g.edges[from][to]
		}
	}
	return adj
}

func (g *Graph) bfs(start string, adjacency map[string]map[string]*Edge) []string {
	if !g.nodes[start] {
		return nil
	}
	visited := map[string]bool{start: true}
	queue := []string{start}
	var result []string

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for next := range adjacency[node] {
			if !visited[next] {
				visited[next] = true
				result = append(result, next)
				queue = append(queue, next)
			}
		}
	}

	sort.Strings(result)
	return result
}

// TopologicalSort orders every node via Kahn's algorithm, breaking ties
// within each ready set lexicographically by RepoId for a reproducible
// order. Returns CyclicDependenciesError if the graph has a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	return g.topologicalSortOver(g.nodes)
}

// MergeOrder restricts the graph to the transitive closure of subset (each
// member plus everything it depends on) and returns that restriction's
// topological order.
func (g *Graph) MergeOrder(subset []string) ([]string, error) {
	closure := make(map[string]bool)
	for _, id := range subset {
		closure[id] = true
		for _, dep := range g.TransitiveDependenciesOf(id) {
			closure[dep] = true
		}
	}
	return g.topologicalSortOver(closure)
}

func (g *Graph) topologicalSortOver(include map[string]bool) ([]string, error) {
	inDegree := make(map[string]int, len(include))
	for id := range include {
		count := 0
		for to := range g.edges[id] {
			if include[to] {
				count++
			}
		}
		inDegree[id] = count
	}

	ready := make([]string, 0)
	for id := range include {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	sorted := make([]string, 0, len(include))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		sorted = append(sorted, node)

		var unlocked []string
		for from := range g.reverse[node] {
			if !include[from] {
				continue
			}
			inDegree[from]--
			if inDegree[from] == 0 {
				unlocked = append(unlocked, from)
			}
		}
		sort.Strings(unlocked)
		ready = mergeSorted(ready, unlocked)
	}

	if len(sorted) != len(include) {
		return nil, &CyclicDependenciesError{Cycles: g.FindCycles()}
	}
	return sorted, nil
}

func mergeSorted(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	merged := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

// Layers groups nodes by dependency depth: layer 0 has no internal
// dependencies, layer N's nodes depend only on repos in layers 0..N-1.
// Nodes within a layer are independent and safe to process in parallel.
func (g *Graph) Layers() ([][]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = len(g.edges[id])
	}

	current := make([]string, 0)
	for id := range g.nodes {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}
	sort.Strings(current)

	var layers [][]string
	visited := 0

	for len(current) > 0 {
		layers = append(layers, current)
		visited += len(current)

		next := make([]string, 0)
		for _, node := range current {
			for from := range g.reverse[node] {
				inDegree[from]--
				if inDegree[from] == 0 {
					next = append(next, from)
				}
			}
		}
		sort.Strings(next)
		current = next
	}

	if visited != len(g.nodes) {
		return nil, &CyclicDependenciesError{Cycles: g.FindCycles()}
	}
	return layers, nil
}

// LayersOver restricts Layers to subset: layer 0 has no dependency inside
// subset, layer N depends (within subset) only on repos in layers 0..N-1.
// Edges leaving subset are ignored, so a member whose only dependencies lie
// outside subset lands in layer 0. Used by the scheduler to wave-partition
// a selection without materializing the selection's full transitive
// closure the way MergeOrder does.
func (g *Graph) LayersOver(subset []string) ([][]string, error) {
	include := make(map[string]bool, len(subset))
	for _, id := range subset {
		include[id] = true
	}

	inDegree := make(map[string]int, len(include))
	for id := range include {
		count := 0
		for to := range g.edges[id] {
			if include[to] {
				count++
			}
		}
		inDegree[id] = count
	}

	current := make([]string, 0)
	for id := range include {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}
	sort.Strings(current)

	var layers [][]string
	visited := 0

	for len(current) > 0 {
		layers = append(layers, current)
		visited += len(current)

		next := make([]string, 0)
		for _, node := range current {
			for from := range g.reverse[node] {
				if !include[from] {
					continue
				}
				inDegree[from]--
				if inDegree[from] == 0 {
					next = append(next, from)
				}
			}
		}
		sort.Strings(next)
		current = next
	}

	if visited != len(include) {
		return nil, &CyclicDependenciesError{Cycles: g.FindCycles()}
	}
	return layers, nil
}

// CyclicDependenciesError is returned by ordering operations when the
// graph contains one or more cycles. Query operations remain available.
type CyclicDependenciesError struct {
	Cycles [][]string
}

func (e *CyclicDependenciesError) Error() string {
	return fmt.Sprintf("cyclic dependencies detected: %d elementary cycle(s)", len(e.Cycles))
}
