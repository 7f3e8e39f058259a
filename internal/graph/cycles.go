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

import "sort"

// FindCycles enumerates every elementary cycle in the graph using Johnson's
// algorithm: for each vertex s (processed in sorted order), restrict to the
// subgraph induced on vertices >= s, find the strongly connected component
// containing s, and search that component for cycles rooted at s.
func (g *Graph) FindCycles() [][]string {
	order := append([]string{}, g.ordered...)
	sort.Strings(order)
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}

	var cycles [][]string

	for i, s := range order {
		remaining := order[i:]
		sub := inducedSubgraph(g.edges, rank, i)

		scc := sccContaining(sub, s, remaining)
		if len(scc) == 0 {
			continue
		}

		adj := restrictAdjacency(sub, scc)
		blocked := make(map[string]bool, len(scc))
		blockedBy := make(map[string]map[string]bool, len(scc))
		for _, n := range scc {
			blockedBy[n] = make(map[string]bool)
		}

		var stack []string
		var unblock func(string)
		unblock = func(u string) {
			blocked[u] = false
			for w := range blockedBy[u] {
				delete(blockedBy[u], w)
				if blocked[w] {
					unblock(w)
				}
			}
		}

		var circuit func(v string) bool
		circuit = func(v string) bool {
			found := false
			stack = append(stack, v)
			blocked[v] = true

			for _, w := range adj[v] {
				if w == s {
					cycle := append(append([]string{}, stack...), s)
					cycles = append(cycles, cycle)
					found = true
				} else if !blocked[w] {
					if circuit(w) {
						found = true
					}
				}
			}

			if found {
				unblock(v)
			} else {
				for _, w := range adj[v] {
					blockedBy[w][v] = true
				}
			}

			stack = stack[:len(stack)-1]
			return found
		}

		circuit(s)
	}

	return cycles
}

// inducedSubgraph returns the adjacency restricted to edges whose endpoints
// both have rank >= minRank.
func inducedSubgraph(edges map[string]map[string]*Edge, rank map[string]int, minRank int) map[string][]string {
	sub := make(map[string][]string)
	for from, tos := range edges {
		if rank[from] < minRank {
			continue
		}
		for to := range tos {
			if rank[to] >= minRank {
				sub[from] = append(sub[from], to)
			}
		}
	}
	return sub
}

func restrictAdjacency(adj map[string][]string, nodes []string) map[string][]string {
	in := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		in[n] = true
	}
	out := make(map[string][]string, len(nodes))
	for _, from := range nodes {
		for _, to := range adj[from] {
			if in[to] {
				out[from] = append(out[from], to)
			}
		}
	}
	return out
}

// sccContaining runs Tarjan's algorithm over adj restricted to nodes and
// returns the strongly connected component containing target, or nil if
// target has no self-cycle (a singleton SCC is not a cycle).
func sccContaining(adj map[string][]string, target string, nodes []string) []string {
	index := 0
	indices := make(map[string]int, len(nodes))
	lowlink := make(map[string]int, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var stack []string
	var found []string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, visited := indices[w]; !visited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] != indices[v] {
			return
		}

		var component []string
		for {
			n := len(stack) - 1
			w := stack[n]
			stack = stack[:n]
			onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}

		for _, n := range component {
			if n == target {
				found = component
			}
		}
	}

	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongconnect(n)
		}
	}

	if len(found) == 1 {
		// A singleton component is a cycle only if it has a self-loop.
		self := false
		for _, w := range adj[found[0]] {
			if w == found[0] {
				self = true
			}
		}
		if !self {
			return nil
		}
	}

	return found
}
