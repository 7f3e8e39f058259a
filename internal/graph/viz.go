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
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tree renders the graph as one root per node with no internal dependents,
// branching down into each root's dependencies with unicode connectors.
func (g *Graph) Tree() string {
	var roots []string
	for _, id := range g.ordered {
		if len(g.reverse[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)

	var buf bytes.Buffer
	for _, root := range roots {
		buf.WriteString(root)
		buf.WriteByte('\n')
		g.writeTreeChildren(&buf, root, "", map[string]bool{root: true})
	}
	return buf.String()
}

func (g *Graph) writeTreeChildren(buf *bytes.Buffer, node, prefix string, visiting map[string]bool) {
	deps := g.DependenciesOf(node)
	for i, dep := range deps {
		last := i == len(deps)-1
		connector := "├── "
		nextPrefix := prefix + "│   "
		if last {
			connector = "└── "
			nextPrefix = prefix + "    "
		}

		label := dep
		if visiting[dep] {
			label += " (cycle)"
		}
		buf.WriteString(prefix + connector + label + "\n")

		if !visiting[dep] {
			visiting[dep] = true
			g.writeTreeChildren(buf, dep, nextPrefix, visiting)
			delete(visiting, dep)
		}
	}
}

// Flat renders every node and its direct dependencies as an indented list,
// in topological order when the graph is acyclic, sorted by repo id otherwise.
func (g *Graph) Flat() string {
	order, err := g.TopologicalSort()
	if err != nil {
		order = append([]string{}, g.ordered...)
		sort.Strings(order)
	}

	var buf bytes.Buffer
	for _, id := range order {
		buf.WriteString(id + "\n")
		for _, dep := range g.DependenciesOf(id) {
			buf.WriteString("  " + dep + "\n")
		}
	}
	return buf.String()
}

// DOT renders the graph in Graphviz DOT format.
func (g *Graph) DOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph harmonia {\n")
	for _, id := range g.ordered {
		buf.WriteString(fmt.Sprintf("  %q;\n", id))
	}
	for _, from := range g.ordered {
		for _, to := range g.DependenciesOf(from) {
			edge := g.edges[from][to]
			if edge.Constraint.Raw != "" {
				buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", from, to, edge.Constraint.Raw))
			} else {
				buf.WriteString(fmt.Sprintf("  %q -> %q;\n", from, to))
			}
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

type jsonEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Constraint string `json:"constraint,omitempty"`
}

type jsonGraph struct {
	Nodes  []string     `json:"nodes"`
	Edges  []jsonEdge   `json:"edges"`
	Cycles [][]string   `json:"cycles,omitempty"`
}

// JSON renders {nodes, edges[{from,to,constraint?}], cycles} as indented
// JSON, per spec.md §4.D's visualization format.
func (g *Graph) JSON() ([]byte, error) {
	nodes := append([]string{}, g.ordered...)
	sort.Strings(nodes)

	var edges []jsonEdge
	for _, from := range nodes {
		for _, to := range g.DependenciesOf(from) {
			edge := g.edges[from][to]
			edges = append(edges, jsonEdge{From: from, To: to, Constraint: edge.Constraint.Raw})
		}
	}

	cycles := g.FindCycles()

	return json.MarshalIndent(jsonGraph{Nodes: nodes, Edges: edges, Cycles: cycles}, "", "  ")
}

// String implements fmt.Stringer as the flat rendering, so a *Graph can be
// dropped straight into a log line or %v format verb.
func (g *Graph) String() string {
	return strings.TrimRight(g.Flat(), "\n")
}
