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
	"encoding/json"
	"strings"
	"testing"
)

func TestTreeRootsHaveNoDependents(t *testing.T) {
	g, _ := Build(linearChainWorkspace(), nil)

	tree := g.Tree()
	if !strings.HasPrefix(tree, "api\n") {
		t.Errorf("Tree() = %q, want to start with the sole root \"api\"", tree)
	}
	if !strings.Contains(tree, "└── lib") {
		t.Errorf("Tree() = %q, want a branch to lib", tree)
	}
}

func TestFlatListsEveryNodeInTopoOrder(t *testing.T) {
	g, _ := Build(linearChainWorkspace(), nil)

	flat := g.Flat()
	coreIdx := strings.Index(flat, "core")
	apiIdx := strings.Index(flat, "api")
	if coreIdx < 0 || apiIdx < 0 || coreIdx > apiIdx {
		t.Errorf("Flat() = %q, want core to appear before api", flat)
	}
}

func TestDOTIncludesNodesAndEdges(t *testing.T) {
	g, _ := Build(linearChainWorkspace(), nil)

	dot := g.DOT()
	if !strings.HasPrefix(dot, "digraph harmonia {") {
		t.Errorf("DOT() = %q, want a digraph header", dot)
	}
	if !strings.Contains(dot, `"lib" -> "core"`) {
		t.Errorf("DOT() = %q, want an edge from lib to core", dot)
	}
}

func TestJSONRoundTripsNodesAndCycles(t *testing.T) {
	g, _ := Build(cyclicWorkspace(), nil)

	raw, err := g.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded struct {
		Nodes  []string   `json:"nodes"`
		Edges  []jsonEdge `json:"edges"`
		Cycles [][]string `json:"cycles"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(decoded.Nodes) != 3 {
		t.Errorf("decoded.Nodes = %v, want 3 entries", decoded.Nodes)
	}
	if len(decoded.Cycles) != 1 {
		t.Errorf("decoded.Cycles = %v, want 1 cycle", decoded.Cycles)
	}
}
