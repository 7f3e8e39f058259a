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

package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jpetrucciani/harmonia/internal/graph"
)

func TestPlanSurfacesExactPinRecommendation(t *testing.T) {
	ws, _ := chainWorkspace(t)
	// Bump core's manifest directly so its on-disk version no longer
	// satisfies lib's exact-pin constraint on it.
	if err := os.WriteFile(filepath.Join(ws.Repos["core"].Path, "manifest.toml"), []byte("version = \"1.3.0\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	v := newFakeVCS()
	d := buildDeps(t, ws, v, nil)

	plan, err := d.Plan(context.Background(), []string{"core"})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan.Violations) != 1 || plan.Violations[0].Kind != graph.ViolationUnsatisfied {
		t.Fatalf("Plan() violations = %v, want one Unsatisfied", plan.Violations)
	}
	if len(plan.Recommendations) != 1 {
		t.Errorf("Plan() recommendations = %v, want one", plan.Recommendations)
	}
}

func TestPlanWithSatisfiedConstraintsHasNoViolations(t *testing.T) {
	ws, _ := chainWorkspace(t)
	v := newFakeVCS()
	d := buildDeps(t, ws, v, nil)

	plan, err := d.Plan(context.Background(), []string{"core"})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan.Violations) != 0 {
		t.Errorf("Plan() violations = %v, want none", plan.Violations)
	}
	if len(plan.RestrictedOrder) != 1 || plan.RestrictedOrder[0] != "core" {
		t.Errorf("Plan() restricted order = %v, want [core]", plan.RestrictedOrder)
	}
}
