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
	"fmt"

	"github.com/jpetrucciani/harmonia/internal/graph"
	"github.com/jpetrucciani/harmonia/internal/semver"
)

// Recommendation is one "bump will require update" hint surfaced by Plan.
type Recommendation struct {
	Repo    string
	Message string
}

// Plan is `plan`'s computed result: the changed set, the restricted
// topological order over its transitive closure, every constraint
// violation found against current versions, and one recommendation per
// violation. Every violation here is of kind Unsatisfied; plan does not
// classify them as ExactPin or UpperBound.
type Plan struct {
	Changed         []string
	RestrictedOrder []string
	Violations      []graph.ConstraintViolation
	Recommendations []Recommendation
}

// Plan computes a Plan for the given changed set without mutating
// anything: every manifest is read, none is written.
func (d *Deps) Plan(ctx context.Context, changed []string) (*Plan, error) {
	order, err := d.Graph.MergeOrder(changed)
	if err != nil {
		return nil, err
	}

	versions := make(map[string]semver.Version, len(d.Workspace.Repos))
	for id, r := range d.Workspace.Repos {
		if r.Ignored {
			continue
		}
		adapter, spec, content, err := readManifest(r)
		if err != nil {
			continue // a repo whose manifest cannot be read contributes no version, not a fatal plan error
		}
		v, err := adapter.ReadVersion(ctx, spec, content)
		if err != nil {
			continue
		}
		versions[id] = v
	}

	violations := d.Graph.CheckConstraints(versions)

	// CheckConstraints only ever reports ViolationUnsatisfied (it has no
	// bump target to classify Exact/UpperBound against, unlike
	// ValidateBump) — every violation it returns is worth a recommendation.
	recommendations := make([]Recommendation, 0, len(violations))
	for _, v := range violations {
		recommendations = append(recommendations, Recommendation{
			Repo:    v.From,
			Message: fmt.Sprintf("bump will require update: %s depends on %s (%s)", v.From, v.To, v.Kind),
		})
	}

	return &Plan{
		Changed:         changed,
		RestrictedOrder: order,
		Violations:      violations,
		Recommendations: recommendations,
	}, nil
}
