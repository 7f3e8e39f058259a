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
	"sort"

	"github.com/jpetrucciani/harmonia/internal/semver"
)

// ViolationKind classifies why a dependency edge's constraint fails.
type ViolationKind string

const (
	// ViolationUnsatisfied is a generic constraint failure.
	ViolationUnsatisfied ViolationKind = "unsatisfied"
	// ViolationExactPin means the constraint is an equality that the new
	// version no longer matches.
	ViolationExactPin ViolationKind = "exact_pin"
	// ViolationUpperBound means the constraint has an upper bound the new
	// version crosses (caret/pessimistic ranges).
	ViolationUpperBound ViolationKind = "upper_bound"
)

// ConstraintViolation is one edge whose constraint no longer holds.
type ConstraintViolation struct {
	From string
	To   string
	Kind ViolationKind
}

// CheckConstraints evaluates every internal edge's constraint against the
// target repo's current version, reported in versions. Indeterminate
// constraints (non-semver constraint or version) are skipped, not failed.
func (g *Graph) CheckConstraints(versions map[string]semver.Version) []ConstraintViolation {
	var violations []ConstraintViolation

	for _, from := range g.ordered {
		for to, edge := range g.edges[from] {
			if !edge.Constraint.IsSemverPredicate() {
				continue
			}
			targetVersion, ok := versions[to]
			if !ok {
				continue
			}
			if semver.Satisfies(targetVersion, edge.Constraint) == semver.SatisfactionFalse {
				violations = append(violations, ConstraintViolation{From: from, To: to, Kind: ViolationUnsatisfied})
			}
		}
	}

	sortViolations(violations)
	return violations
}

// ValidateBump re-evaluates every inbound edge to repo against newVersion,
// classifying failures as ExactPin, UpperBound, or generic Unsatisfied.
func (g *Graph) ValidateBump(repo string, newVersion semver.Version) []ConstraintViolation {
	var violations []ConstraintViolation

	for from := range g.reverse[repo] {
		edge, ok := g.edges[from][repo]
		if !ok || !edge.Constraint.IsSemverPredicate() {
			continue
		}
		if semver.Satisfies(newVersion, edge.Constraint) != semver.SatisfactionFalse {
			continue
		}

		kind := ViolationUnsatisfied
		switch {
		case edge.Constraint.Kind == semver.ConstraintExact:
			kind = ViolationExactPin
		case edge.Constraint.IsUpperBounded():
			kind = ViolationUpperBound
		}
		violations = append(violations, ConstraintViolation{From: from, To: repo, Kind: kind})
	}

	sortViolations(violations)
	return violations
}

// CascadeImpact returns every repo transitively depending on repo through
// an internal edge, the set a `--cascade` bump should also touch.
func (g *Graph) CascadeImpact(repo string) []string {
	return g.TransitiveDependentsOf(repo)
}

func sortViolations(violations []ConstraintViolation) {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].From != violations[j].From {
			return violations[i].From < violations[j].From
		}
		return violations[i].To < violations[j].To
	})
}
