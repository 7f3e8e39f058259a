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

package semver

import (
	"fmt"
	"strings"

	mastermindsSemver "github.com/Masterminds/semver/v3"
)

// ConstraintKind classifies the shape of a parsed constraint, following the
// ecosystem-neutral taxonomy used across Terraform-, npm-, and Helm-style
// manifests.
type ConstraintKind string

const (
	// ConstraintExact matches only the named version (e.g. "1.2.3", "= 1.2.3").
	ConstraintExact ConstraintKind = "exact"
	// ConstraintPessimistic is Terraform's "~> 5.0" or npm's "~1.2.3".
	ConstraintPessimistic ConstraintKind = "pessimistic"
	// ConstraintCaret is npm's "^1.2.3".
	ConstraintCaret ConstraintKind = "caret"
	// ConstraintMinimum is ">= 1.0" or "> 1.0".
	ConstraintMinimum ConstraintKind = "minimum"
	// ConstraintRange is a comma-joined set of bounds, e.g. ">= 1.0, < 2.0".
	ConstraintRange ConstraintKind = "range"
	// ConstraintUnknown means raw was non-empty but did not parse as a
	// semver-style predicate; satisfaction against it is always Indeterminate.
	ConstraintUnknown ConstraintKind = "unknown"
)

// Constraint is a parsed manifest dependency constraint. A Constraint with
// a nil predicate is "informational": it never fails validation, but shows
// up in reports as a constraint Harmonia could not evaluate.
type Constraint struct {
	Raw         string
	Kind        ConstraintKind
	BaseVersion string
	predicate   *mastermindsSemver.Constraints
}

// IsSemverPredicate reports whether c carries an evaluable semver predicate.
func (c Constraint) IsSemverPredicate() bool {
	return c.predicate != nil
}

// IsUpperBounded reports whether c's predicate forbids versions above some
// threshold — used by validate_bump to classify UpperBound violations.
func (c Constraint) IsUpperBounded() bool {
	switch c.Kind {
	case ConstraintPessimistic, ConstraintCaret, ConstraintExact:
		return true
	default:
		return false
	}
}

// ParseConstraint parses a raw constraint string in Terraform (~>), npm/Helm
// (^, ~), or comparison (>=, >, =) syntax. An empty string parses as an
// unconstrained ConstraintExact with a nil predicate accepted by any bump;
// no-op, this mirrors parseVersion's "empty is not an error" posture.
func ParseConstraint(raw string) Constraint {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Constraint{Raw: raw, Kind: ConstraintExact}
	}

	switch {
	case strings.HasPrefix(trimmed, "~>"):
		base := strings.TrimSpace(strings.TrimPrefix(trimmed, "~>"))
		return Constraint{Raw: raw, Kind: ConstraintPessimistic, BaseVersion: base, predicate: buildPessimistic(base)}

	case strings.HasPrefix(trimmed, "^"):
		base := strings.TrimPrefix(trimmed, "^")
		c, _ := mastermindsSemver.NewConstraint("^" + base) //nolint:errcheck // nil predicate handled by IsSemverPredicate
		return Constraint{Raw: raw, Kind: ConstraintCaret, BaseVersion: base, predicate: c}

	case strings.HasPrefix(trimmed, "~"):
		base := strings.TrimPrefix(trimmed, "~")
		c, _ := mastermindsSemver.NewConstraint("~" + base) //nolint:errcheck // nil predicate handled by IsSemverPredicate
		return Constraint{Raw: raw, Kind: ConstraintPessimistic, BaseVersion: base, predicate: c}

	case strings.Contains(trimmed, ","):
		c, _ := mastermindsSemver.NewConstraint(trimmed) //nolint:errcheck // nil predicate handled by IsSemverPredicate
		return Constraint{Raw: raw, Kind: ConstraintRange, predicate: c}

	case strings.HasPrefix(trimmed, ">="), strings.HasPrefix(trimmed, ">"):
		c, _ := mastermindsSemver.NewConstraint(trimmed) //nolint:errcheck // nil predicate handled by IsSemverPredicate
		return Constraint{Raw: raw, Kind: ConstraintMinimum, BaseVersion: stripOperators(trimmed), predicate: c}

	case strings.HasPrefix(trimmed, "="):
		base := strings.TrimSpace(strings.TrimPrefix(trimmed, "="))
		c, _ := mastermindsSemver.NewConstraint("= " + base) //nolint:errcheck // nil predicate handled by IsSemverPredicate
		return Constraint{Raw: raw, Kind: ConstraintExact, BaseVersion: base, predicate: c}

	default:
		c, err := mastermindsSemver.NewConstraint("= " + trimmed)
		if err != nil {
			return Constraint{Raw: raw, Kind: ConstraintUnknown, BaseVersion: trimmed}
		}
		return Constraint{Raw: raw, Kind: ConstraintExact, BaseVersion: trimmed, predicate: c}
	}
}

func stripOperators(s string) string {
	s = strings.TrimPrefix(s, ">=")
	s = strings.TrimPrefix(s, "<=")
	s = strings.TrimPrefix(s, ">")
	s = strings.TrimPrefix(s, "<")
	return strings.TrimSpace(s)
}

func buildPessimistic(base string) *mastermindsSemver.Constraints {
	parts := strings.Split(base, ".")
	var expr string
	switch {
	case len(parts) >= 3:
		expr = fmt.Sprintf(">= %s, < %s.%d.0", base, parts[0], atoi(parts[1])+1)
	case len(parts) == 2:
		expr = fmt.Sprintf(">= %s.0, < %d.0.0", base, atoi(parts[0])+1)
	default:
		expr = fmt.Sprintf(">= %s.0.0, < %d.0.0", base, atoi(base)+1)
	}
	c, _ := mastermindsSemver.NewConstraint(expr) //nolint:errcheck // nil predicate handled by IsSemverPredicate
	return c
}

func atoi(s string) int {
	var n int
	_, _ = fmt.Sscanf(s, "%d", &n) //nolint:errcheck // best-effort, defaults to 0
	return n
}

// Satisfaction is the three-valued result of checking a Version against a
// Constraint.
type Satisfaction int

const (
	SatisfactionFalse Satisfaction = iota
	SatisfactionTrue
	SatisfactionIndeterminate
)

// Satisfies evaluates whether v satisfies c. It returns
// SatisfactionIndeterminate whenever either side is not semver-shaped,
// matching the data model's "satisfaction is defined only when both the
// constraint and the candidate are semver" rule — an indeterminate result
// never fails validation on its own.
func Satisfies(v Version, c Constraint) Satisfaction {
	if v.Kind != KindSemver || v.parsed == nil || !c.IsSemverPredicate() {
		return SatisfactionIndeterminate
	}
	if c.predicate.Check(v.parsed) {
		return SatisfactionTrue
	}
	return SatisfactionFalse
}
