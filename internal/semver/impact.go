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

// Impact classifies how much a version jump changes, reused by the
// dependency graph engine's cascade_impact and by constraint classification
// in validate_bump.
type Impact string

const (
	ImpactNone  Impact = "none"
	ImpactPatch Impact = "patch"
	ImpactMinor Impact = "minor"
	ImpactMajor Impact = "major"
)

var impactRank = map[Impact]int{
	ImpactNone:  0,
	ImpactPatch: 1,
	ImpactMinor: 2,
	ImpactMajor: 3,
}

// DetermineImpact classifies the jump from "from" to "to". Both must be
// KindSemver with a parsed triple; callers should treat any other
// combination as Indeterminate upstream (DetermineImpact itself returns
// ImpactNone for non-semver input, since impact only has meaning there).
func DetermineImpact(from, to Version) Impact {
	if from.Kind != KindSemver || to.Kind != KindSemver || from.parsed == nil || to.parsed == nil {
		return ImpactNone
	}
	if to.parsed.Major() > from.parsed.Major() {
		return ImpactMajor
	}
	if to.parsed.Minor() > from.parsed.Minor() {
		return ImpactMinor
	}
	if to.parsed.Patch() > from.parsed.Patch() {
		return ImpactPatch
	}
	return ImpactNone
}

// MaxAllowedImpact reports the largest Impact c's Kind permits, mirroring
// the teacher's ParsedConstraint.MaxAllowedImpact derivation. It does not
// account for the exact numeric bound within a pessimistic constraint
// (e.g. "~> 5.0.0" vs "~> 5.0"); callers needing that precision should
// evaluate Satisfies directly against a candidate Version.
func (c Constraint) MaxAllowedImpact() Impact {
	switch c.Kind {
	case ConstraintCaret:
		return ImpactMinor
	case ConstraintPessimistic:
		return ImpactMinor
	case ConstraintMinimum, ConstraintRange:
		return ImpactMajor
	case ConstraintExact:
		return ImpactNone
	default:
		return ImpactMajor
	}
}

// AllowsImpact reports whether impact is within c's MaxAllowedImpact.
func (c Constraint) AllowsImpact(impact Impact) bool {
	return impactRank[impact] <= impactRank[c.MaxAllowedImpact()]
}
