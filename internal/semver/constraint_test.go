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

import "testing"

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		versionKnd Kind
		constraint string
		want       Satisfaction
	}{
		{name: "caret satisfied", version: "1.4.0", versionKnd: KindSemver, constraint: "^1.2.3", want: SatisfactionTrue},
		{name: "caret violated by major bump", version: "2.0.0", versionKnd: KindSemver, constraint: "^1.2.3", want: SatisfactionFalse},
		{name: "pessimistic two-part", version: "5.9.9", versionKnd: KindSemver, constraint: "~> 5.0", want: SatisfactionTrue},
		{name: "pessimistic two-part violated", version: "6.0.0", versionKnd: KindSemver, constraint: "~> 5.0", want: SatisfactionFalse},
		{name: "pessimistic three-part restricts to patch", version: "5.1.0", versionKnd: KindSemver, constraint: "~> 5.0.0", want: SatisfactionFalse},
		{name: "exact match", version: "1.2.3", versionKnd: KindSemver, constraint: "= 1.2.3", want: SatisfactionTrue},
		{name: "raw version is indeterminate", version: "rolling", versionKnd: KindRaw, constraint: "^1.0.0", want: SatisfactionIndeterminate},
		{name: "unparseable constraint is indeterminate", version: "1.0.0", versionKnd: KindSemver, constraint: "latest", want: SatisfactionIndeterminate},
		{name: "empty constraint is indeterminate", version: "1.0.0", versionKnd: KindSemver, constraint: "", want: SatisfactionIndeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersion(tt.version, tt.versionKnd)
			if err != nil && tt.versionKnd == KindSemver {
				t.Fatalf("ParseVersion(%q) error = %v", tt.version, err)
			}
			c := ParseConstraint(tt.constraint)
			if got := Satisfies(v, c); got != tt.want {
				t.Errorf("Satisfies(%q, %q) = %v, want %v", tt.version, tt.constraint, got, tt.want)
			}
		})
	}
}

func TestParseConstraintKind(t *testing.T) {
	tests := []struct {
		raw  string
		want ConstraintKind
	}{
		{"~> 5.0", ConstraintPessimistic},
		{"^1.2.3", ConstraintCaret},
		{"~1.2.3", ConstraintPessimistic},
		{">= 1.0", ConstraintMinimum},
		{">= 1.0, < 2.0", ConstraintRange},
		{"= 1.2.3", ConstraintExact},
		{"1.2.3", ConstraintExact},
		{"latest", ConstraintUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := ParseConstraint(tt.raw)
			if c.Kind != tt.want {
				t.Errorf("ParseConstraint(%q).Kind = %v, want %v", tt.raw, c.Kind, tt.want)
			}
		})
	}
}
