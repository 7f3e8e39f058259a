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

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		kind    Kind
		wantErr bool
	}{
		{name: "valid semver", raw: "1.2.3", kind: KindSemver},
		{name: "invalid semver", raw: "not-a-version", kind: KindSemver, wantErr: true},
		{name: "calver always parses", raw: "2026.08.0", kind: KindCalver},
		{name: "raw always parses", raw: "rolling", kind: KindRaw},
		{name: "empty kind defaults to raw", raw: "", kind: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersion(tt.raw, tt.kind)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q, %q) error = %v, wantErr %v", tt.raw, tt.kind, err, tt.wantErr)
			}
			if err == nil && v.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", v.Raw, tt.raw)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	v1, _ := ParseVersion("1.2.3", KindSemver)
	v2, _ := ParseVersion("1.3.0", KindSemver)
	raw, _ := ParseVersion("rolling", KindRaw)

	t.Run("less", func(t *testing.T) {
		ord, err := Compare(v1, v2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ord != OrderingLess {
			t.Errorf("Compare(v1, v2) = %v, want OrderingLess", ord)
		}
	})

	t.Run("equal", func(t *testing.T) {
		ord, err := Compare(v1, v1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ord != OrderingEqual {
			t.Errorf("Compare(v1, v1) = %v, want OrderingEqual", ord)
		}
	})

	t.Run("incomparable against raw", func(t *testing.T) {
		if _, err := Compare(v1, raw); err == nil {
			t.Error("expected ErrIncomparableVersions, got nil")
		}
	})
}
