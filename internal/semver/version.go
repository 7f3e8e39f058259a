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

// Package semver implements the version and constraint algebra shared by
// every ecosystem manifest adapter: parsing raw version strings into typed
// Versions, parsing constraint strings into typed Constraints, checking
// satisfaction between the two, ordering two Versions, and bumping a
// Version under one of three strategies (semver, calver, tinyinc).
//
// Versions and constraints that are not semver-shaped are not errors: a
// raw or calver Version simply orders and satisfies as Indeterminate
// rather than failing outright, matching the way manifests in the wild
// mix strict semver with date-based and ecosystem-specific schemes.
package semver

import (
	"fmt"
	"strings"

	mastermindsSemver "github.com/Masterminds/semver/v3"
)

// Kind identifies which versioning scheme a Version was parsed under.
type Kind string

const (
	// KindSemver is a strict semantic version (major.minor.patch[-pre][+meta]).
	KindSemver Kind = "semver"
	// KindCalver is a calendar version such as 2026.08.0.
	KindCalver Kind = "calver"
	// KindRaw is an opaque version string with no known ordering.
	KindRaw Kind = "raw"
)

// Version is a parsed manifest version. Only Kind == KindSemver carries a
// parsed triple; calver and raw versions retain only the original string.
type Version struct {
	Raw    string
	Kind   Kind
	parsed *mastermindsSemver.Version
}

// String returns the original, unmodified version string.
func (v Version) String() string {
	return v.Raw
}

// IsZero reports whether v is the zero Version (never parsed).
func (v Version) IsZero() bool {
	return v.Raw == "" && v.Kind == ""
}

// ParseVersion parses raw under the given strategy. For KindSemver, raw
// must be a syntactically valid semantic version or an error is returned;
// KindCalver and KindRaw never fail to parse since they carry no structure
// beyond the string itself. An empty Kind is treated as KindRaw, matching
// the "go" adapter's Raw("") treatment of an unreadable module version.
func ParseVersion(raw string, kind Kind) (Version, error) {
	switch kind {
	case KindSemver:
		parsed, err := mastermindsSemver.NewVersion(raw)
		if err != nil {
			return Version{Raw: raw, Kind: KindSemver}, fmt.Errorf("parse semver %q: %w", raw, err)
		}
		return Version{Raw: raw, Kind: KindSemver, parsed: parsed}, nil
	case KindCalver:
		return Version{Raw: raw, Kind: KindCalver}, nil
	case KindRaw, "":
		return Version{Raw: raw, Kind: KindRaw}, nil
	default:
		return Version{}, fmt.Errorf("unknown version kind %q", kind)
	}
}

// Ordering is the result of comparing two Versions.
type Ordering int

const (
	OrderingLess Ordering = -1
	OrderingEqual Ordering = 0
	OrderingGreater Ordering = 1
)

// Compare orders two Versions. It only succeeds when both sides are
// KindSemver with a successfully parsed triple; otherwise it returns
// ErrIncomparableVersions, per the data model's "ordering is defined only
// when both sides are semver" rule.
func Compare(a, b Version) (Ordering, error) {
	if a.Kind != KindSemver || b.Kind != KindSemver || a.parsed == nil || b.parsed == nil {
		return OrderingEqual, fmt.Errorf("%w: %s (%s) vs %s (%s)", ErrIncomparableVersions, a.Raw, a.Kind, b.Raw, b.Kind)
	}
	switch a.parsed.Compare(b.parsed) {
	case -1:
		return OrderingLess, nil
	case 1:
		return OrderingGreater, nil
	default:
		return OrderingEqual, nil
	}
}

// normalizeAndParse mirrors the teacher's lenient "v"-prefix tolerant
// semver parse, trying raw as-is, then with a "v" added or stripped.
func normalizeAndParse(raw string) (*mastermindsSemver.Version, error) {
	if v, err := mastermindsSemver.NewVersion(raw); err == nil {
		return v, nil
	}
	if strings.HasPrefix(raw, "v") {
		if v, err := mastermindsSemver.NewVersion(strings.TrimPrefix(raw, "v")); err == nil {
			return v, nil
		}
	} else {
		if v, err := mastermindsSemver.NewVersion("v" + raw); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("invalid version: %s", raw)
}
