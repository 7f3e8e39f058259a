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

package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// TOMLScalarInSection replaces a `key = "value"` (or bare key = value)
// assignment's value, scoped to the table whose header matches section
// (e.g. "project" or "tool.poetry"), leaving everything outside that one
// assignment untouched. go-toml/v2 has no node-tree API that could do
// this while round-tripping comments and layout, so the edit is done by
// locating the section header textually and searching only the span up to
// the next header line that is not one of the section's own sub-tables.
func TOMLScalarInSection(content []byte, section, key, newValue string) ([]byte, error) {
	start, end, err := findTOMLSectionSpan(content, section)
	if err != nil {
		return nil, err
	}

	assignPattern := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=[ \t]*"(?P<value>[^"]*)"[ \t]*$`)
	sectionBytes := content[start:end]
	loc := assignPattern.FindSubmatchIndex(sectionBytes)
	if loc == nil {
		return nil, fmt.Errorf("key %q not found in [%s]", key, section)
	}

	var groupIdx int
	for i, name := range assignPattern.SubexpNames() {
		if name == "value" {
			groupIdx = i
		}
	}
	valStart, valEnd := loc[2*groupIdx], loc[2*groupIdx+1]

	out := make([]byte, 0, len(content)-(valEnd-valStart)+len(newValue))
	out = append(out, content[:start+valStart]...)
	out = append(out, newValue...)
	out = append(out, content[start+valEnd:]...)
	return out, nil
}

// TOMLDependencyInSection rewrites one dependency's constraint inside a
// TOML table, matching either `name = "constraint"` or the table-value
// `name = { version = "constraint", ... }` shape Poetry/Cargo both allow.
func TOMLDependencyInSection(content []byte, section, name, newConstraint string) ([]byte, error) {
	start, end, err := findTOMLSectionSpan(content, section)
	if err != nil {
		return nil, err
	}
	sectionBytes := content[start:end]

	simplePattern := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(name) + `[ \t]*=[ \t]*"(?P<value>[^"]*)"[ \t]*$`)
	if loc := simplePattern.FindSubmatchIndex(sectionBytes); loc != nil {
		var groupIdx int
		for i, n := range simplePattern.SubexpNames() {
			if n == "value" {
				groupIdx = i
			}
		}
		valStart, valEnd := loc[2*groupIdx], loc[2*groupIdx+1]
		out := make([]byte, 0, len(content)-(valEnd-valStart)+len(newConstraint))
		out = append(out, content[:start+valStart]...)
		out = append(out, newConstraint...)
		out = append(out, content[start+valEnd:]...)
		return out, nil
	}

	inlinePattern := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(name) + `[ \t]*=[ \t]*\{[^}]*version[ \t]*=[ \t]*"(?P<value>[^"]*)"`)
	if loc := inlinePattern.FindSubmatchIndex(sectionBytes); loc != nil {
		var groupIdx int
		for i, n := range inlinePattern.SubexpNames() {
			if n == "value" {
				groupIdx = i
			}
		}
		valStart, valEnd := loc[2*groupIdx], loc[2*groupIdx+1]
		out := make([]byte, 0, len(content)-(valEnd-valStart)+len(newConstraint))
		out = append(out, content[:start+valStart]...)
		out = append(out, newConstraint...)
		out = append(out, content[start+valEnd:]...)
		return out, nil
	}

	return nil, fmt.Errorf("dependency %q not found in [%s]", name, section)
}

var tomlHeaderPattern = regexp.MustCompile(`(?m)^\[([^\]]+)\]`)

// findTOMLSectionSpan returns the byte range of a table's body: from just
// after its "[section]" header line to the start of the next header that is
// not a sub-table of section (such as "[section.extra]"), or end of file.
func findTOMLSectionSpan(content []byte, section string) (int, int, error) {
	matches := tomlHeaderPattern.FindAllSubmatchIndex(content, -1)

	for i, m := range matches {
		name := string(content[m[2]:m[3]])
		if strings.TrimSpace(name) != section {
			continue
		}
		bodyStart := m[1]
		bodyEnd := len(content)
		for _, next := range matches[i+1:] {
			nextName := strings.TrimSpace(string(content[next[2]:next[3]]))
			if !strings.HasPrefix(nextName, section+".") {
				bodyEnd = next[0]
				break
			}
		}
		return bodyStart, bodyEnd, nil
	}
	return 0, 0, fmt.Errorf("section [%s] not found", section)
}
