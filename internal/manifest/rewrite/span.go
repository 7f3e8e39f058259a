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

// Package rewrite provides format-preserving edits for ecosystem manifest
// files: regex-span substitution for TOML and JSON (neither go-toml/v2 nor
// encoding/json exposes a node tree that round-trips byte-for-byte),
// yaml.v3 node-tree traversal for YAML, and unified diff generation for
// --dry-run previews.
package rewrite

import (
	"fmt"
	"regexp"
)

// ReplaceCapturedSpan finds the first match of re in content and replaces
// the byte range of the submatch named "value" with newValue, leaving
// every other byte — including the match's own surrounding syntax —
// untouched. re must declare a "value" named capture group.
func ReplaceCapturedSpan(content []byte, re *regexp.Regexp, newValue string) ([]byte, error) {
	groupIdx := -1
	for i, name := range re.SubexpNames() {
		if name == "value" {
			groupIdx = i
			break
		}
	}
	if groupIdx == -1 {
		return nil, fmt.Errorf("regexp %q has no \"value\" capture group", re.String())
	}

	loc := re.FindSubmatchIndex(content)
	if loc == nil {
		return nil, fmt.Errorf("pattern %q not found", re.String())
	}

	start, end := loc[2*groupIdx], loc[2*groupIdx+1]
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("pattern %q matched but \"value\" group did not participate", re.String())
	}

	out := make([]byte, 0, len(content)-(end-start)+len(newValue))
	out = append(out, content[:start]...)
	out = append(out, newValue...)
	out = append(out, content[end:]...)
	return out, nil
}

// ReplaceAllCapturedSpans behaves like ReplaceCapturedSpan but replaces
// every match in a single pass, applying replace to compute each match's
// replacement text from its captured "value".
func ReplaceAllCapturedSpans(content []byte, re *regexp.Regexp, replace func(oldValue string) (string, bool)) ([]byte, int, error) {
	groupIdx := -1
	for i, name := range re.SubexpNames() {
		if name == "value" {
			groupIdx = i
			break
		}
	}
	if groupIdx == -1 {
		return nil, 0, fmt.Errorf("regexp %q has no \"value\" capture group", re.String())
	}

	matches := re.FindAllSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, 0, nil
	}

	var out []byte
	cursor := 0
	applied := 0
	for _, loc := range matches {
		start, end := loc[2*groupIdx], loc[2*groupIdx+1]
		if start < 0 || end < 0 {
			continue
		}
		newValue, ok := replace(string(content[start:end]))
		if !ok {
			continue
		}
		out = append(out, content[cursor:start]...)
		out = append(out, newValue...)
		cursor = end
		applied++
	}
	out = append(out, content[cursor:]...)
	return out, applied, nil
}
