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
)

// JSONStringField replaces the string value of a top-level `"key": "value"`
// field with newValue, matching only the first occurrence. Unlike the
// teacher's package.json handling (which decodes into a struct and
// re-marshals the whole document with json.MarshalIndent), this never
// touches key order, indentation, or any other field's formatting.
func JSONStringField(content []byte, key, newValue string) ([]byte, error) {
	pattern := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"(?P<value>(?:[^"\\]|\\.)*)"`)
	return ReplaceCapturedSpan(content, pattern, escapeJSONString(newValue))
}

// JSONDependencyField replaces one dependency's version string inside a
// named dependency block such as "dependencies": { ... "name": "ver" ... },
// preserving the constraint-prefix convention (^, ~, >=) already present
// on the old value when keepPrefix is true.
func JSONDependencyField(content []byte, block, name, newVersion string, keepPrefix bool) ([]byte, error) {
	blockPattern := regexp.MustCompile(`"` + regexp.QuoteMeta(block) + `"\s*:\s*\{`)
	blockLoc := blockPattern.FindIndex(content)
	if blockLoc == nil {
		return nil, fmt.Errorf("dependency block %q not found", block)
	}

	depthEnd, err := matchingBrace(content, blockLoc[1]-1)
	if err != nil {
		return nil, err
	}

	depPattern := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*"(?P<value>(?:[^"\\]|\\.)*)"`)
	section := content[blockLoc[1]:depthEnd]
	loc := depPattern.FindSubmatchIndex(section)
	if loc == nil {
		return nil, fmt.Errorf("dependency %q not found in %q block", name, block)
	}

	groupIdx := 0
	for i, n := range depPattern.SubexpNames() {
		if n == "value" {
			groupIdx = i
		}
	}
	valStart, valEnd := loc[2*groupIdx], loc[2*groupIdx+1]

	replacement := newVersion
	if keepPrefix {
		old := string(section[valStart:valEnd])
		switch {
		case len(old) > 0 && old[0] == '^':
			replacement = "^" + newVersion
		case len(old) > 0 && old[0] == '~':
			replacement = "~" + newVersion
		case len(old) >= 2 && old[:2] == ">=":
			replacement = ">=" + newVersion
		}
	}

	absStart, absEnd := blockLoc[1]+valStart, blockLoc[1]+valEnd
	out := make([]byte, 0, len(content)-(absEnd-absStart)+len(replacement))
	out = append(out, content[:absStart]...)
	out = append(out, escapeJSONString(replacement)...)
	out = append(out, content[absEnd:]...)
	return out, nil
}

// matchingBrace returns the index of the '}' that matches the '{' at openIdx.
func matchingBrace(content []byte, openIdx int) (int, error) {
	depth := 0
	inString := false
	escaped := false
	for i := openIdx; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced braces from offset %d", openIdx)
}

func escapeJSONString(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			out = append(out, '\\', s[i])
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
