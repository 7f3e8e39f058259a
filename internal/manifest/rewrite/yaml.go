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
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ReplaceYAMLValue walks a YAML document along path (where "*" matches any
// key or sequence element) and replaces the scalar equal to oldValue with
// newValue, re-encoding the whole node tree. yaml.v3's Node carries
// comments and style, so round-tripping through it preserves far more of
// the original formatting than a decode-to-struct-then-encode cycle would.
func ReplaceYAMLValue(content []byte, path []string, oldValue, newValue string) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	updated := false
	if err := walkAndReplace(&root, path, 0, oldValue, newValue, &updated); err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("value %q not found at path %v", oldValue, path)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func walkAndReplace(node *yaml.Node, path []string, depth int, oldValue, newValue string, updated *bool) error {
	if node == nil || depth >= len(path) {
		return nil
	}
	key := path[depth]

	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := walkAndReplace(child, path, depth, oldValue, newValue, updated); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if key != "*" && keyNode.Value != key {
				continue
			}
			if depth == len(path)-1 {
				if valueNode.Value == oldValue {
					valueNode.Value = newValue
					*updated = true
				}
				continue
			}
			if err := walkAndReplace(valueNode, path, depth+1, oldValue, newValue, updated); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		if key == "*" || key == "[]" {
			for _, child := range node.Content {
				if err := walkAndReplace(child, path, depth+1, oldValue, newValue, updated); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
