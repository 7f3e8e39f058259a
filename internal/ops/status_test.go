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

package ops

import (
	"context"
	"testing"

	"github.com/jpetrucciani/harmonia/internal/vcs"
)

func TestStatusOmitsFailingRepos(t *testing.T) {
	ws, _ := chainWorkspace(t)
	v := newFakeVCS()
	v.failStatus = map[string]error{ws.Repos["lib"].Path: context.Canceled}
	d := buildDeps(t, ws, v, nil)

	statuses := d.Status(context.Background(), []string{"core", "lib"})
	if _, ok := statuses["lib"]; ok {
		t.Errorf("Status() kept a failing repo: %v", statuses)
	}
	if _, ok := statuses["core"]; !ok {
		t.Errorf("Status() dropped a succeeding repo: %v", statuses)
	}
}

func TestDetectChangedReflectsDirtyRepos(t *testing.T) {
	ws, _ := chainWorkspace(t)
	v := newFakeVCS()
	v.statuses[ws.Repos["lib"].Path] = vcs.Status{Modified: []string{"x"}}
	d := buildDeps(t, ws, v, nil)

	changed := d.DetectChanged(context.Background())
	if !changed["lib"] || changed["core"] {
		t.Errorf("DetectChanged() = %v, want only lib", changed)
	}
}
