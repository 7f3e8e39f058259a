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
	"path/filepath"
	"testing"

	"github.com/jpetrucciani/harmonia/internal/vcs"
)

func TestSyncClonesMissingRepos(t *testing.T) {
	ws, root := chainWorkspace(t)
	ws.Repos["core"].Path = filepath.Join(root, "does-not-exist-yet")
	v := newFakeVCS()
	d := buildDeps(t, ws, v, nil)

	rep, err := d.Sync(context.Background(), []string{"core"}, SyncOptions{Depth: vcs.FullClone()}, RunOptions{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if rep.Outcomes[0].State != "succeeded" {
		t.Errorf("Sync() outcome = %+v, want succeeded", rep.Outcomes[0])
	}
}

func TestSyncFetchesAndFastForwardsExistingRepos(t *testing.T) {
	ws, _ := chainWorkspace(t)
	v := newFakeVCS()
	d := buildDeps(t, ws, v, nil)

	rep, err := d.Sync(context.Background(), []string{"core"}, SyncOptions{}, RunOptions{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if rep.Outcomes[0].State != "succeeded" {
		t.Errorf("Sync() outcome = %+v, want succeeded", rep.Outcomes[0])
	}
}
