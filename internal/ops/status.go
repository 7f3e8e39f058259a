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
	"sync"

	"github.com/jpetrucciani/harmonia/internal/vcs"
)

// Status gathers vcs.Status for every selected repo, concurrently, keyed by
// RepoId. A repo whose status call fails is simply omitted: status is a
// read-only, best-effort report, not a coordinated operation with its own
// OperationReport.
func (d *Deps) Status(ctx context.Context, selection []string) map[string]vcs.Status {
	results := make(map[string]vcs.Status, len(selection))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range selection {
		r, err := d.repo(id)
		if err != nil {
			continue
		}
		wg.Add(1)
		go func(id string, repoPath string) {
			defer wg.Done()
			status, err := d.VCS.Status(ctx, repoPath)
			if err != nil {
				return
			}
			mu.Lock()
			results[id] = status
			mu.Unlock()
		}(id, r.Path)
	}

	wg.Wait()
	return results
}

// DetectChanged computes the `--changed` selection input (spec.md §4.E,
// §8 scenario 6): every non-ignored repo whose working tree has a pending
// change, per the workspace's include_untracked default.
func (d *Deps) DetectChanged(ctx context.Context) map[string]bool {
	all := d.Workspace.SortedRepoIDs()
	statuses := d.Status(ctx, all)

	changed := make(map[string]bool, len(statuses))
	for id, status := range statuses {
		if status.Dirty(d.Workspace.Policy.Defaults.IncludeUntracked) {
			changed[id] = true
		}
	}
	return changed
}
