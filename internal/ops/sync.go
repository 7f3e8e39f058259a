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
	"os"
	"time"

	"github.com/jpetrucciani/harmonia/internal/report"
	"github.com/jpetrucciani/harmonia/internal/vcs"
)

// SyncOptions carries `sync`'s per-run knobs beyond scheduling.
type SyncOptions struct {
	Depth vcs.CloneDepth
	Mode  vcs.UpdateMode
}

// Sync clones every selected repo missing a working tree and otherwise
// fetches and reconciles it with its upstream per opts.Mode. Sync is not a
// graph-order operation (spec.md §5): repos have no ordering dependency on
// each other for this step.
func (d *Deps) Sync(ctx context.Context, selection []string, syncOpts SyncOptions, runOpts RunOptions) (*report.OperationReport, error) {
	task := func(taskCtx context.Context, id string) report.Outcome {
		start := now(d)
		r, err := d.repo(id)
		if err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}

		if _, statErr := os.Stat(r.Path); os.IsNotExist(statErr) {
			res, cloneErr := d.VCS.Clone(taskCtx, r.RemoteURL, r.Path, syncOpts.Depth)
			if cloneErr != nil {
				cloneErr = &vcs.Error{Repo: id, Op: "clone", Stderr: res.Stderr}
			}
			return outcome(id, start, res, cloneErr)
		}

		fetchRes, err := d.VCS.Fetch(taskCtx, r.Path)
		if err != nil {
			return outcome(id, start, fetchRes, &vcs.Error{Repo: id, Op: "fetch", Stderr: fetchRes.Stderr})
		}

		branch := r.DefaultBranch
		if branch == "" {
			current, branchErr := d.VCS.CurrentBranch(taskCtx, r.Path)
			if branchErr != nil {
				return outcome(id, start, vcs.Result{}, &vcs.Error{Repo: id, Op: "current-branch", Stderr: branchErr.Error()})
			}
			branch = current
		}

		var reconcileRes vcs.Result
		var reconcileErr error
		switch syncOpts.Mode {
		case vcs.UpdateRebase:
			reconcileRes, reconcileErr = d.VCS.RebaseOnto(taskCtx, r.Path, branch)
		case vcs.UpdateMerge:
			reconcileRes, reconcileErr = d.VCS.Merge(taskCtx, r.Path, branch)
		default:
			reconcileRes, reconcileErr = d.VCS.FastForward(taskCtx, r.Path, branch)
		}
		if reconcileErr != nil {
			reconcileErr = &vcs.Error{Repo: id, Op: "sync", Stderr: reconcileRes.Stderr}
		}
		return outcome(id, start, reconcileRes, reconcileErr)
	}

	return d.run(ctx, selection, "sync", runOpts, task)
}
