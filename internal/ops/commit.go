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
	"time"

	"github.com/jpetrucciani/harmonia/internal/report"
	"github.com/jpetrucciani/harmonia/internal/scheduler"
	"github.com/jpetrucciani/harmonia/internal/vcs"
)

// CommitOptions carries `commit`'s per-run knobs.
type CommitOptions struct {
	Message  string
	Paths    []string // empty means "everything" (git add -A semantics)
	HookExec scheduler.HookExecer
}

// Commit stages paths (or everything, if Paths is empty) and commits with
// message in every selected repo whose working tree is dirty. A repo with
// nothing staged is reported Skipped rather than Failed: committing nothing
// is not an error condition for a coordinated run.
func (d *Deps) Commit(ctx context.Context, selection []string, opts CommitOptions, runOpts RunOptions) (*report.OperationReport, error) {
	task := func(taskCtx context.Context, id string) report.Outcome {
		start := now(d)
		r, err := d.repo(id)
		if err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}

		status, err := d.VCS.Status(taskCtx, r.Path)
		if err != nil {
			return outcome(id, start, vcs.Result{}, &vcs.Error{Repo: id, Op: "status", Stderr: err.Error()})
		}
		if !status.Dirty(d.Workspace.Policy.Defaults.IncludeUntracked) {
			return skipped(id, "nothing to commit", start)
		}

		paths := opts.Paths
		if len(paths) == 0 {
			paths = []string{"."}
		}
		if res, err := d.VCS.Add(taskCtx, r.Path, paths); err != nil {
			return outcome(id, start, res, &vcs.Error{Repo: id, Op: "add", Stderr: res.Stderr})
		}

		if opts.HookExec != nil {
			if err := scheduler.RunRepoHooks(taskCtx, scheduler.HookKindPreCommit, d.Workspace, r, r.Path, opts.HookExec); err != nil {
				return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
			}
		}

		res, err := d.VCS.Commit(taskCtx, r.Path, opts.Message)
		if err != nil {
			return outcome(id, start, res, &vcs.Error{Repo: id, Op: "commit", Stderr: res.Stderr})
		}
		return outcome(id, start, res, nil)
	}

	return d.run(ctx, selection, "commit", runOpts, task)
}
