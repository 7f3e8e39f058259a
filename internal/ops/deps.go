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
	"fmt"
	"time"

	"github.com/jpetrucciani/harmonia/internal/manifest/rewrite"
	"github.com/jpetrucciani/harmonia/internal/report"
	"github.com/jpetrucciani/harmonia/internal/secureio"
	"github.com/jpetrucciani/harmonia/internal/vcs"
)

// DepsUpdateOptions carries `deps update`'s per-run knobs. Pin, if set,
// overrides every rewritten constraint's version rather than reading the
// depended-on repo's current version.
type DepsUpdateOptions struct {
	Pin      string
	DryRun   bool
	NoCommit bool
}

// DepsUpdate rewrites, for every selected repo, the constraint on each
// internal dependency edge to the depended-on repo's current version (or
// opts.Pin, if set). Graph order is required: a dependent must be visited
// after the repo whose version it reads.
func (d *Deps) DepsUpdate(ctx context.Context, selection []string, opts DepsUpdateOptions, runOpts RunOptions) (*report.OperationReport, error) {
	task := func(taskCtx context.Context, id string) report.Outcome {
		start := now(d)
		r, err := d.repo(id)
		if err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}

		adapter, spec, original, err := readManifest(r)
		if err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}
		content := original

		deps, err := adapter.ReadDependencies(taskCtx, spec, content)
		if err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}

		updated := false
		for _, depID := range d.Graph.DependenciesOf(id) {
			depRepo, err := d.repo(depID)
			if err != nil {
				continue
			}
			targetVersion := opts.Pin
			if targetVersion == "" {
				depAdapter, depSpec, depContent, err := readManifest(depRepo)
				if err != nil {
					return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
				}
				v, err := depAdapter.ReadVersion(taskCtx, depSpec, depContent)
				if err != nil {
					return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
				}
				targetVersion = v.String()
			}

			for _, dep := range deps {
				if dep.Name != depRepo.EffectivePackageName() {
					continue
				}
				newConstraint := rewriteConstraint(dep.Constraint, targetVersion)
				if newConstraint == dep.Constraint {
					continue
				}
				content, err = adapter.WriteDependencyConstraint(taskCtx, spec, content, dep.Name, newConstraint)
				if err != nil {
					return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
				}
				updated = true
			}
		}

		if opts.DryRun {
			if !updated {
				return skipped(id, "no dependency constraints to update", start)
			}
			diff, diffErr := rewrite.UnifiedDiff(spec.FilePath, original, content)
			if diffErr != nil {
				return skipped(id, "dry-run: constraint edits computed but diff rendering failed", start)
			}
			return skipped(id, "dry-run:\n"+diff, start)
		}
		if !updated {
			return skipped(id, "no dependency constraints to update", start)
		}

		if err := secureio.WriteFile(manifestPath(r, spec), content, 0o644); err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}
		if opts.NoCommit {
			return report.Outcome{RepoID: id, State: report.StateSucceeded, Duration: time.Since(start)}
		}

		if res, err := d.VCS.Add(taskCtx, r.Path, []string{spec.FilePath}); err != nil {
			return outcome(id, start, res, &vcs.Error{Repo: id, Op: "add", Stderr: res.Stderr})
		}
		res, err := d.VCS.Commit(taskCtx, r.Path, fmt.Sprintf("chore(%s): update internal dependency constraints", r.EffectivePackageName()))
		if err != nil {
			return outcome(id, start, res, &vcs.Error{Repo: id, Op: "commit", Stderr: res.Stderr})
		}
		return outcome(id, start, res, nil)
	}

	runOpts.GraphOrder = true
	return d.run(ctx, selection, "deps update", runOpts, task)
}
