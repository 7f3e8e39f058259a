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
	"strings"
	"time"

	"github.com/jpetrucciani/harmonia/internal/config"
	"github.com/jpetrucciani/harmonia/internal/graph"
	"github.com/jpetrucciani/harmonia/internal/manifest/rewrite"
	"github.com/jpetrucciani/harmonia/internal/report"
	"github.com/jpetrucciani/harmonia/internal/secureio"
	"github.com/jpetrucciani/harmonia/internal/semver"
	"github.com/jpetrucciani/harmonia/internal/vcs"
)

// BumpOptions carries `version bump`'s per-run knobs.
type BumpOptions struct {
	Level    semver.Level
	PreTag   string
	Today    time.Time
	Cascade  bool
	DryRun   bool
	NoCommit bool
}

// BumpEdit is one repo's resolved, possibly-not-yet-written version or
// constraint change, reported to callers in dry-run mode and used as the
// actual edit plan otherwise.
type BumpEdit struct {
	RepoID     string
	OldVersion string
	NewVersion string
	Constraint string // non-empty only for cascaded constraint rewrites
	Violations []graph.ConstraintViolation
}

// PlanBump computes, but does not apply, the edits a bump of target to
// level would make: target's own version bump plus, if cascade is set,
// every cascaded dependent's rewritten constraint. Both Bump and `plan`
// call this so the two commands can never disagree about what a bump
// would do.
func (d *Deps) PlanBump(ctx context.Context, target string, level semver.Level, preTag string, today time.Time, cascade bool) ([]BumpEdit, error) {
	r, err := d.repo(target)
	if err != nil {
		return nil, err
	}

	adapter, spec, content, err := readManifest(r)
	if err != nil {
		return nil, err
	}
	currentVersion, err := adapter.ReadVersion(ctx, spec, content)
	if err != nil {
		return nil, fmt.Errorf("repo %s: read version: %w", target, err)
	}

	mode := semver.Mode(r.Versioning.Strategy)
	if mode == "" {
		mode = semver.ModeSemver
	}
	newVersion, err := semver.Bump(currentVersion, mode, level, semver.BumpOptions{PreTag: preTag, Today: today})
	if err != nil {
		return nil, fmt.Errorf("repo %s: %w", target, err)
	}

	edits := []BumpEdit{{
		RepoID:     target,
		OldVersion: currentVersion.String(),
		NewVersion: newVersion.String(),
		Violations: d.Graph.ValidateBump(target, newVersion),
	}}

	if !cascade {
		return edits, nil
	}

	for _, dependent := range d.Graph.CascadeImpact(target) {
		dr, err := d.repo(dependent)
		if err != nil {
			return nil, err
		}
		depAdapter, depSpec, depContent, err := readManifest(dr)
		if err != nil {
			return nil, err
		}
		deps, err := depAdapter.ReadDependencies(ctx, depSpec, depContent)
		if err != nil {
			return nil, fmt.Errorf("repo %s: read dependencies: %w", dependent, err)
		}
		for _, dep := range deps {
			if dep.Name != r.EffectivePackageName() {
				continue
			}
			newConstraint := rewriteConstraint(dep.Constraint, newVersion.String())
			edits = append(edits, BumpEdit{
				RepoID:     dependent,
				Constraint: newConstraint,
			})
		}
	}

	return edits, nil
}

// rewriteConstraint replaces a constraint's version component with
// newVersion while preserving its operator prefix (=, ^, ~, ~>, >=, ...).
// Range and unparseable constraints are left untouched: there is no single
// version substring to replace.
func rewriteConstraint(raw, newVersion string) string {
	parsed := semver.ParseConstraint(raw)
	if parsed.BaseVersion == "" || parsed.Kind == semver.ConstraintUnknown {
		return raw
	}
	return strings.Replace(raw, parsed.BaseVersion, newVersion, 1)
}

// Bump applies PlanBump's edits across target and, if opts.Cascade, its
// cascaded dependents. In dry-run mode no file is touched and every repo
// reports Skipped with the computed diff in Stdout. Otherwise each edited
// repo's manifest is rewritten and, unless NoCommit, committed with a
// generated message.
func (d *Deps) Bump(ctx context.Context, target string, opts BumpOptions, runOpts RunOptions) (*report.OperationReport, error) {
	edits, err := d.PlanBump(ctx, target, opts.Level, opts.PreTag, opts.Today, opts.Cascade)
	if err != nil {
		return nil, err
	}

	selection := make([]string, len(edits))
	editByRepo := make(map[string]BumpEdit, len(edits))
	for i, e := range edits {
		selection[i] = e.RepoID
		editByRepo[e.RepoID] = e
	}

	task := func(taskCtx context.Context, id string) report.Outcome {
		start := now(d)
		edit := editByRepo[id]

		r, err := d.repo(id)
		if err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}

		adapter, spec, original, err := readManifest(r)
		if err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}
		content := original

		if edit.NewVersion != "" {
			newVersion := semver.Version{Raw: edit.NewVersion}
			content, err = adapter.WriteVersion(taskCtx, spec, content, newVersion)
			if err != nil {
				return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
			}
		}
		if edit.Constraint != "" {
			content, err = adapter.WriteDependencyConstraint(taskCtx, spec, content, d.mustRepo(target).EffectivePackageName(), edit.Constraint)
			if err != nil {
				return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
			}
		}

		if opts.DryRun {
			diff, diffErr := rewrite.UnifiedDiff(spec.FilePath, original, content)
			if diffErr != nil {
				diff = fmt.Sprintf("%s -> %s %s", edit.OldVersion, edit.NewVersion, edit.Constraint)
			}
			return skipped(id, "dry-run:\n"+diff, start)
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
		message := fmt.Sprintf("chore(%s): bump to %s", r.EffectivePackageName(), edit.NewVersion)
		if edit.NewVersion == "" {
			message = fmt.Sprintf("chore(%s): update %s constraint to %s", r.EffectivePackageName(), target, edit.Constraint)
		}
		res, err := d.VCS.Commit(taskCtx, r.Path, message)
		if err != nil {
			return outcome(id, start, res, &vcs.Error{Repo: id, Op: "commit", Stderr: res.Stderr})
		}
		return outcome(id, start, res, nil)
	}

	runOpts.GraphOrder = true
	return d.run(ctx, selection, "bump", runOpts, task)
}

func (d *Deps) mustRepo(id string) *config.Repo {
	r, _ := d.repo(id)
	return r
}
