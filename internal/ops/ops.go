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

// Package ops implements the Coordinated Operation Handlers (spec.md §4.F):
// sync, branch, add/commit/push, version bump (with cascade), dependency
// update, plan, and the mr create/status/update/merge/close family. Each
// handler composes the Configuration Resolver, the Dependency Graph Engine,
// the Selection & Scheduler, the VCS Adapter Contract, the Forge Capability
// Contract, the Changeset Store, and the Ecosystem Manifest Adapters into
// one coordinated run over a Selection.
package ops

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jpetrucciani/harmonia/internal/config"
	"github.com/jpetrucciani/harmonia/internal/forge"
	"github.com/jpetrucciani/harmonia/internal/graph"
	"github.com/jpetrucciani/harmonia/internal/manifest"
	"github.com/jpetrucciani/harmonia/internal/report"
	"github.com/jpetrucciani/harmonia/internal/scheduler"
	"github.com/jpetrucciani/harmonia/internal/secureio"
	"github.com/jpetrucciani/harmonia/internal/vcs"
)

// Deps bundles every lower-level component a handler needs. One Deps value
// is built once per command and borrowed by every handler, mirroring the
// Workspace/Graph ownership rule of spec.md §3's Lifecycle note.
type Deps struct {
	Workspace *config.Workspace
	Graph     *graph.Graph
	VCS       vcs.Adapter
	Forge     forge.Forge
	Now       func() time.Time
}

// RunOptions controls one handler invocation's scheduling behavior.
type RunOptions struct {
	Parallel   int
	FailFast   bool
	GraphOrder bool
}

func (d *Deps) schedulerOptions(operation string, opts RunOptions) scheduler.Options {
	return scheduler.Options{
		Operation:  operation,
		Parallel:   opts.Parallel,
		FailFast:   opts.FailFast,
		GraphOrder: opts.GraphOrder,
	}
}

// run is the common fan-out entry point every handler in this package uses.
func (d *Deps) run(ctx context.Context, selection []string, operation string, opts RunOptions, task scheduler.Task) (*report.OperationReport, error) {
	return scheduler.Run(ctx, d.Graph, selection, d.schedulerOptions(operation, opts), task)
}

// repo resolves a RepoId to its config, erroring with UnknownRepoError if
// the selection names something the workspace no longer has — this should
// not happen since Select draws from the same Workspace, but a handler
// never trusts a bare string blindly.
func (d *Deps) repo(id string) (*config.Repo, error) {
	r, ok := d.Workspace.Repos[id]
	if !ok {
		return nil, &config.UnknownRepoError{Name: id, From: "selection"}
	}
	return r, nil
}

func outcome(id string, start time.Time, res vcs.Result, err error) report.Outcome {
	state := report.StateSucceeded
	var outErr error
	if err != nil {
		state = report.StateFailed
		outErr = err
	}
	return report.Outcome{
		RepoID:   id,
		State:    state,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Err:      outErr,
		Duration: time.Since(start),
	}
}

func skipped(id, reason string, start time.Time) report.Outcome {
	return report.Outcome{
		RepoID:   id,
		State:    report.StateSkipped,
		Stdout:   reason,
		Duration: time.Since(start),
	}
}

// CITimeoutError is the spec.md §7 CITimeout variant: `mr merge` gave up
// waiting for one repo's required checks within its configured
// timeout_minutes.
type CITimeoutError struct {
	Repo string
	MR   string
}

func (e *CITimeoutError) Error() string {
	return "timed out waiting for CI on " + e.Repo + " MR " + e.MR
}

// manifestSpec assembles a manifest.Spec from a repo's versioning and
// dependency policy. Custom-ecosystem repos use CustomSpec verbatim; every
// other ecosystem composes Spec from the resolved VersioningPolicy and
// DependencyPolicy, since Harmonia's config keeps those two concerns in
// separate TOML sections while the manifest adapter contract wants one
// Spec value describing a single file.
func manifestSpec(r *config.Repo) manifest.Spec {
	if r.Ecosystem == manifest.EcosystemCustom {
		return r.CustomSpec
	}
	filePath := r.Versioning.File
	if filePath == "" {
		filePath = r.Dependencies.File
	}
	return manifest.Spec{
		FilePath:         filePath,
		VersionPath:      r.Versioning.Path,
		DependenciesPath: r.Dependencies.Path,
		VersionPattern:   r.Versioning.Pattern,
		InternalPattern:  r.Dependencies.InternalPattern,
		InternalPackages: r.Dependencies.InternalPackages,
	}
}

func manifestPath(r *config.Repo, spec manifest.Spec) string {
	return filepath.Join(r.Path, spec.FilePath)
}

// readManifest loads a repo's manifest file and resolves its adapter.
func readManifest(r *config.Repo) (manifest.Adapter, manifest.Spec, []byte, error) {
	spec := manifestSpec(r)
	adapter, err := manifest.Get(r.Ecosystem)
	if err != nil {
		return nil, spec, nil, fmt.Errorf("repo %s: %w", r.ID, err)
	}
	content, err := secureio.ReadFile(manifestPath(r, spec))
	if err != nil {
		return nil, spec, nil, fmt.Errorf("repo %s: read manifest: %w", r.ID, err)
	}
	return adapter, spec, content, nil
}

func now(d *Deps) time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func changesetDir(d *Deps) string {
	return d.Workspace.Policy.Changesets.Dir
}
