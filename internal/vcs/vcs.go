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

// Package vcs defines the narrow VCS Adapter Contract Harmonia's core talks
// to (spec.md §4.H) and a concrete adapter that shells out to the git
// binary. The contract makes no claim about how operations are carried
// out; callers depend only on Adapter.
package vcs

import (
	"context"
	"fmt"
)

// CloneDepth is a tagged variant rather than an optional int: Full means a
// complete clone, N means "--depth N". Zero value is Full.
type CloneDepth struct {
	Full bool
	N    int
}

// FullClone is the zero-configuration depth: a complete clone.
func FullClone() CloneDepth { return CloneDepth{Full: true} }

// ShallowClone requests a clone truncated to the given depth.
func ShallowClone(n int) CloneDepth { return CloneDepth{N: n} }

// Result captures a completed command's output for error reporting. Stdout
// and Stderr hold everything the underlying process wrote, regardless of
// whether the call succeeded.
type Result struct {
	Stdout string
	Stderr string
}

// Status is a repo's working-tree state: staged/modified/untracked paths,
// conflict markers, and the upstream ahead/behind counts.
type Status struct {
	Branch     string
	Staged     []string
	Modified   []string
	Untracked  []string
	Conflicts  []string
	Ahead      int
	Behind     int
	HasUpstream bool
}

// Dirty reports whether the working tree or index has any pending change.
// include_untracked gates whether untracked paths count, per spec.md §4.E.
func (s Status) Dirty(includeUntracked bool) bool {
	if len(s.Staged) > 0 || len(s.Modified) > 0 || len(s.Conflicts) > 0 {
		return true
	}
	return includeUntracked && len(s.Untracked) > 0
}

// PushOptions carries push's variable inputs. SetUpstream only applies to
// branches without one (spec.md §4.F); Force requires a confirmation token
// the caller is responsible for having obtained.
type PushOptions struct {
	Remote      string
	Branch      string
	SetUpstream bool
	Force       bool
}

// UpdateMode selects how sync reconciles a repo's current branch with its
// upstream once fetched.
type UpdateMode string

const (
	UpdateFFOnly UpdateMode = "ff-only"
	UpdateRebase UpdateMode = "rebase"
	UpdateMerge  UpdateMode = "merge"
)

// Adapter is the VCS Adapter Contract (spec.md §4.H). Every method takes a
// cancellation token; implementations must honor ctx cancellation by
// terminating any in-flight subprocess.
type Adapter interface {
	Clone(ctx context.Context, remoteURL, dest string, depth CloneDepth) (Result, error)
	Fetch(ctx context.Context, repoPath string) (Result, error)
	CurrentBranch(ctx context.Context, repoPath string) (string, error)
	Checkout(ctx context.Context, repoPath, branch string) (Result, error)
	CreateBranch(ctx context.Context, repoPath, branch string) (Result, error)
	Status(ctx context.Context, repoPath string) (Status, error)
	Add(ctx context.Context, repoPath string, paths []string) (Result, error)
	Commit(ctx context.Context, repoPath, message string) (Result, error)
	Push(ctx context.Context, repoPath string, opts PushOptions) (Result, error)
	Diff(ctx context.Context, repoPath string) (string, error)
	Stash(ctx context.Context, repoPath string) (Result, error)
	StashPop(ctx context.Context, repoPath string) (Result, error)
	RebaseOnto(ctx context.Context, repoPath, upstream string) (Result, error)
	Merge(ctx context.Context, repoPath, ref string) (Result, error)
	FastForward(ctx context.Context, repoPath, ref string) (Result, error)
}

// Error is the spec.md §7 VcsError variant: a fatal failure attributable to
// one repo and one logical operation.
type Error struct {
	Repo   string
	Op     string
	Stderr string
}

func (e *Error) Error() string {
	return fmt.Sprintf("vcs error in %s during %s: %s", e.Repo, e.Op, e.Stderr)
}
