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

package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// GitAdapter implements Adapter by shelling out to the git binary found on
// PATH. Every argument vector is built from caller-controlled strings, not
// passed through a shell, so there is no injection surface beyond git's
// own argument parsing.
type GitAdapter struct {
	// Binary overrides the git executable name, mainly for tests.
	Binary string
}

// NewGitAdapter returns a GitAdapter invoking the system "git".
func NewGitAdapter() *GitAdapter {
	return &GitAdapter{Binary: "git"}
}

func (g *GitAdapter) bin() string {
	if g.Binary != "" {
		return g.Binary
	}
	return "git"
}

// run executes git with args in dir, capturing stdout/stderr separately.
// #nosec G204 -- args are a fixed argv built from caller-controlled
// strings (branch names, paths, refs); no shell is invoked.
func (g *GitAdapter) run(ctx context.Context, dir string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, g.bin(), args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	return result, err
}

// cloneArgs applies depth's tagged variant as "--depth N" when shallow,
// nothing when Full.
func cloneArgs(remoteURL, dest string, depth CloneDepth) []string {
	args := []string{"clone"}
	if !depth.Full && depth.N > 0 {
		args = append(args, "--depth", strconv.Itoa(depth.N))
	}
	return append(args, remoteURL, dest)
}

func (g *GitAdapter) Clone(ctx context.Context, remoteURL, dest string, depth CloneDepth) (Result, error) {
	return g.run(ctx, ".", cloneArgs(remoteURL, dest, depth)...)
}

func (g *GitAdapter) Fetch(ctx context.Context, repoPath string) (Result, error) {
	return g.run(ctx, repoPath, "fetch", "--prune")
}

func (g *GitAdapter) CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	result, err := g.run(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

func (g *GitAdapter) Checkout(ctx context.Context, repoPath, branch string) (Result, error) {
	return g.run(ctx, repoPath, "checkout", branch)
}

func (g *GitAdapter) CreateBranch(ctx context.Context, repoPath, branch string) (Result, error) {
	return g.run(ctx, repoPath, "checkout", "-b", branch)
}

// Status parses `git status --porcelain=v1 -b` into path sets and upstream
// ahead/behind counts.
func (g *GitAdapter) Status(ctx context.Context, repoPath string) (Status, error) {
	result, err := g.run(ctx, repoPath, "status", "--porcelain=v1", "-b")
	if err != nil {
		return Status{}, err
	}

	var status Status
	lines := strings.Split(result.Stdout, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "##") {
		parseBranchLine(lines[0], &status)
		lines = lines[1:]
	}

	for _, line := range lines {
		if len(line) < 3 {
			continue
		}
		indexState, worktreeState, path := line[0], line[1], strings.TrimSpace(line[2:])
		switch {
		case indexState == 'U' || worktreeState == 'U':
			status.Conflicts = append(status.Conflicts, path)
		case indexState == '?' && worktreeState == '?':
			status.Untracked = append(status.Untracked, path)
		case indexState != ' ':
			status.Staged = append(status.Staged, path)
		case worktreeState != ' ':
			status.Modified = append(status.Modified, path)
		}
	}
	return status, nil
}

// parseBranchLine reads the "## branch...origin/branch [ahead N, behind M]"
// header git status emits as its first porcelain line.
func parseBranchLine(line string, status *Status) {
	body := strings.TrimPrefix(line, "## ")
	name := body
	if idx := strings.IndexAny(body, " ["); idx >= 0 {
		name = body[:idx]
	}
	if idx := strings.Index(name, "..."); idx >= 0 {
		status.HasUpstream = true
		name = name[:idx]
	}
	status.Branch = name

	if start := strings.Index(body, "["); start >= 0 {
		end := strings.Index(body, "]")
		if end > start {
			for _, field := range strings.Split(body[start+1:end], ", ") {
				field = strings.TrimSpace(field)
				switch {
				case strings.HasPrefix(field, "ahead "):
					status.Ahead, _ = strconv.Atoi(strings.TrimPrefix(field, "ahead "))
				case strings.HasPrefix(field, "behind "):
					status.Behind, _ = strconv.Atoi(strings.TrimPrefix(field, "behind "))
				}
			}
		}
	}
}

func (g *GitAdapter) Add(ctx context.Context, repoPath string, paths []string) (Result, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	args := append([]string{"add"}, paths...)
	return g.run(ctx, repoPath, args...)
}

func (g *GitAdapter) Commit(ctx context.Context, repoPath, message string) (Result, error) {
	return g.run(ctx, repoPath, "commit", "-m", message)
}

func pushArgs(opts PushOptions) []string {
	args := []string{"push"}
	if opts.Force {
		args = append(args, "--force-with-lease")
	}
	if opts.SetUpstream {
		args = append(args, "--set-upstream")
	}
	if opts.Remote != "" {
		args = append(args, opts.Remote)
	}
	if opts.Branch != "" {
		args = append(args, opts.Branch)
	}
	return args
}

func (g *GitAdapter) Push(ctx context.Context, repoPath string, opts PushOptions) (Result, error) {
	return g.run(ctx, repoPath, pushArgs(opts)...)
}

func (g *GitAdapter) Diff(ctx context.Context, repoPath string) (string, error) {
	result, err := g.run(ctx, repoPath, "diff", "HEAD")
	if err != nil {
		return "", err
	}
	return result.Stdout, nil
}

func (g *GitAdapter) Stash(ctx context.Context, repoPath string) (Result, error) {
	return g.run(ctx, repoPath, "stash", "push", "--include-untracked")
}

func (g *GitAdapter) StashPop(ctx context.Context, repoPath string) (Result, error) {
	return g.run(ctx, repoPath, "stash", "pop")
}

func (g *GitAdapter) RebaseOnto(ctx context.Context, repoPath, upstream string) (Result, error) {
	return g.run(ctx, repoPath, "rebase", upstream)
}

func (g *GitAdapter) Merge(ctx context.Context, repoPath, ref string) (Result, error) {
	return g.run(ctx, repoPath, "merge", "--no-edit", ref)
}

func (g *GitAdapter) FastForward(ctx context.Context, repoPath, ref string) (Result, error) {
	return g.run(ctx, repoPath, "merge", "--ff-only", ref)
}
