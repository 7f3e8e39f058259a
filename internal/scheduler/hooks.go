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

package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jpetrucciani/harmonia/internal/config"
)

// HookKind is the two hook points commit/push compose (spec.md §4.E).
type HookKind string

const (
	HookKindPreCommit HookKind = "pre_commit"
	HookKindPrePush   HookKind = "pre_push"
)

// HookFailedError is the spec.md §7 HookFailed variant: a hook command
// exited non-zero, aborting the operation for that repo.
type HookFailedError struct {
	Repo   string
	Hook   string
	Stderr string
}

func (e *HookFailedError) Error() string {
	return "hook " + e.Hook + " failed for " + e.Repo + ": " + e.Stderr
}

// HookExecer runs one already-split hook command in dir, returning
// whatever the process wrote to stderr for diagnostics.
type HookExecer func(ctx context.Context, dir, command string, args []string) (stderr string, err error)

// DefaultHookExecer runs hook commands as real subprocesses. Hooks are
// judged on exit status; stdout is discarded, stderr is captured for
// HookFailedError.
// #nosec G204 -- command and args come from hook configuration the
// workspace or repo owner supplied, split on whitespace per spec.md §4.E
// rather than interpreted by a shell.
func DefaultHookExecer(ctx context.Context, dir, command string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// WorkspaceHookShouldRun reports whether kind's shared workspace hook runs
// at all for the current selection. Per spec.md §4.E it is skipped only
// when every selected repo disables it.
func WorkspaceHookShouldRun(kind HookKind, ws *config.Workspace, selection []string) bool {
	for _, id := range selection {
		repo, ok := ws.Repos[id]
		if !ok {
			continue
		}
		if !disablesKind(repo.Hooks.DisableWorkspaceHooks, kind) {
			return true
		}
	}
	return false
}

func disablesKind(disabled []string, kind HookKind) bool {
	for _, name := range disabled {
		if name == string(kind) {
			return true
		}
	}
	return false
}

// RunWorkspaceHook executes the workspace's command list for kind once, at
// workspaceRoot.
func RunWorkspaceHook(ctx context.Context, kind HookKind, ws *config.Workspace, workspaceRoot string, exec HookExecer) error {
	return runCommandList(ctx, "<workspace>", kindCommands(ws.Policy.Hooks, kind), workspaceRoot, exec)
}

// RunRepoHooks executes repo's own per-kind command list, followed (for
// pre_commit only) by its composed custom hooks, each in repoPath. Custom
// hooks run during the pre_commit phase only: they are framed around
// staging a commit (args_expr has access to repo_id/repo_package/branch),
// and spec.md names no pre_push use for them.
func RunRepoHooks(ctx context.Context, kind HookKind, ws *config.Workspace, repo *config.Repo, repoPath string, exec HookExecer) error {
	if err := runCommandList(ctx, repo.ID, kindCommands(repo.Hooks, kind), repoPath, exec); err != nil {
		return err
	}
	if kind != HookKindPreCommit {
		return nil
	}

	composed, err := repo.EffectiveCustomHooks(ws.Policy.Hooks.Custom)
	if err != nil {
		return fmt.Errorf("compose custom hooks for %s: %w", repo.ID, err)
	}
	for _, hook := range composed {
		if stderr, err := exec(ctx, repoPath, hook.Command, hook.Args); err != nil {
			return &HookFailedError{Repo: repo.ID, Hook: hook.Name, Stderr: stderr}
		}
	}
	return nil
}

func kindCommands(hooks config.HookSet, kind HookKind) []string {
	if kind == HookKindPreCommit {
		return hooks.PreCommit
	}
	return hooks.PrePush
}

func runCommandList(ctx context.Context, repoID string, commands []string, dir string, exec HookExecer) error {
	for _, raw := range commands {
		command, args := splitCommand(raw)
		if command == "" {
			continue
		}
		if stderr, err := exec(ctx, dir, command, args); err != nil {
			return &HookFailedError{Repo: repoID, Hook: raw, Stderr: stderr}
		}
	}
	return nil
}

// splitCommand splits a hook command string on whitespace; hook commands
// are executed directly, never through a shell parser (spec.md §4.E).
func splitCommand(raw string) (string, []string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
