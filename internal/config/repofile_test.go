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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRepoFileMissingIsEmpty(t *testing.T) {
	repoPath := t.TempDir()

	rf, err := loadRepoFile(repoPath)
	if err != nil {
		t.Fatalf("loadRepoFile() error = %v", err)
	}
	if rf.Package.Name != "" {
		t.Errorf("Package.Name = %q, want empty", rf.Package.Name)
	}
}

func TestLoadRepoFileParsesSections(t *testing.T) {
	repoPath := t.TempDir()
	content := `
[package]
name = "acme-core"
ecosystem = "python"

[versioning]
strategy = "semver"
bump_mode = "minor"

[dependencies]
internal_pattern = "^acme-"

[hooks]
pre_commit = ["lint"]
disable_workspace_hooks = ["format"]

[ci]
required_checks = ["build", "test"]
timeout_minutes = 20
`
	if err := os.WriteFile(repoConfigPath(repoPath), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rf, err := loadRepoFile(repoPath)
	if err != nil {
		t.Fatalf("loadRepoFile() error = %v", err)
	}
	if rf.Package.Name != "acme-core" {
		t.Errorf("Package.Name = %q, want acme-core", rf.Package.Name)
	}
	if rf.Versioning.BumpMode != "minor" {
		t.Errorf("Versioning.BumpMode = %q, want minor", rf.Versioning.BumpMode)
	}
	if rf.Dependencies.InternalPattern != "^acme-" {
		t.Errorf("Dependencies.InternalPattern = %q, want ^acme-", rf.Dependencies.InternalPattern)
	}
	if len(rf.Hooks.PreCommit) != 1 || rf.Hooks.PreCommit[0] != "lint" {
		t.Errorf("Hooks.PreCommit = %v, want [lint]", rf.Hooks.PreCommit)
	}
	if len(rf.Hooks.DisableWorkspaceHooks) != 1 || rf.Hooks.DisableWorkspaceHooks[0] != "format" {
		t.Errorf("Hooks.DisableWorkspaceHooks = %v, want [format]", rf.Hooks.DisableWorkspaceHooks)
	}
	if rf.CI.TimeoutMinutes != 20 {
		t.Errorf("CI.TimeoutMinutes = %d, want 20", rf.CI.TimeoutMinutes)
	}
}

func TestRepoConfigPath(t *testing.T) {
	got := repoConfigPath(filepath.Join("repos", "core"))
	want := filepath.Join("repos", "core", ".harmonia.toml")
	if got != want {
		t.Errorf("repoConfigPath() = %q, want %q", got, want)
	}
}
