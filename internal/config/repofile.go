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
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/jpetrucciani/harmonia/internal/secureio"
)

// repoFile mirrors <repo>/.harmonia.toml's section layout (spec.md §6):
// package, versioning, dependencies, hooks (+ hooks.custom,
// disable_workspace_hooks), ci.
type repoFile struct {
	Package      packageSection      `toml:"package"`
	Versioning   versioningSection   `toml:"versioning"`
	Dependencies dependenciesSection `toml:"dependencies"`
	Hooks        repoHooksSection    `toml:"hooks"`
	CI           ciSection           `toml:"ci"`
}

type packageSection struct {
	Name      string `toml:"name"`
	Ecosystem string `toml:"ecosystem"`
}

type dependenciesSection struct {
	File             string   `toml:"file"`
	Path             []string `toml:"path"`
	InternalPattern  string   `toml:"internal_pattern"`
	InternalPackages []string `toml:"internal_packages"`
}

type repoHooksSection struct {
	PreCommit             []string              `toml:"pre_commit"`
	PrePush               []string              `toml:"pre_push"`
	Custom                map[string]customHook `toml:"custom"`
	DisableWorkspaceHooks []string              `toml:"disable_workspace_hooks"`
}

type ciSection struct {
	RequiredChecks []string `toml:"required_checks"`
	TimeoutMinutes int      `toml:"timeout_minutes"`
}

// repoConfigPath is <repo-path>/.harmonia.toml.
func repoConfigPath(repoPath string) string {
	return filepath.Join(repoPath, ".harmonia.toml")
}

// loadRepoFile reads a repo's optional config file. A missing file is not
// an error: the repo simply has no repo-level overrides.
func loadRepoFile(repoPath string) (*repoFile, error) {
	path := repoConfigPath(repoPath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &repoFile{}, nil
	}
	data, err := secureio.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repo config %s: %w", path, err)
	}
	var rf repoFile
	if err := toml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse repo config %s: %w", path, err)
	}
	return &rf, nil
}
