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

// workspaceFile mirrors <workspace>/.harmonia/config.toml's section layout
// (spec.md §6): workspace, forge, repos, groups, defaults, hooks,
// hooks.custom, mr, versioning, changesets.
type workspaceFile struct {
	Workspace  workspaceSection        `toml:"workspace"`
	Forge      forgeSection            `toml:"forge"`
	Repos      map[string]repoEntry    `toml:"repos"`
	Groups     map[string]any          `toml:"groups"`
	Defaults   defaultsSection         `toml:"defaults"`
	Hooks      hooksSection            `toml:"hooks"`
	MR         mrSection               `toml:"mr"`
	Versioning versioningSection       `toml:"versioning"`
	Changesets changesetsSection       `toml:"changesets"`
}

type workspaceSection struct {
	Name string `toml:"name"`
	Root string `toml:"root"`
}

type forgeSection struct {
	Kind  string `toml:"kind"`
	Token string `toml:"token"`
	Host  string `toml:"host"`
}

type repoEntry struct {
	URL            string   `toml:"url"`
	DefaultBranch  string   `toml:"default_branch"`
	PackageName    string   `toml:"package_name"`
	Ecosystem      string   `toml:"ecosystem"`
	DependsOn      []string `toml:"depends_on"`
	External       bool     `toml:"external"`
	Ignored        bool     `toml:"ignored"`
	VersionPattern string   `toml:"version_pattern"`
}

type defaultsSection struct {
	CloneProtocol    string `toml:"clone_protocol"`
	ReposDir         string `toml:"repos_dir"`
	Parallel         int    `toml:"parallel"`
	IncludeUntracked bool   `toml:"include_untracked"`
}

type hooksSection struct {
	PreCommit []string                `toml:"pre_commit"`
	PrePush   []string                `toml:"pre_push"`
	Custom    map[string]customHook   `toml:"custom"`
}

// customHook is one entry in [hooks.custom]. Args is the plain, literal
// argument list (the common case); ArgsExpr is an optional HCL expression
// evaluated against the hook's invocation context (repo id, package name,
// branch) for hooks whose arguments need to vary per repo rather than be a
// fixed string — e.g. `concat(["--scope"], [repo_package])`.
type customHook struct {
	Command  string `toml:"command"`
	Args     []string `toml:"args"`
	ArgsExpr string `toml:"args_expr"`
}

type mrSection struct {
	LinkStrategy  string `toml:"link_strategy"`
	AddTrailers   bool   `toml:"add_trailers"`
	Template      string `toml:"template"`
	TrackingIssue bool   `toml:"tracking_issue"`
}

type versioningSection struct {
	File     string   `toml:"file"`
	Path     []string `toml:"path"`
	Strategy string   `toml:"strategy"`
	BumpMode string   `toml:"bump_mode"`
	Pattern  string   `toml:"pattern"`
}

type changesetsSection struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// workspaceConfigCandidates returns the two paths spec.md §6 allows for the
// workspace config file, in preference order.
func workspaceConfigCandidates(root string) []string {
	return []string{
		filepath.Join(root, ".harmonia", "config.toml"),
		filepath.Join(root, ".harmonia.toml"),
	}
}

// findWorkspaceConfig locates the workspace config file, preferring
// .harmonia/config.toml over .harmonia.toml.
func findWorkspaceConfig(root string) (string, error) {
	for _, candidate := range workspaceConfigCandidates(root) {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no workspace config found under %s (expected .harmonia/config.toml or .harmonia.toml)", root)
}

func loadWorkspaceFile(path string) (*workspaceFile, error) {
	data, err := secureio.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace config: %w", err)
	}
	var wf workspaceFile
	if err := toml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workspace config %s: %w", path, err)
	}
	return &wf, nil
}

// splitGroups separates the [groups] table's "default" scalar from its
// group-name → repo-list entries, since they share one TOML table.
func splitGroups(raw map[string]any) (groups map[string][]string, defaultGroup string, err error) {
	groups = make(map[string][]string)
	for key, val := range raw {
		if key == "default" {
			s, ok := val.(string)
			if !ok {
				return nil, "", fmt.Errorf("groups.default must be a string")
			}
			defaultGroup = s
			continue
		}
		list, ok := val.([]any)
		if !ok {
			return nil, "", fmt.Errorf("groups.%s must be a list of repo ids", key)
		}
		names := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, "", fmt.Errorf("groups.%s: non-string entry", key)
			}
			names = append(names, s)
		}
		groups[key] = names
	}
	return groups, defaultGroup, nil
}
