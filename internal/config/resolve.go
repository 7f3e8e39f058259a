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
	"runtime"
	"strconv"

	"github.com/jpetrucciani/harmonia/internal/manifest"
)

// Overrides carries the environment and CLI layers, the two highest-
// precedence inputs in the resolution order (spec.md §4.C: built-in
// defaults → workspace config → repo config → environment → CLI).
type Overrides struct {
	Env CLIFlags
	CLI CLIFlags
}

// CLIFlags is the subset of workspace policy that environment variables
// and CLI flags are allowed to override.
type CLIFlags struct {
	ReposDir     *string
	Parallel     *int
	ForgeToken   *string
	Workspace    *string
	Config       *string
	LogLevel     *string
	NoColor      *bool
}

// EnvOverrides reads the HARMONIA_* environment variables into a CLIFlags,
// per spec.md §6's documented environment surface.
func EnvOverrides() CLIFlags {
	var flags CLIFlags
	if v, ok := os.LookupEnv("HARMONIA_REPOS_DIR"); ok {
		flags.ReposDir = &v
	}
	if v, ok := os.LookupEnv("HARMONIA_PARALLEL"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			flags.Parallel = &n
		}
	}
	if v, ok := os.LookupEnv("HARMONIA_FORGE_TOKEN"); ok {
		flags.ForgeToken = &v
	}
	if v, ok := os.LookupEnv("HARMONIA_WORKSPACE"); ok {
		flags.Workspace = &v
	}
	if v, ok := os.LookupEnv("HARMONIA_CONFIG"); ok {
		flags.Config = &v
	}
	if v, ok := os.LookupEnv("HARMONIA_LOG_LEVEL"); ok {
		flags.LogLevel = &v
	}
	if _, ok := os.LookupEnv("HARMONIA_NO_COLOR"); ok {
		t := true
		flags.NoColor = &t
	}
	return flags
}

func defaultWorkspacePolicy() WorkspacePolicy {
	return WorkspacePolicy{
		Defaults: DefaultsPolicy{
			CloneProtocol: "https",
			ReposDir:      "repos",
			Parallel:      runtime.NumCPU(),
		},
		MR: MRPolicy{
			LinkStrategy: "description",
		},
		Versioning: VersioningPolicy{
			Strategy: "semver",
			BumpMode: "minor",
		},
	}
}

// Resolve loads the workspace config at root, overlays each repo's own
// config file, applies environment and CLI overrides, runs every hard
// validation, and returns the immutable Workspace.
func Resolve(root string, overrides Overrides) (*Workspace, error) {
	var configPath string
	for _, p := range []*string{overrides.CLI.Config, overrides.Env.Config} {
		if p != nil && *p != "" {
			configPath = *p
			break
		}
	}
	if configPath == "" {
		found, err := findWorkspaceConfig(root)
		if err != nil {
			return nil, &ConfigError{Field: "workspace", Location: root, Reason: err.Error()}
		}
		configPath = found
	}

	wf, err := loadWorkspaceFile(configPath)
	if err != nil {
		return nil, &ConfigError{Field: "workspace", Location: configPath, Reason: err.Error()}
	}

	policy := defaultWorkspacePolicy()
	applyWorkspaceSection(&policy, wf)
	applyOverrides(&policy, overrides)
	if policy.Changesets.Dir != "" && !filepath.IsAbs(policy.Changesets.Dir) {
		policy.Changesets.Dir = filepath.Join(root, policy.Changesets.Dir)
	}

	if err := validateWorkspacePolicy(policy, configPath); err != nil {
		return nil, err
	}

	groups, defaultGroup, err := splitGroups(wf.Groups)
	if err != nil {
		return nil, &ConfigError{Field: "groups", Location: configPath, Reason: err.Error()}
	}

	repos, err := buildRepos(root, wf, policy)
	if err != nil {
		return nil, err
	}

	if err := validateReferences(repos, groups, defaultGroup); err != nil {
		return nil, err
	}

	return &Workspace{
		Root:         root,
		Policy:       policy,
		Repos:        repos,
		Groups:       groups,
		DefaultGroup: defaultGroup,
	}, nil
}

func applyWorkspaceSection(policy *WorkspacePolicy, wf *workspaceFile) {
	policy.Forge = ForgeConfig{Kind: wf.Forge.Kind, Token: wf.Forge.Token, Host: wf.Forge.Host}

	if wf.Defaults.CloneProtocol != "" {
		policy.Defaults.CloneProtocol = wf.Defaults.CloneProtocol
	}
	if wf.Defaults.ReposDir != "" {
		policy.Defaults.ReposDir = wf.Defaults.ReposDir
	}
	if wf.Defaults.Parallel > 0 {
		policy.Defaults.Parallel = wf.Defaults.Parallel
	}
	policy.Defaults.IncludeUntracked = wf.Defaults.IncludeUntracked

	policy.Hooks = HookSet{
		PreCommit: wf.Hooks.PreCommit,
		PrePush:   wf.Hooks.PrePush,
		Custom:    customHookArgs(wf.Hooks.Custom),
	}

	if wf.MR.LinkStrategy != "" {
		policy.MR.LinkStrategy = wf.MR.LinkStrategy
	}
	policy.MR.AddTrailers = wf.MR.AddTrailers
	policy.MR.Template = wf.MR.Template
	policy.MR.TrackingIssue = wf.MR.TrackingIssue

	if wf.Versioning.Strategy != "" {
		policy.Versioning.Strategy = wf.Versioning.Strategy
	}
	if wf.Versioning.BumpMode != "" {
		policy.Versioning.BumpMode = wf.Versioning.BumpMode
	}
	policy.Versioning.File = wf.Versioning.File
	policy.Versioning.Path = wf.Versioning.Path
	policy.Versioning.Pattern = wf.Versioning.Pattern

	policy.Changesets = ChangesetPolicy{Enabled: wf.Changesets.Enabled, Dir: wf.Changesets.Dir}
}

// customHookArgs carries each custom hook spec through unresolved: args_expr
// hooks are evaluated lazily per repo at invocation time via
// Repo.EffectiveCustomHooks, since their arguments depend on repo identity.
func customHookArgs(raw map[string]customHook) map[string]CustomHookSpec {
	out := make(map[string]CustomHookSpec, len(raw))
	for name, h := range raw {
		out[name] = CustomHookSpec{Command: h.Command, Args: h.Args, ArgsExpr: h.ArgsExpr}
	}
	return out
}

func applyOverrides(policy *WorkspacePolicy, overrides Overrides) {
	for _, flags := range []CLIFlags{overrides.Env, overrides.CLI} {
		if flags.ReposDir != nil {
			policy.Defaults.ReposDir = *flags.ReposDir
		}
		if flags.Parallel != nil {
			policy.Defaults.Parallel = *flags.Parallel
		}
		if flags.ForgeToken != nil {
			policy.Forge.Token = *flags.ForgeToken
		}
	}
}

func validateWorkspacePolicy(policy WorkspacePolicy, location string) error {
	if policy.Defaults.CloneProtocol != "ssh" && policy.Defaults.CloneProtocol != "https" {
		return &ConfigError{Field: "defaults.clone_protocol", Location: location, Reason: "must be ssh or https"}
	}
	switch policy.MR.LinkStrategy {
	case "related", "description", "issue", "all":
	default:
		return &ConfigError{Field: "mr.link_strategy", Location: location, Reason: "must be related, description, issue, or all"}
	}
	if policy.Changesets.Enabled {
		info, err := os.Stat(policy.Changesets.Dir)
		if err != nil || !info.IsDir() {
			return &ConfigError{Field: "changesets.dir", Location: location, Reason: "must name an existing directory when changesets.enabled is true"}
		}
	}
	return nil
}

func buildRepos(root string, wf *workspaceFile, workspacePolicy WorkspacePolicy) (map[string]*Repo, error) {
	repos := make(map[string]*Repo, len(wf.Repos))

	for id, entry := range wf.Repos {
		if entry.External && entry.Ignored {
			return nil, &ConfigError{Field: fmt.Sprintf("repos.%s", id), Location: "workspace config", Reason: "external and ignored cannot both be true"}
		}

		repoPath := filepath.Join(root, workspacePolicy.Defaults.ReposDir, id)

		r := &Repo{
			ID:            id,
			Path:          repoPath,
			RemoteURL:     entry.URL,
			DefaultBranch: entry.DefaultBranch,
			PackageName:   entry.PackageName,
			Ecosystem:     manifest.Ecosystem(entry.Ecosystem),
			External:      entry.External,
			Ignored:       entry.Ignored,
			DependsOn:     entry.DependsOn,
			Versioning:    workspacePolicy.Versioning,
			Hooks: HookSet{
				PreCommit: workspacePolicy.Hooks.PreCommit,
				PrePush:   workspacePolicy.Hooks.PrePush,
			},
			CustomSpec: manifest.Spec{VersionPattern: entry.VersionPattern},
		}

		rf, err := loadRepoFile(repoPath)
		if err != nil {
			return nil, &ConfigError{Field: fmt.Sprintf("repos.%s", id), Location: repoPath, Reason: err.Error()}
		}
		applyRepoFile(r, rf)

		repos[id] = r
	}

	return repos, nil
}

func applyRepoFile(r *Repo, rf *repoFile) {
	if rf.Package.Name != "" {
		r.PackageName = rf.Package.Name
	}
	if rf.Package.Ecosystem != "" {
		r.Ecosystem = manifest.Ecosystem(rf.Package.Ecosystem)
	}

	if rf.Versioning.File != "" {
		r.Versioning.File = rf.Versioning.File
	}
	if len(rf.Versioning.Path) > 0 {
		r.Versioning.Path = rf.Versioning.Path
	}
	if rf.Versioning.Strategy != "" {
		r.Versioning.Strategy = rf.Versioning.Strategy
	}
	if rf.Versioning.BumpMode != "" {
		r.Versioning.BumpMode = rf.Versioning.BumpMode
	}
	if rf.Versioning.Pattern != "" {
		r.Versioning.Pattern = rf.Versioning.Pattern
	}

	r.Dependencies = DependencyPolicy{
		File:             rf.Dependencies.File,
		Path:             rf.Dependencies.Path,
		InternalPattern:  rf.Dependencies.InternalPattern,
		InternalPackages: rf.Dependencies.InternalPackages,
	}

	if len(rf.Hooks.PreCommit) > 0 {
		r.Hooks.PreCommit = append(append([]string{}, r.Hooks.PreCommit...), rf.Hooks.PreCommit...)
	}
	if len(rf.Hooks.PrePush) > 0 {
		r.Hooks.PrePush = append(append([]string{}, r.Hooks.PrePush...), rf.Hooks.PrePush...)
	}
	r.Hooks.DisableWorkspaceHooks = rf.Hooks.DisableWorkspaceHooks
	if len(rf.Hooks.Custom) > 0 {
		merged := make(map[string]CustomHookSpec, len(rf.Hooks.Custom))
		for k, h := range rf.Hooks.Custom {
			merged[k] = CustomHookSpec{Command: h.Command, Args: h.Args, ArgsExpr: h.ArgsExpr}
		}
		r.Hooks.Custom = merged
	}

	r.CI = CIPolicy{RequiredChecks: rf.CI.RequiredChecks, TimeoutMinutes: rf.CI.TimeoutMinutes}
}

func validateReferences(repos map[string]*Repo, groups map[string][]string, defaultGroup string) error {
	for id, r := range repos {
		for _, dep := range r.DependsOn {
			if _, ok := repos[resolveDependsOnTarget(repos, dep)]; !ok {
				return &UnknownRepoError{Name: dep, From: fmt.Sprintf("repos.%s.depends_on", id)}
			}
		}
	}
	for name, members := range groups {
		for _, m := range members {
			if _, ok := repos[m]; !ok {
				return &UnknownRepoError{Name: m, From: fmt.Sprintf("groups.%s", name)}
			}
		}
	}
	if defaultGroup != "" {
		if _, ok := groups[defaultGroup]; !ok {
			return &UnknownGroupError{Name: defaultGroup}
		}
	}
	return nil
}

// resolveDependsOnTarget resolves a depends_on entry to a RepoId, trying a
// direct id match first and falling back to a package_name match, per
// spec.md §4.D.
func resolveDependsOnTarget(repos map[string]*Repo, name string) string {
	if _, ok := repos[name]; ok {
		return name
	}
	for id, r := range repos {
		if r.EffectivePackageName() == name {
			return id
		}
	}
	return name
}
