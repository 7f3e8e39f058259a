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

// Package config resolves a Harmonia workspace from its layered TOML
// configuration: built-in defaults, the workspace config file, each repo's
// optional config file, environment variables, and CLI overrides. The
// result is the immutable Workspace value every other component borrows
// for the duration of one command.
package config

import (
	"fmt"

	"github.com/jpetrucciani/harmonia/internal/manifest"
)

// Ecosystem re-exports manifest.Ecosystem so callers only need one import
// when working with repo configuration.
type Ecosystem = manifest.Ecosystem

// Repo is one workspace-managed repository.
type Repo struct {
	ID            string
	Path          string
	RemoteURL     string
	DefaultBranch string
	PackageName   string
	Ecosystem     Ecosystem
	CustomSpec    manifest.Spec
	External      bool
	Ignored       bool
	DependsOn     []string
	Versioning    VersioningPolicy
	Dependencies  DependencyPolicy
	Hooks         HookSet
	CI            CIPolicy
}

// EffectivePackageName returns PackageName, defaulting to ID per spec.md §3.
func (r *Repo) EffectivePackageName() string {
	if r.PackageName == "" {
		return r.ID
	}
	return r.PackageName
}

// VersioningPolicy describes how a repo's own version is read and bumped.
type VersioningPolicy struct {
	File     string
	Path     []string
	Strategy string // "semver" | "calver" | "tinyinc"
	BumpMode string
	Pattern  string
}

// DependencyPolicy describes where a repo's dependency list lives and how
// to classify which of its dependencies are internal.
type DependencyPolicy struct {
	File             string
	Path             []string
	InternalPattern  string
	InternalPackages []string
}

// CIPolicy describes the checks `mr merge`/`mr status --wait` poll for.
type CIPolicy struct {
	RequiredChecks []string
	TimeoutMinutes int
}

// HookSet is a named set of shell command hooks plus custom named hooks.
type HookSet struct {
	PreCommit             []string
	PrePush               []string
	Custom                map[string]CustomHookSpec
	DisableWorkspaceHooks []string
}

// CustomHookSpec is one [hooks.custom] entry, kept in its pre-evaluation
// form so ArgsExpr can be resolved per repo at invocation time rather than
// once during Resolve.
type CustomHookSpec struct {
	Command  string
	Args     []string
	ArgsExpr string
}

// ForgeConfig describes the forge (GitHub/GitLab) Harmonia talks to.
type ForgeConfig struct {
	Kind  string // "github" | "gitlab"
	Token string
	Host  string
}

// DefaultsPolicy carries workspace-wide defaults applied to every repo
// unless a repo config overrides them.
type DefaultsPolicy struct {
	CloneProtocol    string // "ssh" | "https"
	ReposDir         string
	Parallel         int
	IncludeUntracked bool
}

// MRPolicy governs merge-request creation and linking.
type MRPolicy struct {
	LinkStrategy  string // "related" | "description" | "issue" | "all"
	AddTrailers   bool
	Template      string
	TrackingIssue bool
}

// ChangesetPolicy governs the changeset feature.
type ChangesetPolicy struct {
	Enabled bool
	Dir     string
}

// WorkspacePolicy is the resolved, workspace-wide policy.
type WorkspacePolicy struct {
	Forge      ForgeConfig
	Defaults   DefaultsPolicy
	Hooks      HookSet
	MR         MRPolicy
	Versioning VersioningPolicy
	Changesets ChangesetPolicy
}

// Workspace is the fully resolved, immutable root value for one command.
type Workspace struct {
	Root         string
	Policy       WorkspacePolicy
	Repos        map[string]*Repo
	Groups       map[string][]string
	DefaultGroup string
}

// SortedRepoIDs returns every repo ID in lexicographic order.
func (w *Workspace) SortedRepoIDs() []string {
	ids := make([]string, 0, len(w.Repos))
	for id := range w.Repos {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// ConfigError is a fatal, pre-command configuration failure.
type ConfigError struct {
	Field    string
	Location string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error at %s (%s): %s", e.Location, e.Field, e.Reason)
}

// UnknownRepoError is returned when a group or depends_on entry names a
// repo that does not exist in [repos].
type UnknownRepoError struct {
	Name string
	From string
}

func (e *UnknownRepoError) Error() string {
	return fmt.Sprintf("unknown repo %q referenced from %s", e.Name, e.From)
}

// UnknownGroupError is returned when a selection or default group names a
// group that does not exist in [groups].
type UnknownGroupError struct {
	Name string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown group %q", e.Name)
}

// BadInternalPatternError is a soft warning: a repo's internal_pattern does
// not compile as a regular expression. Non-fatal except for graph commands.
type BadInternalPatternError struct {
	Repo    string
	Pattern string
	Cause   error
}

func (e *BadInternalPatternError) Error() string {
	return fmt.Sprintf("repo %q: bad internal_pattern %q: %v", e.Repo, e.Pattern, e.Cause)
}

func (e *BadInternalPatternError) Unwrap() error {
	return e.Cause
}
