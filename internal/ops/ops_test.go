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
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jpetrucciani/harmonia/internal/config"
	"github.com/jpetrucciani/harmonia/internal/forge"
	"github.com/jpetrucciani/harmonia/internal/graph"
	"github.com/jpetrucciani/harmonia/internal/manifest"
	"github.com/jpetrucciani/harmonia/internal/vcs"

	_ "github.com/jpetrucciani/harmonia/internal/manifest/custom"
)

// fakeVCS is an in-memory vcs.Adapter double recording calls, shared by
// every handler test in this package.
type fakeVCS struct {
	mu         sync.Mutex
	statuses   map[string]vcs.Status
	branches   map[string]string
	committed  []string
	pushed     []string
	failStatus map[string]error
}

func newFakeVCS() *fakeVCS {
	return &fakeVCS{
		statuses: make(map[string]vcs.Status),
		branches: make(map[string]string),
	}
}

func (f *fakeVCS) Clone(ctx context.Context, remoteURL, dest string, depth vcs.CloneDepth) (vcs.Result, error) {
	return vcs.Result{}, nil
}
func (f *fakeVCS) Fetch(ctx context.Context, repoPath string) (vcs.Result, error) {
	return vcs.Result{}, nil
}
func (f *fakeVCS) CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	if b, ok := f.branches[repoPath]; ok {
		return b, nil
	}
	return "main", nil
}
func (f *fakeVCS) Checkout(ctx context.Context, repoPath, branch string) (vcs.Result, error) {
	return vcs.Result{}, nil
}
func (f *fakeVCS) CreateBranch(ctx context.Context, repoPath, branch string) (vcs.Result, error) {
	f.branches[repoPath] = branch
	return vcs.Result{}, nil
}
func (f *fakeVCS) Status(ctx context.Context, repoPath string) (vcs.Status, error) {
	if err, ok := f.failStatus[repoPath]; ok {
		return vcs.Status{}, err
	}
	return f.statuses[repoPath], nil
}
func (f *fakeVCS) Add(ctx context.Context, repoPath string, paths []string) (vcs.Result, error) {
	return vcs.Result{}, nil
}
func (f *fakeVCS) Commit(ctx context.Context, repoPath, message string) (vcs.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, repoPath+": "+message)
	return vcs.Result{}, nil
}
func (f *fakeVCS) Push(ctx context.Context, repoPath string, opts vcs.PushOptions) (vcs.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, repoPath)
	return vcs.Result{}, nil
}
func (f *fakeVCS) Diff(ctx context.Context, repoPath string) (string, error) { return "", nil }
func (f *fakeVCS) Stash(ctx context.Context, repoPath string) (vcs.Result, error) {
	return vcs.Result{}, nil
}
func (f *fakeVCS) StashPop(ctx context.Context, repoPath string) (vcs.Result, error) {
	return vcs.Result{}, nil
}
func (f *fakeVCS) RebaseOnto(ctx context.Context, repoPath, upstream string) (vcs.Result, error) {
	return vcs.Result{}, nil
}
func (f *fakeVCS) Merge(ctx context.Context, repoPath, ref string) (vcs.Result, error) {
	return vcs.Result{}, nil
}
func (f *fakeVCS) FastForward(ctx context.Context, repoPath, ref string) (vcs.Result, error) {
	return vcs.Result{}, nil
}

var _ vcs.Adapter = (*fakeVCS)(nil)

// fakeForge is an in-memory forge.Forge double, shared by every handler
// test that exercises the mr.go family.
type fakeForge struct {
	mu     sync.Mutex
	nextID int
	mrs    map[string]forge.MR
	ci     map[string]forge.CIStatus
	linked [][]forge.LinkRequest
	issues []forge.CreateIssueOptions
	merged []string
}

func newFakeForge() *fakeForge {
	return &fakeForge{mrs: make(map[string]forge.MR), ci: make(map[string]forge.CIStatus)}
}

func (f *fakeForge) CreateMR(ctx context.Context, repo string, opts forge.CreateMROptions) (forge.MR, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := itoa(f.nextID)
	mr := forge.MR{ID: id, Repo: repo, SourceBranch: opts.SourceBranch, TargetBranch: opts.TargetBranch, Title: opts.Title, State: forge.MRStateOpen}
	f.mrs[repo+"#"+id] = mr
	return mr, nil
}
func (f *fakeForge) GetMR(ctx context.Context, repo, id string) (forge.MR, error) {
	return f.mrs[repo+"#"+id], nil
}
func (f *fakeForge) UpdateMR(ctx context.Context, repo, id string, opts forge.UpdateMROptions) (forge.MR, error) {
	mr := f.mrs[repo+"#"+id]
	if opts.Title != nil {
		mr.Title = *opts.Title
	}
	f.mrs[repo+"#"+id] = mr
	return mr, nil
}
func (f *fakeForge) LinkMRs(ctx context.Context, links []forge.LinkRequest) error {
	f.linked = append(f.linked, links)
	return nil
}
func (f *fakeForge) MergeMR(ctx context.Context, repo, id string) error {
	f.merged = append(f.merged, repo+"#"+id)
	return nil
}
func (f *fakeForge) CloseMR(ctx context.Context, repo, id string) error { return nil }
func (f *fakeForge) GetCIStatus(ctx context.Context, repo, ref string) (forge.CIStatus, error) {
	return f.ci[repo+"@"+ref], nil
}
func (f *fakeForge) CreateIssue(ctx context.Context, repo string, opts forge.CreateIssueOptions) (forge.Issue, error) {
	f.issues = append(f.issues, opts)
	return forge.Issue{ID: "issue-1"}, nil
}
func (f *fakeForge) GetUser(ctx context.Context) (forge.User, error) { return forge.User{}, nil }

var _ forge.Forge = (*fakeForge)(nil)

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// chainWorkspace builds a two-repo chain (lib -> core) on disk with custom
// ecosystem manifests so readManifest can exercise real files.
func chainWorkspace(t *testing.T) (*config.Workspace, string) {
	t.Helper()
	root := t.TempDir()

	writeManifest := func(id, version, depName, depConstraint string) string {
		path := filepath.Join(root, id)
		if err := os.MkdirAll(path, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		content := "version = \"" + version + "\"\n"
		if depName != "" {
			content += depName + " = \"" + depConstraint + "\"\n"
		}
		if err := os.WriteFile(filepath.Join(path, "manifest.toml"), []byte(content), 0o644); err != nil {
			t.Fatalf("write manifest: %v", err)
		}
		return path
	}

	corePath := writeManifest("core", "1.2.0", "", "")
	libPath := writeManifest("lib", "1.0.0", "core", "=1.2.0")

	versionPattern := `version = "(?P<value>[^"]+)"`
	depPattern := `(?P<name>\w[\w-]*) = "(?P<value>[^"]+)"`

	ws := &config.Workspace{
		Root: root,
		Repos: map[string]*config.Repo{
			"core": {
				ID: "core", Path: corePath, PackageName: "core", Ecosystem: manifest.EcosystemCustom,
				CustomSpec: manifest.Spec{FilePath: "manifest.toml", VersionPattern: versionPattern, DependencyPattern: depPattern},
				Versioning: config.VersioningPolicy{Strategy: "semver"},
			},
			"lib": {
				ID: "lib", Path: libPath, PackageName: "lib", Ecosystem: manifest.EcosystemCustom,
				CustomSpec:   manifest.Spec{FilePath: "manifest.toml", VersionPattern: versionPattern, DependencyPattern: depPattern},
				Versioning:   config.VersioningPolicy{Strategy: "semver"},
				Dependencies: config.DependencyPolicy{InternalPackages: []string{"core"}},
				DependsOn:    []string{"core"},
			},
		},
		Groups:       map[string][]string{"default": {"core", "lib"}},
		DefaultGroup: "default",
	}

	return ws, root
}

// buildDeps wires a Deps around the chainWorkspace fixture, including the
// manifest-sourced lib->core edge graph.Build needs to carry a real
// constraint (mirroring what the Configuration Resolver would hand it
// after reading every repo's manifest).
func buildDeps(t *testing.T, ws *config.Workspace, vcsAdapter vcs.Adapter, forgeAdapter forge.Forge) *Deps {
	t.Helper()
	manifestDeps := map[string][]manifest.Dependency{
		"lib": {{Name: "core", Constraint: "=1.2.0", Internal: true}},
	}
	g, errs := graph.Build(ws, manifestDeps)
	if len(errs) != 0 {
		t.Fatalf("graph.Build() errors = %v", errs)
	}
	return &Deps{
		Workspace: ws,
		Graph:     g,
		VCS:       vcsAdapter,
		Forge:     forgeAdapter,
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
	}
}
