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
	"strings"
	"testing"
)

func writeWorkspaceConfig(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".harmonia")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir .harmonia: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config.toml: %v", err)
	}
}

const baseWorkspaceConfig = `
[workspace]
name = "acme"

[forge]
kind = "github"
host = "github.com"

[repos.core]
url = "git@github.com:acme/core.git"
default_branch = "main"
package_name = "acme-core"
ecosystem = "python"

[repos.cli]
url = "git@github.com:acme/cli.git"
default_branch = "main"
package_name = "acme-cli"
ecosystem = "rust"
depends_on = ["core"]

[groups]
default = "all"
all = ["core", "cli"]

[mr]
link_strategy = "description"

[defaults]
clone_protocol = "https"
repos_dir = "repos"
`

func TestResolveHappyPath(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceConfig(t, root, baseWorkspaceConfig)

	ws, err := Resolve(root, Overrides{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(ws.Repos) != 2 {
		t.Fatalf("len(Repos) = %d, want 2", len(ws.Repos))
	}
	if ws.Policy.Forge.Kind != "github" {
		t.Errorf("Forge.Kind = %q, want github", ws.Policy.Forge.Kind)
	}
	if ws.DefaultGroup != "all" {
		t.Errorf("DefaultGroup = %q, want all", ws.DefaultGroup)
	}
	cli, ok := ws.Repos["cli"]
	if !ok {
		t.Fatal("missing repo cli")
	}
	if len(cli.DependsOn) != 1 || cli.DependsOn[0] != "core" {
		t.Errorf("cli.DependsOn = %v, want [core]", cli.DependsOn)
	}
}

func TestResolveMissingWorkspaceConfig(t *testing.T) {
	root := t.TempDir()
	if _, err := Resolve(root, Overrides{}); err == nil {
		t.Fatal("Resolve() error = nil, want error for missing config")
	}
}

func TestResolveInvalidCloneProtocol(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceConfig(t, root, strings.Replace(baseWorkspaceConfig, `clone_protocol = "https"`, `clone_protocol = "ftp"`, 1))

	_, err := Resolve(root, Overrides{})
	if err == nil {
		t.Fatal("Resolve() error = nil, want ConfigError for bad clone_protocol")
	}
	var cfgErr *ConfigError
	if !asConfigError(err, &cfgErr) {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
}

func TestResolveInvalidLinkStrategy(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceConfig(t, root, strings.Replace(baseWorkspaceConfig, `link_strategy = "description"`, `link_strategy = "bogus"`, 1))

	_, err := Resolve(root, Overrides{})
	if err == nil {
		t.Fatal("Resolve() error = nil, want ConfigError for bad link_strategy")
	}
}

func TestResolveExternalAndIgnoredRejected(t *testing.T) {
	root := t.TempDir()
	cfg := `
[repos.core]
url = "git@github.com:acme/core.git"
external = true
ignored = true

[mr]
link_strategy = "description"

[defaults]
clone_protocol = "https"
`
	writeWorkspaceConfig(t, root, cfg)

	_, err := Resolve(root, Overrides{})
	if err == nil {
		t.Fatal("Resolve() error = nil, want ConfigError for external+ignored repo")
	}
}

func TestResolveUnknownRepoInGroup(t *testing.T) {
	root := t.TempDir()
	cfg := `
[repos.core]
url = "git@github.com:acme/core.git"

[groups]
all = ["core", "ghost"]

[mr]
link_strategy = "description"

[defaults]
clone_protocol = "https"
`
	writeWorkspaceConfig(t, root, cfg)

	_, err := Resolve(root, Overrides{})
	if err == nil {
		t.Fatal("Resolve() error = nil, want UnknownRepoError")
	}
	if _, ok := err.(*UnknownRepoError); !ok {
		t.Fatalf("error type = %T, want *UnknownRepoError", err)
	}
}

func TestResolveUnknownDependsOn(t *testing.T) {
	root := t.TempDir()
	cfg := `
[repos.cli]
url = "git@github.com:acme/cli.git"
depends_on = ["nonexistent"]

[mr]
link_strategy = "description"

[defaults]
clone_protocol = "https"
`
	writeWorkspaceConfig(t, root, cfg)

	_, err := Resolve(root, Overrides{})
	if err == nil {
		t.Fatal("Resolve() error = nil, want UnknownRepoError for bad depends_on")
	}
}

func TestResolveChangesetsRequiresExistingDir(t *testing.T) {
	root := t.TempDir()
	cfg := baseWorkspaceConfig + "\n[changesets]\nenabled = true\ndir = \"does-not-exist\"\n"
	writeWorkspaceConfig(t, root, cfg)

	_, err := Resolve(root, Overrides{})
	if err == nil {
		t.Fatal("Resolve() error = nil, want ConfigError for missing changesets.dir")
	}
}

func TestResolveChangesetsDirExists(t *testing.T) {
	root := t.TempDir()
	changesetsDir := filepath.Join(root, ".changesets")
	if err := os.MkdirAll(changesetsDir, 0o755); err != nil {
		t.Fatalf("mkdir changesets dir: %v", err)
	}
	cfg := baseWorkspaceConfig + "\n[changesets]\nenabled = true\ndir = \".changesets\"\n"
	writeWorkspaceConfig(t, root, cfg)

	ws, err := Resolve(root, Overrides{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !ws.Policy.Changesets.Enabled {
		t.Error("Changesets.Enabled = false, want true")
	}
}

func TestEnvOverridesAppliedOverWorkspaceDefaults(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceConfig(t, root, baseWorkspaceConfig)

	reposDir := "custom-repos"
	ws, err := Resolve(root, Overrides{Env: CLIFlags{ReposDir: &reposDir}})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ws.Policy.Defaults.ReposDir != "custom-repos" {
		t.Errorf("Defaults.ReposDir = %q, want custom-repos", ws.Policy.Defaults.ReposDir)
	}
}

func TestCLIOverridesWinOverEnv(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceConfig(t, root, baseWorkspaceConfig)

	envDir := "env-repos"
	cliDir := "cli-repos"
	ws, err := Resolve(root, Overrides{
		Env: CLIFlags{ReposDir: &envDir},
		CLI: CLIFlags{ReposDir: &cliDir},
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ws.Policy.Defaults.ReposDir != "cli-repos" {
		t.Errorf("Defaults.ReposDir = %q, want cli-repos", ws.Policy.Defaults.ReposDir)
	}
}

func asConfigError(err error, target **ConfigError) bool {
	ce, ok := err.(*ConfigError)
	if ok {
		*target = ce
	}
	return ok
}
