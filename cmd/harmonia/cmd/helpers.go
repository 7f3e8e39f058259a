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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpetrucciani/harmonia/internal/config"
	"github.com/jpetrucciani/harmonia/internal/forge"
	"github.com/jpetrucciani/harmonia/internal/graph"
	"github.com/jpetrucciani/harmonia/internal/manifest"
	_ "github.com/jpetrucciani/harmonia/internal/manifest/custom" // registers the custom ecosystem adapter
	_ "github.com/jpetrucciani/harmonia/internal/manifest/gomod"  // registers the go ecosystem adapter
	_ "github.com/jpetrucciani/harmonia/internal/manifest/node"   // registers the node ecosystem adapter
	_ "github.com/jpetrucciani/harmonia/internal/manifest/python" // registers the python ecosystem adapter
	_ "github.com/jpetrucciani/harmonia/internal/manifest/rust"   // registers the rust ecosystem adapter
	"github.com/jpetrucciani/harmonia/internal/ops"
	"github.com/jpetrucciani/harmonia/internal/report"
	"github.com/jpetrucciani/harmonia/internal/scheduler"
	"github.com/jpetrucciani/harmonia/internal/vcs"
)

// env bundles the resolved Workspace, its dependency Graph, and a ready
// ops.Deps, built once per command invocation from the global flags.
type env struct {
	Workspace *config.Workspace
	Graph     *graph.Graph
	Deps      *ops.Deps
	Logger    *slog.Logger
}

// newLogger builds the text-handler slog.Logger every command logs
// through, honoring -q/-v.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: GetLogLevel(),
	}))
}

// resolveWorkspace runs the Configuration Resolver against the --workspace
// / --config / --parallel flags and HARMONIA_* environment overrides.
func resolveWorkspace() (*config.Workspace, error) {
	root := workspaceFlag
	if root == "" {
		root = "."
	}

	overrides := config.Overrides{Env: config.EnvOverrides()}
	if configFlag != "" {
		overrides.CLI.Config = &configFlag
	}
	if parallelFlag != 0 {
		overrides.CLI.Parallel = &parallelFlag
	}

	ws, err := config.Resolve(root, overrides)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// manifestDependencies reads every non-ignored, non-external repo's
// manifest and collects its declared dependencies, the input
// graph.Build needs to classify internal edges and attach their
// constraints (spec.md §4.D).
func manifestDependencies(ctx context.Context, ws *config.Workspace, logger *slog.Logger) map[string][]manifest.Dependency {
	out := make(map[string][]manifest.Dependency, len(ws.Repos))
	for _, id := range ws.SortedRepoIDs() {
		r := ws.Repos[id]
		if r.Ignored || r.External {
			continue
		}
		adapter, err := manifest.Get(r.Ecosystem)
		if err != nil {
			logger.Debug("no manifest adapter, skipping dependency read", "repo", id, "ecosystem", r.Ecosystem)
			continue
		}
		spec := r.CustomSpec
		if r.Ecosystem != manifest.EcosystemCustom {
			filePath := r.Versioning.File
			if filePath == "" {
				filePath = r.Dependencies.File
			}
			spec = manifest.Spec{
				FilePath:         filePath,
				VersionPath:      r.Versioning.Path,
				DependenciesPath: r.Dependencies.Path,
				VersionPattern:   r.Versioning.Pattern,
				InternalPattern:  r.Dependencies.InternalPattern,
				InternalPackages: r.Dependencies.InternalPackages,
			}
		}
		content, err := os.ReadFile(spec.FilePath)
		if err != nil {
			content, err = os.ReadFile(r.Path + string(os.PathSeparator) + spec.FilePath)
		}
		if err != nil {
			logger.Debug("could not read manifest, skipping dependency read", "repo", id, "error", err)
			continue
		}
		deps, err := adapter.ReadDependencies(ctx, spec, content)
		if err != nil {
			logger.Debug("could not parse manifest dependencies", "repo", id, "error", err)
			continue
		}
		out[id] = deps
	}
	return out
}

// buildEnv resolves the workspace, builds its dependency graph, and wires
// a VCS adapter and Forge client into a ready ops.Deps. Every subcommand's
// RunE calls this first.
func buildEnv(cmd *cobra.Command) (*env, error) {
	logger := newLogger()
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, err
	}

	deps := manifestDependencies(cmd.Context(), ws, logger)
	g, buildErrs := graph.Build(ws, deps)
	for _, e := range buildErrs {
		logger.Warn("dependency graph edge skipped", "error", e)
	}

	var f forge.Forge
	if ws.Policy.Forge.Token != "" {
		f = forge.NewGitHubForge(ws.Policy.Forge.Token, ws.Policy.Forge.Host)
	}

	return &env{
		Workspace: ws,
		Graph:     g,
		Logger:    logger,
		Deps: &ops.Deps{
			Workspace: ws,
			Graph:     g,
			VCS:       vcs.NewGitAdapter(),
			Forge:     f,
		},
	}, nil
}

// runOptions builds ops.RunOptions from the --parallel, --fail-fast, and
// --graph-order flags a handler-backed command registers.
func runOptions(parallel int, failFast, graphOrder bool) ops.RunOptions {
	if parallel == 0 {
		parallel = parallelFlag
	}
	return ops.RunOptions{Parallel: parallel, FailFast: failFast, GraphOrder: graphOrder}
}

// selectionFlags holds a command's selection flags; selectRepos combines
// them with the command's positional repo arguments into a
// scheduler.SelectionInput.
type selectionFlags struct {
	Groups      []string
	All         bool
	Changed     bool
	WithDeps    bool
	WithAllDeps bool
	Include     []string
	Exclude     []string
	Mutating    bool
}

func (e *env) selectRepos(explicit []string, flags selectionFlags) ([]string, error) {
	var changed map[string]bool
	if flags.Changed {
		changed = e.Deps.DetectChanged(context.Background())
	}
	return scheduler.Select(e.Workspace, e.Graph, changed, scheduler.SelectionInput{
		Explicit:    explicit,
		Groups:      flags.Groups,
		All:         flags.All,
		Changed:     flags.Changed,
		WithDeps:    flags.WithDeps,
		WithAllDeps: flags.WithAllDeps,
		Include:     flags.Include,
		Exclude:     flags.Exclude,
		Mutating:    flags.Mutating,
	})
}

// emitReport renders an OperationReport as a tab-aligned table, or as JSON
// when --json is set, and returns an error whose presence signals the
// process should exit 1 (spec.md §7).
func emitReport(cmd *cobra.Command, rep *report.OperationReport, asJSON bool) error {
	rep.Sort()
	if asJSON {
		data, err := rep.JSON()
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		fmt.Fprint(cmd.OutOrStdout(), rep.HumanString())
	}
	if rep.ExitCode() != 0 {
		return errExitCode{code: rep.ExitCode()}
	}
	return nil
}

// errExitCode carries a process exit code through cobra's error-returning
// RunE without printing a message of its own; main.go unwraps it.
type errExitCode struct {
	code int
}

func (e errExitCode) Error() string {
	return fmt.Sprintf("completed with exit code %d", e.code)
}

// IsReportExit reports whether err is the errExitCode sentinel, so main.go
// can skip printing a redundant message: the report was already rendered by
// emitReport before this error was returned.
func IsReportExit(err error) bool {
	_, ok := err.(errExitCode)
	return ok
}

// ExitCode lets main.go recover the intended process exit code from a
// RunE-returned error, per spec.md §7 (0/1/2/130).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(errExitCode); ok {
		return ec.code
	}
	if _, ok := err.(*config.ConfigError); ok {
		return 2
	}
	if _, ok := err.(*config.UnknownRepoError); ok {
		return 2
	}
	if _, ok := err.(*config.UnknownGroupError); ok {
		return 2
	}
	if _, ok := err.(*graph.CyclicDependenciesError); ok {
		return 2
	}
	return 1
}
