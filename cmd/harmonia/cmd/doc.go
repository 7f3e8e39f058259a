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

// Package cmd implements the command-line interface for harmonia, the
// coordination core for a workspace of interdependent git repositories.
//
// The CLI is built using Cobra and provides the following commands:
//
//   - sync: fetch and update each selected repo's working tree
//   - branch: switch to or create a branch across the selection
//   - commit: stage and commit pending changes
//   - push: push each repo's current branch to its remote
//   - bump: bump a repo's own version, optionally cascading to dependents
//   - deps: rewrite a dependent's constraint on an internal dependency
//   - plan: report the changed set, restricted graph, and recommendations
//   - status: show each selected repo's branch, ahead/behind, and dirty state
//   - mr: create, show the status of, update, merge, or close merge requests
//   - graph: render the internal dependency graph (tree, flat, DOT, JSON)
//   - completion: generate shell completion scripts
//
// Global flags available across all commands:
//
//   - -v, --verbose: enable verbose debug output
//   - -q, --quiet: suppress informational output (errors only)
//   - --workspace: path to the workspace root (default ".")
//   - --config: path to the workspace config file
//   - --parallel: maximum repos processed concurrently within a wave
//   - --no-color: disable ANSI color in human-readable output
//
// Example usage:
//
//	# Sync every repo in the default group
//	harmonia sync
//
//	# Show the changed set and recommended bumps
//	harmonia plan
//
//	# Bump a repo and cascade the bump to its dependents
//	harmonia bump core --level minor --cascade
//
//	# Create merge requests for the current changeset
//	harmonia mr create --changed
//
// See individual command documentation for detailed usage and options.
package cmd
