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
	"github.com/spf13/cobra"

	"github.com/jpetrucciani/harmonia/internal/ops"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Inspect or rewrite internal dependency constraints",
}

var (
	depsUpdatePinFlag      string
	depsUpdateAllFlag      bool
	depsUpdateGroupsFlag   []string
	depsUpdateDryRunFlag   bool
	depsUpdateNoCommitFlag bool
	depsUpdateJSONFlag     bool
)

var depsUpdateCmd = &cobra.Command{
	Use:   "update [repos...]",
	Short: "Rewrite each selected repo's constraint on its internal dependencies",
	Long: `deps update rewrites, for every selected repo, the constraint on each
internal dependency edge to that dependency's current version, or to
--pin if set. The run always proceeds in dependency order.`,
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		selection, err := e.selectRepos(args, selectionFlags{
			Groups:   depsUpdateGroupsFlag,
			All:      depsUpdateAllFlag || len(args) == 0,
			Mutating: true,
		})
		if err != nil {
			return err
		}

		rep, err := e.Deps.DepsUpdate(c.Context(), selection, ops.DepsUpdateOptions{
			Pin:      depsUpdatePinFlag,
			DryRun:   depsUpdateDryRunFlag,
			NoCommit: depsUpdateNoCommitFlag,
		}, runOptions(0, false, true))
		if err != nil {
			return err
		}
		return emitReport(c, rep, depsUpdateJSONFlag)
	},
}

func init() {
	depsUpdateCmd.Flags().StringVar(&depsUpdatePinFlag, "pin", "", "pin every rewritten constraint to this version instead of the dependency's current one")
	depsUpdateCmd.Flags().BoolVar(&depsUpdateAllFlag, "all", false, "select every repo in the default group")
	depsUpdateCmd.Flags().StringSliceVarP(&depsUpdateGroupsFlag, "group", "g", nil, "select every repo in the named group(s)")
	depsUpdateCmd.Flags().BoolVar(&depsUpdateDryRunFlag, "dry-run", false, "compute rewrites without writing any manifest")
	depsUpdateCmd.Flags().BoolVar(&depsUpdateNoCommitFlag, "no-commit", false, "write manifests but do not commit")
	depsUpdateCmd.Flags().BoolVar(&depsUpdateJSONFlag, "json", false, "emit the report as JSON")

	depsCmd.AddCommand(depsUpdateCmd)
	rootCmd.AddCommand(depsCmd)
}
