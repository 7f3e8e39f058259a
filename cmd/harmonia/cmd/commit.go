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
	"github.com/jpetrucciani/harmonia/internal/scheduler"
)

var (
	commitMessageFlag  string
	commitPathsFlag    []string
	commitAllFlag      bool
	commitGroupsFlag   []string
	commitChangedFlag  bool
	commitNoHooksFlag  bool
	commitJSONFlag     bool
)

var commitCmd = &cobra.Command{
	Use:   "commit [repos...]",
	Short: "Stage and commit pending changes across the selection",
	Long: `commit stages --paths (or everything, by default) and commits with
--message in every selected repo whose working tree is dirty. A repo with
nothing to commit is reported skipped rather than failed. Unless
--no-hooks, each repo's pre_commit hook runs after staging and before the
commit is made.`,
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		selection, err := e.selectRepos(args, selectionFlags{
			Groups:   commitGroupsFlag,
			All:      commitAllFlag || len(args) == 0,
			Changed:  commitChangedFlag,
			Mutating: true,
		})
		if err != nil {
			return err
		}

		opts := ops.CommitOptions{Message: commitMessageFlag, Paths: commitPathsFlag}
		if !commitNoHooksFlag {
			opts.HookExec = scheduler.DefaultHookExecer
		}

		rep, err := e.Deps.Commit(c.Context(), selection, opts, runOptions(0, false, false))
		if err != nil {
			return err
		}
		return emitReport(c, rep, commitJSONFlag)
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessageFlag, "message", "m", "", "commit message")
	_ = commitCmd.MarkFlagRequired("message")
	commitCmd.Flags().StringSliceVar(&commitPathsFlag, "paths", nil, "paths to stage (default: everything)")
	commitCmd.Flags().BoolVar(&commitAllFlag, "all", false, "select every repo in the default group")
	commitCmd.Flags().StringSliceVarP(&commitGroupsFlag, "group", "g", nil, "select every repo in the named group(s)")
	commitCmd.Flags().BoolVar(&commitChangedFlag, "changed", false, "select repos with a dirty working tree")
	commitCmd.Flags().BoolVar(&commitNoHooksFlag, "no-hooks", false, "skip the pre_commit hook")
	commitCmd.Flags().BoolVar(&commitJSONFlag, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(commitCmd)
}
