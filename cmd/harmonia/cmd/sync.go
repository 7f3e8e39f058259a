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
	"github.com/jpetrucciani/harmonia/internal/vcs"
)

var (
	syncAllFlag      bool
	syncGroupsFlag   []string
	syncIncludeFlag  []string
	syncExcludeFlag  []string
	syncShallowFlag  int
	syncModeFlag     string
	syncJSONFlag     bool
	syncFailFastFlag bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [repos...]",
	Short: "Clone missing repos and fetch/reconcile existing ones",
	Long: `sync clones any selected repo whose working tree does not yet exist and
fetches and reconciles every other selected repo against its upstream
default branch, using --mode to choose fast-forward, rebase, or merge.`,
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		selection, err := e.selectRepos(args, selectionFlags{
			Groups:  syncGroupsFlag,
			All:     syncAllFlag || len(args) == 0,
			Include: syncIncludeFlag,
			Exclude: syncExcludeFlag,
		})
		if err != nil {
			return err
		}

		depth := vcs.FullClone()
		if syncShallowFlag > 0 {
			depth = vcs.ShallowClone(syncShallowFlag)
		}

		rep, err := e.Deps.Sync(c.Context(), selection, ops.SyncOptions{
			Depth: depth,
			Mode:  vcs.UpdateMode(syncModeFlag),
		}, runOptions(0, syncFailFastFlag, false))
		if err != nil {
			return err
		}
		return emitReport(c, rep, syncJSONFlag)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncAllFlag, "all", false, "select every repo in the default group")
	syncCmd.Flags().StringSliceVarP(&syncGroupsFlag, "group", "g", nil, "select every repo in the named group(s)")
	syncCmd.Flags().StringSliceVar(&syncIncludeFlag, "include", nil, "add repos matching a glob")
	syncCmd.Flags().StringSliceVar(&syncExcludeFlag, "exclude", nil, "drop repos matching a glob")
	syncCmd.Flags().IntVar(&syncShallowFlag, "shallow", 0, "clone depth for missing repos (0 = full clone)")
	syncCmd.Flags().StringVar(&syncModeFlag, "mode", "ff-only", "reconcile mode: ff-only, rebase, or merge")
	syncCmd.Flags().BoolVar(&syncJSONFlag, "json", false, "emit the report as JSON")
	syncCmd.Flags().BoolVar(&syncFailFastFlag, "fail-fast", false, "cancel remaining repos on first failure")
	rootCmd.AddCommand(syncCmd)
}
