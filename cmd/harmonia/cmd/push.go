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
	pushRemoteFlag      string
	pushSetUpstreamFlag bool
	pushForceFlag       bool
	pushAllFlag         bool
	pushGroupsFlag      []string
	pushChangedFlag     bool
	pushNoHooksFlag     bool
	pushJSONFlag        bool
)

var pushCmd = &cobra.Command{
	Use:   "push [repos...]",
	Short: "Push the current branch across the selection",
	Long: `push runs the pre_push hook (unless --no-hooks) and pushes the current
branch for every selected repo to --remote.`,
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		selection, err := e.selectRepos(args, selectionFlags{
			Groups:   pushGroupsFlag,
			All:      pushAllFlag || len(args) == 0,
			Changed:  pushChangedFlag,
			Mutating: true,
		})
		if err != nil {
			return err
		}

		opts := ops.PushOptions{Remote: pushRemoteFlag, SetUpstream: pushSetUpstreamFlag, Force: pushForceFlag}
		if !pushNoHooksFlag {
			opts.HookExec = scheduler.DefaultHookExecer
		}

		rep, err := e.Deps.Push(c.Context(), selection, opts, runOptions(0, false, false))
		if err != nil {
			return err
		}
		return emitReport(c, rep, pushJSONFlag)
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushRemoteFlag, "remote", "origin", "remote to push to")
	pushCmd.Flags().BoolVarP(&pushSetUpstreamFlag, "set-upstream", "u", false, "set the pushed branch's upstream")
	pushCmd.Flags().BoolVar(&pushForceFlag, "force", false, "force-push (force-with-lease semantics)")
	pushCmd.Flags().BoolVar(&pushAllFlag, "all", false, "select every repo in the default group")
	pushCmd.Flags().StringSliceVarP(&pushGroupsFlag, "group", "g", nil, "select every repo in the named group(s)")
	pushCmd.Flags().BoolVar(&pushChangedFlag, "changed", false, "select repos with a dirty working tree")
	pushCmd.Flags().BoolVar(&pushNoHooksFlag, "no-hooks", false, "skip the pre_push hook")
	pushCmd.Flags().BoolVar(&pushJSONFlag, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(pushCmd)
}
