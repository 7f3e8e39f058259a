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
	"fmt"

	"github.com/spf13/cobra"
)

var (
	branchAllFlag     bool
	branchGroupsFlag  []string
	branchChangedFlag bool
	branchWithDeps    bool
	branchJSONFlag    bool
)

var branchCmd = &cobra.Command{
	Use:   "branch <name> [repos...]",
	Short: "Create or check out a branch across the selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		name := args[0]
		repos := args[1:]

		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		selection, err := e.selectRepos(repos, selectionFlags{
			Groups:   branchGroupsFlag,
			All:      branchAllFlag || len(repos) == 0,
			Changed:  branchChangedFlag,
			WithDeps: branchWithDeps,
			Mutating: true,
		})
		if err != nil {
			return err
		}
		if len(selection) == 0 {
			return fmt.Errorf("branch: selection is empty")
		}

		rep, err := e.Deps.Branch(c.Context(), selection, name, runOptions(0, false, false))
		if err != nil {
			return err
		}
		return emitReport(c, rep, branchJSONFlag)
	},
}

func init() {
	branchCmd.Flags().BoolVar(&branchAllFlag, "all", false, "select every repo in the default group")
	branchCmd.Flags().StringSliceVarP(&branchGroupsFlag, "group", "g", nil, "select every repo in the named group(s)")
	branchCmd.Flags().BoolVar(&branchChangedFlag, "changed", false, "select repos with a dirty working tree")
	branchCmd.Flags().BoolVar(&branchWithDeps, "with-deps", false, "add each selected repo's direct internal dependencies")
	branchCmd.Flags().BoolVar(&branchJSONFlag, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(branchCmd)
}
