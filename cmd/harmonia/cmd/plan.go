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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	planChangedFlag bool
	planAllFlag     bool
	planJSONFlag    bool
)

var planCmd = &cobra.Command{
	Use:   "plan [repos...]",
	Short: "Report the changed set, restricted graph order, and recommendations",
	Long: `plan computes, without writing anything, the transitive closure of the
changed set in dependency order and every constraint violation found
against current on-disk versions, surfacing one recommendation per
violation.`,
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		changed := args
		if planChangedFlag || (len(args) == 0 && !planAllFlag) {
			detected := e.Deps.DetectChanged(c.Context())
			changed = nil
			for id := range detected {
				changed = append(changed, id)
			}
		}
		if planAllFlag {
			changed = e.Workspace.SortedRepoIDs()
		}

		p, err := e.Deps.Plan(c.Context(), changed)
		if err != nil {
			return err
		}

		if planJSONFlag {
			data, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return fmt.Errorf("render plan: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), string(data))
			return nil
		}

		fmt.Fprintf(c.OutOrStdout(), "changed: %v\n", p.Changed)
		fmt.Fprintf(c.OutOrStdout(), "order:   %v\n", p.RestrictedOrder)
		if len(p.Violations) == 0 {
			fmt.Fprintln(c.OutOrStdout(), "no constraint violations")
			return nil
		}
		for _, v := range p.Violations {
			fmt.Fprintf(c.OutOrStdout(), "violation: %s -> %s (%s)\n", v.From, v.To, v.Kind)
		}
		for _, r := range p.Recommendations {
			fmt.Fprintf(c.OutOrStdout(), "recommendation: %s: %s\n", r.Repo, r.Message)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planChangedFlag, "changed", false, "use the detected changed set instead of positional repo arguments")
	planCmd.Flags().BoolVar(&planAllFlag, "all", false, "plan against every repo in the workspace")
	planCmd.Flags().BoolVar(&planJSONFlag, "json", false, "emit the plan as JSON")
	rootCmd.AddCommand(planCmd)
}
