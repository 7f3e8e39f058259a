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
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	statusAllFlag    bool
	statusGroupsFlag []string
	statusJSONFlag   bool
)

var statusCmd = &cobra.Command{
	Use:   "status [repos...]",
	Short: "Show each selected repo's branch, ahead/behind, and dirty state",
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		selection, err := e.selectRepos(args, selectionFlags{
			Groups: statusGroupsFlag,
			All:    statusAllFlag || len(args) == 0,
		})
		if err != nil {
			return err
		}

		statuses := e.Deps.Status(c.Context(), selection)

		if statusJSONFlag {
			data, err := json.MarshalIndent(statuses, "", "  ")
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), string(data))
			return nil
		}

		w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REPO\tBRANCH\tAHEAD\tBEHIND\tDIRTY")
		for _, id := range selection {
			s, ok := statuses[id]
			if !ok {
				fmt.Fprintf(w, "%s\t?\t?\t?\t?\n", id)
				continue
			}
			dirty := s.Dirty(e.Workspace.Policy.Defaults.IncludeUntracked)
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%t\n", id, s.Branch, s.Ahead, s.Behind, dirty)
		}
		return w.Flush()
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusAllFlag, "all", false, "select every repo in the default group")
	statusCmd.Flags().StringSliceVarP(&statusGroupsFlag, "group", "g", nil, "select every repo in the named group(s)")
	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "emit status as JSON")
	rootCmd.AddCommand(statusCmd)
}
