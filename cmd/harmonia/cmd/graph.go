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

var graphFormatFlag string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the workspace's internal dependency graph",
	Long: `graph renders the resolved dependency graph in one of four formats via
--format: tree (default), flat, dot, or json.`,
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		switch graphFormatFlag {
		case "", "tree":
			fmt.Fprint(c.OutOrStdout(), e.Graph.Tree())
		case "flat":
			fmt.Fprint(c.OutOrStdout(), e.Graph.Flat())
		case "dot":
			fmt.Fprint(c.OutOrStdout(), e.Graph.DOT())
		case "json":
			data, err := e.Graph.JSON()
			if err != nil {
				return fmt.Errorf("render graph: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), string(data))
		default:
			return fmt.Errorf("graph: unsupported --format %q (want tree, flat, dot, or json)", graphFormatFlag)
		}

		if cycles := e.Graph.FindCycles(); len(cycles) > 0 {
			for _, cycle := range cycles {
				fmt.Fprintf(c.ErrOrStderr(), "cycle: %v\n", cycle)
			}
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().StringVar(&graphFormatFlag, "format", "tree", "tree, flat, dot, or json")
	rootCmd.AddCommand(graphCmd)
}
