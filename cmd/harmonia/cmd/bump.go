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
	"time"

	"github.com/spf13/cobra"

	"github.com/jpetrucciani/harmonia/internal/ops"
	"github.com/jpetrucciani/harmonia/internal/semver"
)

var (
	bumpLevelFlag    string
	bumpPreTagFlag   string
	bumpCascadeFlag  bool
	bumpDryRunFlag   bool
	bumpNoCommitFlag bool
	bumpJSONFlag     bool
)

var bumpCmd = &cobra.Command{
	Use:   "bump <repo>",
	Short: "Bump a repo's own version, optionally cascading to dependents",
	Long: `bump applies --level (major, minor, or patch) to <repo>'s own version.
With --cascade, every repo that depends on <repo> internally has its
constraint on <repo> rewritten to the new version in the same run, in
dependency order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		target := args[0]
		level := semver.Level(bumpLevelFlag)
		switch level {
		case semver.LevelMajor, semver.LevelMinor, semver.LevelPatch:
		default:
			return fmt.Errorf("bump: --level must be major, minor, or patch, got %q", bumpLevelFlag)
		}

		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		rep, err := e.Deps.Bump(c.Context(), target, ops.BumpOptions{
			Level:    level,
			PreTag:   bumpPreTagFlag,
			Today:    time.Now(),
			Cascade:  bumpCascadeFlag,
			DryRun:   bumpDryRunFlag,
			NoCommit: bumpNoCommitFlag,
		}, runOptions(0, false, true))
		if err != nil {
			return err
		}
		return emitReport(c, rep, bumpJSONFlag)
	},
}

func init() {
	bumpCmd.Flags().StringVar(&bumpLevelFlag, "level", "patch", "major, minor, or patch")
	bumpCmd.Flags().StringVar(&bumpPreTagFlag, "pre-tag", "", "prerelease tag to append to the bumped version")
	bumpCmd.Flags().BoolVar(&bumpCascadeFlag, "cascade", false, "rewrite every internal dependent's constraint too")
	bumpCmd.Flags().BoolVar(&bumpDryRunFlag, "dry-run", false, "compute edits without writing any manifest")
	bumpCmd.Flags().BoolVar(&bumpNoCommitFlag, "no-commit", false, "write manifests but do not commit")
	bumpCmd.Flags().BoolVar(&bumpJSONFlag, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(bumpCmd)
}
