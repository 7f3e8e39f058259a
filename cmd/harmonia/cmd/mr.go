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

	"github.com/jpetrucciani/harmonia/internal/changeset"
	"github.com/jpetrucciani/harmonia/internal/ops"
)

var mrCmd = &cobra.Command{
	Use:   "mr",
	Short: "Create, inspect, update, merge, or close merge requests for a changeset",
}

func loadChangeset(e *env, id string) (*changeset.Changeset, error) {
	dir := e.Workspace.Policy.Changesets.Dir
	if dir == "" {
		return nil, fmt.Errorf("mr: changesets are not enabled for this workspace")
	}
	return changeset.Load(dir, id)
}

var (
	mrCreateAllFlag      bool
	mrCreateGroupsFlag   []string
	mrCreateChangedFlag  bool
	mrCreateTargetFlag   string
	mrCreateDraftFlag    bool
	mrCreateTrackingFlag bool
)

var mrCreateCmd = &cobra.Command{
	Use:   "create [repos...]",
	Short: "Create one MR per selected repo and link them into a changeset",
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}

		selection, err := e.selectRepos(args, selectionFlags{
			Groups:  mrCreateGroupsFlag,
			All:     mrCreateAllFlag,
			Changed: mrCreateChangedFlag || len(args) == 0,
		})
		if err != nil {
			return err
		}

		result, err := e.Deps.MRCreate(c.Context(), selection, ops.MRCreateOptions{
			TargetBranch:  mrCreateTargetFlag,
			Draft:         mrCreateDraftFlag,
			TrackingIssue: mrCreateTrackingFlag,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(c.OutOrStdout(), "changeset %s: %d MR(s) created\n", result.Changeset.ID, len(result.MRs))
		for _, mr := range result.MRs {
			fmt.Fprintf(c.OutOrStdout(), "  %s\n", mr.URL)
		}
		if result.Issue != nil {
			fmt.Fprintf(c.OutOrStdout(), "tracking issue: %s\n", result.Issue.URL)
		}
		return nil
	},
}

var mrStatusCmd = &cobra.Command{
	Use:   "status <changeset-id>",
	Short: "Show each MR's state and CI status for a changeset",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}
		cs, err := loadChangeset(e, args[0])
		if err != nil {
			return err
		}
		mrs, ci, err := e.Deps.MRStatus(c.Context(), cs)
		if err != nil {
			return err
		}
		for _, id := range cs.RepoIDs() {
			mr := mrs[id]
			status := ci[id]
			fmt.Fprintf(c.OutOrStdout(), "%s\t%s\t%s\n", id, mr.State, status.State)
		}
		return nil
	},
}

var (
	mrUpdateTitleFlag string
	mrUpdateDescFlag  string
)

var mrUpdateCmd = &cobra.Command{
	Use:   "update <changeset-id>",
	Short: "Re-render and push title/description for every MR in a changeset",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}
		cs, err := loadChangeset(e, args[0])
		if err != nil {
			return err
		}
		var title, description *string
		if c.Flags().Changed("title") {
			title = &mrUpdateTitleFlag
		}
		if c.Flags().Changed("description") {
			description = &mrUpdateDescFlag
		}
		return e.Deps.MRUpdate(c.Context(), cs, title, description)
	},
}

var (
	mrMergeNoWaitFlag    bool
	mrMergePollEveryFlag time.Duration
)

var mrMergeCmd = &cobra.Command{
	Use:   "merge <changeset-id>",
	Short: "Merge every MR in a changeset in dependency order, waiting for CI",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}
		cs, err := loadChangeset(e, args[0])
		if err != nil {
			return err
		}
		return e.Deps.MRMerge(c.Context(), cs, ops.MRMergeOptions{
			NoWait:    mrMergeNoWaitFlag,
			PollEvery: mrMergePollEveryFlag,
		})
	},
}

var mrCloseCmd = &cobra.Command{
	Use:   "close <changeset-id>",
	Short: "Close every MR in a changeset without merging",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		e, err := buildEnv(c)
		if err != nil {
			return err
		}
		cs, err := loadChangeset(e, args[0])
		if err != nil {
			return err
		}
		return e.Deps.MRClose(c.Context(), cs)
	},
}

func init() {
	mrCreateCmd.Flags().BoolVar(&mrCreateAllFlag, "all", false, "select every repo in the default group")
	mrCreateCmd.Flags().StringSliceVarP(&mrCreateGroupsFlag, "group", "g", nil, "select every repo in the named group(s)")
	mrCreateCmd.Flags().BoolVar(&mrCreateChangedFlag, "changed", false, "select repos with a dirty working tree")
	mrCreateCmd.Flags().StringVar(&mrCreateTargetFlag, "target", "", "target branch for every MR (default: each repo's default branch)")
	mrCreateCmd.Flags().BoolVar(&mrCreateDraftFlag, "draft", false, "open MRs as drafts")
	mrCreateCmd.Flags().BoolVar(&mrCreateTrackingFlag, "tracking-issue", false, "open a tracking issue linking every MR")

	mrUpdateCmd.Flags().StringVar(&mrUpdateTitleFlag, "title", "", "new title for every MR")
	mrUpdateCmd.Flags().StringVar(&mrUpdateDescFlag, "description", "", "new description for every MR")

	mrMergeCmd.Flags().BoolVar(&mrMergeNoWaitFlag, "no-wait", false, "merge without waiting for CI")
	mrMergeCmd.Flags().DurationVar(&mrMergePollEveryFlag, "poll-every", 0, "CI poll interval (default 15s)")

	mrCmd.AddCommand(mrCreateCmd, mrStatusCmd, mrUpdateCmd, mrMergeCmd, mrCloseCmd)
	rootCmd.AddCommand(mrCmd)
}
