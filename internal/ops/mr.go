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

package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/jpetrucciani/harmonia/internal/changeset"
	"github.com/jpetrucciani/harmonia/internal/config"
	"github.com/jpetrucciani/harmonia/internal/forge"
)

const defaultCIPollInterval = 15 * time.Second

// MRCreateOptions carries `mr create`'s per-run knobs.
type MRCreateOptions struct {
	TargetBranch  string
	TitleTemplate string
	BodyTemplate  string
	Draft         bool
	TrackingIssue bool
}

// MRCreateResult pairs the persisted changeset with the MRs raised for it.
type MRCreateResult struct {
	Changeset *changeset.Changeset
	MRs       []forge.MR
	Issue     *forge.Issue
}

// MRCreate computes the changeset from the current branch of the first
// selected repo, creates one MR per selected repo in graph order, links
// them with a single Forge.LinkMRs call, and optionally opens a tracking
// issue (spec.md §4.F). The forge adapter picks the linking mechanism;
// the workspace's mr.link_strategy is not read here.
func (d *Deps) MRCreate(ctx context.Context, selection []string, opts MRCreateOptions) (*MRCreateResult, error) {
	order, err := d.Graph.MergeOrder(selection)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("mr create: empty selection")
	}

	first, err := d.repo(order[0])
	if err != nil {
		return nil, err
	}
	branch, err := d.VCS.CurrentBranch(ctx, first.Path)
	if err != nil {
		return nil, fmt.Errorf("mr create: read current branch: %w", err)
	}

	cs := changeset.FromBranch(branch, order, now(d))
	if opts.TitleTemplate != "" {
		cs.Title = renderTemplate(opts.TitleTemplate, branch)
	}
	if opts.BodyTemplate != "" {
		cs.Description = renderTemplate(opts.BodyTemplate, branch)
	}

	target := opts.TargetBranch
	result := &MRCreateResult{Changeset: cs}

	for i, id := range order {
		r, err := d.repo(id)
		if err != nil {
			return nil, err
		}
		repoTarget := target
		if repoTarget == "" {
			repoTarget = r.DefaultBranch
		}
		mr, err := d.Forge.CreateMR(ctx, r.RemoteURL, forge.CreateMROptions{
			SourceBranch: branch,
			TargetBranch: repoTarget,
			Title:        cs.Title,
			Description:  cs.Description,
			Draft:        opts.Draft,
		})
		if err != nil {
			return nil, fmt.Errorf("mr create: repo %s: %w", id, err)
		}
		cs.Repos[i].MRID = mr.ID
		cs.Repos[i].MRURL = mr.URL
		result.MRs = append(result.MRs, mr)
	}

	if len(result.MRs) > 1 {
		links := make([]forge.LinkRequest, len(order))
		for i, id := range order {
			r, _ := d.repo(id)
			links[i] = forge.LinkRequest{Repo: r.RemoteURL, MRID: cs.Repos[i].MRID}
		}
		if err := d.Forge.LinkMRs(ctx, links); err != nil {
			return nil, fmt.Errorf("mr create: link MRs: %w", err)
		}
	}

	if opts.TrackingIssue {
		issue, err := d.Forge.CreateIssue(ctx, first.RemoteURL, forge.CreateIssueOptions{
			Title: cs.Title,
			Body:  trackingIssueBody(cs),
		})
		if err != nil {
			return nil, fmt.Errorf("mr create: tracking issue: %w", err)
		}
		cs.TrackingIssue = issue.ID
		result.Issue = &issue
	}

	if changesetDir(d) != "" {
		if err := changeset.Save(changesetDir(d), cs, now(d)); err != nil {
			return nil, fmt.Errorf("mr create: persist changeset: %w", err)
		}
	}

	return result, nil
}

// MRStatus fetches each MR's current state and CI status for a changeset.
func (d *Deps) MRStatus(ctx context.Context, cs *changeset.Changeset) (map[string]forge.MR, map[string]forge.CIStatus, error) {
	mrs := make(map[string]forge.MR, len(cs.Repos))
	ci := make(map[string]forge.CIStatus, len(cs.Repos))

	for _, summary := range cs.Repos {
		if summary.MRID == "" {
			continue
		}
		r, err := d.repo(summary.RepoID)
		if err != nil {
			return nil, nil, err
		}
		mr, err := d.Forge.GetMR(ctx, r.RemoteURL, summary.MRID)
		if err != nil {
			return nil, nil, fmt.Errorf("mr status: repo %s: %w", summary.RepoID, err)
		}
		mrs[summary.RepoID] = mr

		status, err := d.Forge.GetCIStatus(ctx, r.RemoteURL, mr.SourceBranch)
		if err != nil {
			return nil, nil, fmt.Errorf("mr status: repo %s: %w", summary.RepoID, err)
		}
		ci[summary.RepoID] = status
	}
	return mrs, ci, nil
}

// MRUpdate pushes the given title/description to every MR in cs.
func (d *Deps) MRUpdate(ctx context.Context, cs *changeset.Changeset, title, description *string) error {
	for _, summary := range cs.Repos {
		if summary.MRID == "" {
			continue
		}
		r, err := d.repo(summary.RepoID)
		if err != nil {
			return err
		}
		if _, err := d.Forge.UpdateMR(ctx, r.RemoteURL, summary.MRID, forge.UpdateMROptions{Title: title, Description: description}); err != nil {
			return fmt.Errorf("mr update: repo %s: %w", summary.RepoID, err)
		}
	}
	return nil
}

// MRMergeOptions carries `mr merge`'s per-run knobs.
type MRMergeOptions struct {
	NoWait    bool
	PollEvery time.Duration
}

// MRMerge walks cs.Repos in graph order, waiting for CI success on each
// repo's MR (per that repo's ci.required_checks and timeout_minutes)
// before merging, unless opts.NoWait.
func (d *Deps) MRMerge(ctx context.Context, cs *changeset.Changeset, opts MRMergeOptions) error {
	order, err := d.Graph.MergeOrder(cs.RepoIDs())
	if err != nil {
		return err
	}

	byRepo := make(map[string]string, len(cs.Repos))
	for _, summary := range cs.Repos {
		byRepo[summary.RepoID] = summary.MRID
	}

	for _, id := range order {
		mrID, ok := byRepo[id]
		if !ok || mrID == "" {
			continue
		}
		r, err := d.repo(id)
		if err != nil {
			return err
		}

		if !opts.NoWait {
			if err := d.waitForCI(ctx, r, mrID, opts.PollEvery); err != nil {
				return err
			}
		}
		if err := d.Forge.MergeMR(ctx, r.RemoteURL, mrID); err != nil {
			return fmt.Errorf("mr merge: repo %s: %w", id, err)
		}
	}
	return nil
}

// waitForCI polls the given MR's CI status until every one of the repo's
// required_checks reports CISuccess, CI reports failed or canceled, or
// timeout_minutes elapses, whichever comes first.
func (d *Deps) waitForCI(ctx context.Context, r *config.Repo, mrID string, pollEvery time.Duration) error {
	if pollEvery <= 0 {
		pollEvery = defaultCIPollInterval
	}
	timeout := time.Duration(r.CI.TimeoutMinutes) * time.Minute
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}

	deadline := now(d).Add(timeout)
	for {
		mr, err := d.Forge.GetMR(ctx, r.RemoteURL, mrID)
		if err != nil {
			return fmt.Errorf("mr merge: repo %s: %w", r.ID, err)
		}
		status, err := d.Forge.GetCIStatus(ctx, r.RemoteURL, mr.SourceBranch)
		if err != nil {
			return fmt.Errorf("mr merge: repo %s: %w", r.ID, err)
		}
		if ciSatisfiesRequiredChecks(status, r.CI.RequiredChecks) {
			return nil
		}
		if status.State == forge.CIFailed || status.State == forge.CICanceled {
			return fmt.Errorf("mr merge: repo %s: CI reported %s", r.ID, status.State)
		}

		if now(d).After(deadline) {
			return &CITimeoutError{Repo: r.ID, MR: mrID}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollEvery):
		}
	}
}

func ciSatisfiesRequiredChecks(status forge.CIStatus, required []string) bool {
	if len(required) == 0 {
		return status.State == forge.CISuccess
	}
	for _, check := range required {
		if status.Checks[check] != forge.CISuccess {
			return false
		}
	}
	return true
}

// MRClose closes every MR in cs without merging.
func (d *Deps) MRClose(ctx context.Context, cs *changeset.Changeset) error {
	for _, summary := range cs.Repos {
		if summary.MRID == "" {
			continue
		}
		r, err := d.repo(summary.RepoID)
		if err != nil {
			return err
		}
		if err := d.Forge.CloseMR(ctx, r.RemoteURL, summary.MRID); err != nil {
			return fmt.Errorf("mr close: repo %s: %w", summary.RepoID, err)
		}
	}
	return nil
}

func renderTemplate(template, branch string) string {
	return template + " (" + branch + ")"
}

func trackingIssueBody(cs *changeset.Changeset) string {
	body := "Tracking changeset " + cs.ID + " across:\n"
	for _, r := range cs.Repos {
		body += "- " + r.RepoID
		if r.MRURL != "" {
			body += ": " + r.MRURL
		}
		body += "\n"
	}
	return body
}
