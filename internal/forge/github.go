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

package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const githubAPIURL = "https://api.github.com"

func init() {
	Register("github", func(token, host string) Forge {
		return NewGitHubForge(token, host)
	})
}

// GitHubForge implements Forge against the GitHub REST API.
type GitHubForge struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewGitHubForge builds a GitHubForge. host overrides the API base URL for
// GitHub Enterprise; an empty host targets github.com.
func NewGitHubForge(token, host string) *GitHubForge {
	base := githubAPIURL
	if host != "" {
		base = strings.TrimSuffix(host, "/") + "/api/v3"
	}
	return &GitHubForge{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: base,
		token:   token,
	}
}

type githubPR struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	Draft   bool   `json:"draft"`
	HTMLURL string `json:"html_url"`
	Head    struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
	Merged bool `json:"merged"`
}

func (pr githubPR) toMR(repo string) MR {
	state := MRStateOpen
	switch {
	case pr.Merged:
		state = MRStateMerged
	case pr.State == "closed":
		state = MRStateClosed
	case pr.Draft:
		state = MRStateDraft
	}
	return MR{
		ID:           strconv.Itoa(pr.Number),
		Repo:         repo,
		SourceBranch: pr.Head.Ref,
		TargetBranch: pr.Base.Ref,
		Title:        pr.Title,
		Description:  pr.Body,
		State:        state,
		URL:          pr.HTMLURL,
	}
}

func (f *GitHubForge) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &Error{Kind: ErrorKindTransient, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: ErrorKindTransient, Cause: err}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Kind: ErrorKindAuth, Cause: fmt.Errorf("github: %s", respBody)}
	case http.StatusNotFound:
		return &Error{Kind: ErrorKindNotFound, Cause: fmt.Errorf("github: %s", respBody)}
	case http.StatusTooManyRequests:
		return &Error{Kind: ErrorKindRateLimited, Cause: fmt.Errorf("github: %s", respBody)}
	}
	if resp.StatusCode >= 500 {
		return &Error{Kind: ErrorKindTransient, Cause: fmt.Errorf("github: status %d: %s", resp.StatusCode, respBody)}
	}
	if resp.StatusCode >= 400 {
		return &Error{Kind: ErrorKindTransient, Cause: fmt.Errorf("github: status %d: %s", resp.StatusCode, respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// CreateMR opens a pull request via POST /repos/{owner}/{repo}/pulls.
func (f *GitHubForge) CreateMR(ctx context.Context, repo string, opts CreateMROptions) (MR, error) {
	owner, name, err := splitOwnerRepo(repo)
	if err != nil {
		return MR{}, err
	}

	payload := map[string]any{
		"title": opts.Title,
		"head":  opts.SourceBranch,
		"base":  opts.TargetBranch,
		"body":  opts.Description,
		"draft": opts.Draft,
	}
	var pr githubPR
	if err := f.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/pulls", owner, name), payload, &pr); err != nil {
		return MR{}, withRepo(err, repo)
	}
	return pr.toMR(repo), nil
}

// GetMR fetches a pull request by number.
func (f *GitHubForge) GetMR(ctx context.Context, repo, id string) (MR, error) {
	owner, name, err := splitOwnerRepo(repo)
	if err != nil {
		return MR{}, err
	}
	var pr githubPR
	if err := f.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/pulls/%s", owner, name, id), nil, &pr); err != nil {
		return MR{}, withRepo(err, repo)
	}
	return pr.toMR(repo), nil
}

// UpdateMR patches title and description. opts.Draft is not sent, so a
// PR's draft state is left as it is.
func (f *GitHubForge) UpdateMR(ctx context.Context, repo, id string, opts UpdateMROptions) (MR, error) {
	owner, name, err := splitOwnerRepo(repo)
	if err != nil {
		return MR{}, err
	}

	payload := map[string]any{}
	if opts.Title != nil {
		payload["title"] = *opts.Title
	}
	if opts.Description != nil {
		payload["body"] = *opts.Description
	}
	var pr githubPR
	if err := f.do(ctx, http.MethodPatch, fmt.Sprintf("/repos/%s/%s/pulls/%s", owner, name, id), payload, &pr); err != nil {
		return MR{}, withRepo(err, repo)
	}
	return pr.toMR(repo), nil
}

// LinkMRs has no native related-PR primitive on GitHub, so it degrades to
// description backlinks: every PR in links is updated to mention every
// other PR in the group (spec.md §9).
func (f *GitHubForge) LinkMRs(ctx context.Context, links []LinkRequest) error {
	for i, link := range links {
		var mentions []string
		for j, other := range links {
			if j == i {
				continue
			}
			mentions = append(mentions, fmt.Sprintf("%s#%s", other.Repo, other.MRID))
		}
		if len(mentions) == 0 {
			continue
		}
		current, err := f.GetMR(ctx, link.Repo, link.MRID)
		if err != nil {
			return err
		}
		suffix := "\n\nRelated: " + strings.Join(mentions, ", ")
		if strings.Contains(current.Description, "Related: ") {
			continue
		}
		newBody := current.Description + suffix
		if _, err := f.UpdateMR(ctx, link.Repo, link.MRID, UpdateMROptions{Description: &newBody}); err != nil {
			return err
		}
	}
	return nil
}

// MergeMR merges via PUT /repos/{owner}/{repo}/pulls/{id}/merge.
func (f *GitHubForge) MergeMR(ctx context.Context, repo, id string) error {
	owner, name, err := splitOwnerRepo(repo)
	if err != nil {
		return err
	}
	if err := f.do(ctx, http.MethodPut, fmt.Sprintf("/repos/%s/%s/pulls/%s/merge", owner, name, id), map[string]any{}, nil); err != nil {
		return withRepo(err, repo)
	}
	return nil
}

// CloseMR sets state=closed without merging.
func (f *GitHubForge) CloseMR(ctx context.Context, repo, id string) error {
	owner, name, err := splitOwnerRepo(repo)
	if err != nil {
		return err
	}
	if err := f.do(ctx, http.MethodPatch, fmt.Sprintf("/repos/%s/%s/pulls/%s", owner, name, id), map[string]any{"state": "closed"}, nil); err != nil {
		return withRepo(err, repo)
	}
	return nil
}

type githubCombinedStatus struct {
	State    string `json:"state"`
	Statuses []struct {
		Context string `json:"context"`
		State   string `json:"state"`
	} `json:"statuses"`
}

func githubStateToCIState(s string) CIState {
	switch s {
	case "success":
		return CISuccess
	case "failure", "error":
		return CIFailed
	case "pending":
		return CIPending
	default:
		return CIRunning
	}
}

// GetCIStatus reads the combined status for ref via
// GET /repos/{owner}/{repo}/commits/{ref}/status.
func (f *GitHubForge) GetCIStatus(ctx context.Context, repo, ref string) (CIStatus, error) {
	owner, name, err := splitOwnerRepo(repo)
	if err != nil {
		return CIStatus{}, err
	}

	var combined githubCombinedStatus
	if err := f.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/commits/%s/status", owner, name, ref), nil, &combined); err != nil {
		return CIStatus{}, withRepo(err, repo)
	}

	checks := make(map[string]CIState, len(combined.Statuses))
	for _, s := range combined.Statuses {
		checks[s.Context] = githubStateToCIState(s.State)
	}
	return CIStatus{
		Ref:    ref,
		State:  githubStateToCIState(combined.State),
		Checks: checks,
	}, nil
}

type githubIssue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// CreateIssue opens a tracking issue via POST /repos/{owner}/{repo}/issues.
func (f *GitHubForge) CreateIssue(ctx context.Context, repo string, opts CreateIssueOptions) (Issue, error) {
	owner, name, err := splitOwnerRepo(repo)
	if err != nil {
		return Issue{}, err
	}

	var issue githubIssue
	payload := map[string]any{"title": opts.Title, "body": opts.Body}
	if err := f.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/issues", owner, name), payload, &issue); err != nil {
		return Issue{}, withRepo(err, repo)
	}
	return Issue{ID: strconv.Itoa(issue.Number), URL: issue.HTMLURL}, nil
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// GetUser resolves the identity behind the configured token via GET /user.
func (f *GitHubForge) GetUser(ctx context.Context) (User, error) {
	var user githubUser
	if err := f.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return User{}, withRepo(err, "")
	}
	return User{ID: strconv.FormatInt(user.ID, 10), Login: user.Login}, nil
}

func splitOwnerRepo(repo string) (owner, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("forge: repo %q is not of the form owner/name", repo)
	}
	return parts[0], parts[1], nil
}

func withRepo(err error, repo string) error {
	if fe, ok := err.(*Error); ok {
		fe.Repo = repo
		return fe
	}
	return err
}
