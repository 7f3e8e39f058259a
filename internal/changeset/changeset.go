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

// Package changeset persists the Changeset Store (spec.md §3, §4.J): a set
// of repos touched together, the branch they share, and the MRs and
// tracking issue raised for them. A changeset is a file under
// <changesets.dir>/<id>.toml, never rewritten unless an operation handler
// explicitly opts in.
package changeset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jpetrucciani/harmonia/internal/secureio"
)

// RepoSummary is one repo's contribution to a changeset: the MR raised for
// it (if any) and a short description of what changed.
type RepoSummary struct {
	RepoID      string `toml:"repo_id"`
	Summary     string `toml:"summary,omitempty"`
	MRID        string `toml:"mr_id,omitempty"`
	MRURL       string `toml:"mr_url,omitempty"`
}

// Changeset is spec.md §3's Changeset type: id, branch, ordered repos,
// optional per-repo summary, optional linked MRs, optional tracking issue.
type Changeset struct {
	ID            string        `toml:"id"`
	Title         string        `toml:"title,omitempty"`
	Description   string        `toml:"description,omitempty"`
	Branch        string        `toml:"branch"`
	Repos         []RepoSummary `toml:"repos"`
	TrackingIssue string        `toml:"tracking_issue,omitempty"`
	CreatedAt     time.Time     `toml:"created_at"`
	UpdatedAt     time.Time     `toml:"updated_at"`
}

// RepoIDs returns the changeset's repos in stored order.
func (c *Changeset) RepoIDs() []string {
	ids := make([]string, len(c.Repos))
	for i, r := range c.Repos {
		ids[i] = r.RepoID
	}
	return ids
}

// LinkedMRs returns every non-empty MR id recorded in the changeset.
func (c *Changeset) LinkedMRs() []string {
	var ids []string
	for _, r := range c.Repos {
		if r.MRID != "" {
			ids = append(ids, r.MRID)
		}
	}
	return ids
}

// Error reports a changeset store failure tied to one id.
type Error struct {
	ID     string
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return "changeset " + e.ID + " at " + e.Path + ": " + e.Reason
}

// path returns the TOML file backing id under dir.
func path(dir, id string) string {
	return filepath.Join(dir, id+".toml")
}

// Load reads one changeset by id from dir.
func Load(dir, id string) (*Changeset, error) {
	p := path(dir, id)
	data, err := secureio.ReadFile(p)
	if err != nil {
		return nil, &Error{ID: id, Path: p, Reason: err.Error()}
	}
	var cs Changeset
	if err := toml.Unmarshal(data, &cs); err != nil {
		return nil, &Error{ID: id, Path: p, Reason: fmt.Sprintf("parse: %v", err)}
	}
	return &cs, nil
}

// Save writes cs to dir, creating dir if necessary. UpdatedAt is refreshed
// to now before writing.
func Save(dir string, cs *Changeset, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create changesets dir %s: %w", dir, err)
	}
	if cs.CreatedAt.IsZero() {
		cs.CreatedAt = now
	}
	cs.UpdatedAt = now

	data, err := toml.Marshal(cs)
	if err != nil {
		return &Error{ID: cs.ID, Path: path(dir, cs.ID), Reason: fmt.Sprintf("encode: %v", err)}
	}
	p := path(dir, cs.ID)
	if err := secureio.WriteFile(p, data, 0o644); err != nil {
		return &Error{ID: cs.ID, Path: p, Reason: err.Error()}
	}
	return nil
}

// Warning is a soft failure encountered while discovering changesets: the
// offending file is skipped rather than aborting the whole scan, the same
// posture the configuration resolver takes toward one bad repo file.
type Warning struct {
	Path   string
	Reason string
}

func (w Warning) String() string {
	return w.Path + ": " + w.Reason
}

// List returns every changeset id found under dir, sorted, along with any
// files that failed to parse as warnings.
func List(dir string) ([]string, []Warning, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read changesets dir %s: %w", dir, err)
	}

	var ids []string
	var warnings []Warning
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".toml")
		if _, err := Load(dir, id); err != nil {
			warnings = append(warnings, Warning{Path: filepath.Join(dir, entry.Name()), Reason: err.Error()})
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, warnings, nil
}

// Discover loads every changeset under dir, skipping and reporting ones
// that fail to parse instead of aborting.
func Discover(dir string) ([]*Changeset, []Warning, error) {
	ids, warnings, err := List(dir)
	if err != nil {
		return nil, nil, err
	}
	out := make([]*Changeset, 0, len(ids))
	for _, id := range ids {
		cs, err := Load(dir, id)
		if err != nil {
			warnings = append(warnings, Warning{Path: path(dir, id), Reason: err.Error()})
			continue
		}
		out = append(out, cs)
	}
	return out, warnings, nil
}

// FromBranch builds a new Changeset seeded from the current branch name and
// the ordered repo selection that produced it; id defaults to branch with
// path separators flattened.
func FromBranch(branch string, repoIDs []string, now time.Time) *Changeset {
	summaries := make([]RepoSummary, len(repoIDs))
	for i, id := range repoIDs {
		summaries[i] = RepoSummary{RepoID: id}
	}
	return &Changeset{
		ID:        strings.ReplaceAll(branch, "/", "-"),
		Branch:    branch,
		Repos:     summaries,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
