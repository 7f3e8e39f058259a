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

package changeset

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cs := FromBranch("feature/bump-core", []string{"core", "api"}, time.Unix(0, 0))
	cs.Title = "bump core to v2"

	if err := Save(dir, cs, time.Unix(100, 0)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(dir, cs.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Branch != "feature/bump-core" || loaded.Title != "bump core to v2" {
		t.Errorf("Load() = %+v, unexpected fields", loaded)
	}
	if len(loaded.Repos) != 2 || loaded.Repos[0].RepoID != "core" {
		t.Errorf("Load() repos = %v, want [core api]", loaded.RepoIDs())
	}
	if loaded.UpdatedAt.Unix() != 100 {
		t.Errorf("Load() UpdatedAt = %v, want refreshed to Save's now", loaded.UpdatedAt)
	}
}

func TestListSkipsUnparseableFilesAsWarnings(t *testing.T) {
	dir := t.TempDir()
	cs := FromBranch("feature/a", []string{"a"}, time.Unix(0, 0))
	if err := Save(dir, cs, time.Unix(0, 0)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}

	ids, warnings, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "feature-a" {
		t.Errorf("List() ids = %v, want [feature-a]", ids)
	}
	if len(warnings) != 1 {
		t.Errorf("List() warnings = %v, want exactly one for broken.toml", warnings)
	}
}

func TestDiscoverReturnsParsedChangesets(t *testing.T) {
	dir := t.TempDir()
	for _, branch := range []string{"feature/a", "feature/b"} {
		cs := FromBranch(branch, []string{"core"}, time.Unix(0, 0))
		if err := Save(dir, cs, time.Unix(0, 0)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	discovered, warnings, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(discovered) != 2 {
		t.Fatalf("Discover() = %d changesets, want 2", len(discovered))
	}
	if len(warnings) != 0 {
		t.Errorf("Discover() warnings = %v, want none", warnings)
	}
}

func TestListOnMissingDirReturnsEmpty(t *testing.T) {
	ids, warnings, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 0 || len(warnings) != 0 {
		t.Errorf("List() = (%v, %v), want both empty for a missing dir", ids, warnings)
	}
}

func TestLinkedMRsCollectsOnlyNonEmpty(t *testing.T) {
	cs := &Changeset{Repos: []RepoSummary{
		{RepoID: "a", MRID: "1"},
		{RepoID: "b"},
		{RepoID: "c", MRID: "3"},
	}}
	got := cs.LinkedMRs()
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Errorf("LinkedMRs() = %v, want [1 3]", got)
	}
}
