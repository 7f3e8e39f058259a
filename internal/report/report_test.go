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

package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSortOrdersByRepoID(t *testing.T) {
	r := New("sync", time.Now())
	r.Add(Outcome{RepoID: "zeta", State: StateSucceeded})
	r.Add(Outcome{RepoID: "alpha", State: StateSucceeded})
	r.Sort()

	if r.Outcomes[0].RepoID != "alpha" || r.Outcomes[1].RepoID != "zeta" {
		t.Errorf("Sort() order = %v, want [alpha, zeta]", r.Outcomes)
	}
}

func TestExitCodeReflectsFailures(t *testing.T) {
	clean := New("sync", time.Now())
	clean.Add(Outcome{RepoID: "a", State: StateSucceeded})
	if code := clean.ExitCode(); code != 0 {
		t.Errorf("ExitCode() = %d, want 0 for an all-success report", code)
	}

	failed := New("sync", time.Now())
	failed.Add(Outcome{RepoID: "a", State: StateFailed, Err: errors.New("boom")})
	failed.Add(Outcome{RepoID: "b", State: StateCancelled})
	if code := failed.ExitCode(); code != 1 {
		t.Errorf("ExitCode() = %d, want 1 when any repo failed", code)
	}
	if len(failed.Failures()) != 1 {
		t.Errorf("len(Failures()) = %d, want 1", len(failed.Failures()))
	}
}

func TestJSONIncludesErrorString(t *testing.T) {
	r := New("bump", time.Now())
	r.Add(Outcome{RepoID: "core", State: StateFailed, Err: errors.New("hook failed")})
	r.Finish(time.Now())

	raw, err := r.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded struct {
		Outcomes []struct {
			RepoID string `json:"repo"`
			Error  string `json:"error"`
		} `json:"outcomes"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(decoded.Outcomes) != 1 || decoded.Outcomes[0].Error != "hook failed" {
		t.Errorf("decoded outcomes = %+v, want one outcome with error %q", decoded.Outcomes, "hook failed")
	}
}

func TestHumanStringListsEveryRepo(t *testing.T) {
	r := New("sync", time.Now())
	r.Add(Outcome{RepoID: "core", State: StateSucceeded, Duration: 2 * time.Second})
	r.Finish(time.Now())

	out := r.HumanString()
	if !strings.Contains(out, "core") {
		t.Errorf("HumanString() = %q, want it to mention repo core", out)
	}
	if !strings.Contains(out, "1 repo(s)") {
		t.Errorf("HumanString() = %q, want a 1 repo(s) summary line", out)
	}
}
