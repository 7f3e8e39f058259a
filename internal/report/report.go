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

// Package report aggregates per-repo task outcomes into the OperationReport
// the scheduler emits once a command finishes, and derives the process exit
// code from it (spec.md §7: 0 iff no failures, 1 if any repo failed).
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"
)

// State is one outcome's terminal state.
type State string

const (
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateSkipped   State = "skipped"
	StateCancelled State = "cancelled"
)

// Outcome is one repo's result for one operation.
type Outcome struct {
	RepoID   string
	Wave     int
	State    State
	Stdout   string
	Stderr   string
	Err      error
	Duration time.Duration
}

// outcomeJSON is Outcome's wire shape; Err is rendered as a string since
// error does not marshal on its own.
type outcomeJSON struct {
	RepoID     string `json:"repo"`
	Wave       int    `json:"wave"`
	State      State  `json:"state"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// OperationReport is every outcome from one command invocation, plus the
// window it ran in.
type OperationReport struct {
	Operation  string
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// New starts a report for the named operation.
func New(operation string, startedAt time.Time) *OperationReport {
	return &OperationReport{Operation: operation, StartedAt: startedAt}
}

// Add appends one outcome. Not safe for concurrent use; concurrent callers
// must serialize their calls (the scheduler guards Add with a mutex).
func (r *OperationReport) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Sort orders outcomes by RepoId for deterministic emission, per spec.md
// §5: "the aggregated report sorts them by RepoId before emission".
func (r *OperationReport) Sort() {
	sort.Slice(r.Outcomes, func(i, j int) bool {
		return r.Outcomes[i].RepoID < r.Outcomes[j].RepoID
	})
}

// Finish records the completion timestamp.
func (r *OperationReport) Finish(finishedAt time.Time) {
	r.FinishedAt = finishedAt
}

// Failures returns every outcome whose state is Failed.
func (r *OperationReport) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.State == StateFailed {
			out = append(out, o)
		}
	}
	return out
}

// ExitCode derives the process exit code from the report's outcomes: 0 iff
// none failed, 1 if any repo failed. Precommand rejections (ConfigError,
// UnknownRepo, UnknownGroup) never reach a report and exit 2 directly.
func (r *OperationReport) ExitCode() int {
	if len(r.Failures()) > 0 {
		return 1
	}
	return 0
}

// HumanString renders a tab-aligned summary table, one row per outcome.
func (r *OperationReport) HumanString() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "REPO\tWAVE\tSTATE\tDURATION\n")
	for _, o := range r.Outcomes {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", o.RepoID, o.Wave, o.State, o.Duration.Round(time.Millisecond))
	}
	_ = w.Flush()

	summary := fmt.Sprintf("\n%d repo(s), %d failed, %d cancelled in %s\n",
		len(r.Outcomes), len(r.Failures()), r.countState(StateCancelled), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	return buf.String() + summary
}

func (r *OperationReport) countState(s State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}

// JSON renders the report as the {operation, outcomes[]} document consumed
// by scriptable callers (`--json` flags across §4.F's commands).
func (r *OperationReport) JSON() ([]byte, error) {
	doc := struct {
		Operation  string        `json:"operation"`
		StartedAt  time.Time     `json:"started_at"`
		FinishedAt time.Time     `json:"finished_at"`
		Outcomes   []outcomeJSON `json:"outcomes"`
	}{
		Operation:  r.Operation,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	for _, o := range r.Outcomes {
		entry := outcomeJSON{
			RepoID:     o.RepoID,
			Wave:       o.Wave,
			State:      o.State,
			Stdout:     o.Stdout,
			Stderr:     o.Stderr,
			DurationMs: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			entry.Error = o.Err.Error()
		}
		doc.Outcomes = append(doc.Outcomes, entry)
	}
	return json.MarshalIndent(doc, "", "  ")
}
