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

package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jpetrucciani/harmonia/internal/graph"
	"github.com/jpetrucciani/harmonia/internal/report"
)

func TestRunSingleWaveForNonGraphOrderOperation(t *testing.T) {
	ws := diamondWorkspace()
	g, _ := graph.Build(ws, nil)
	selection := []string{"core", "a", "b", "app"}

	var mu sync.Mutex
	var seen []string
	task := func(ctx context.Context, id string) report.Outcome {
		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()
		return report.Outcome{RepoID: id, State: report.StateSucceeded}
	}

	rep, err := Run(context.Background(), g, selection, Options{Operation: "sync", Parallel: 4}, task)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.Outcomes) != 4 {
		t.Fatalf("len(Outcomes) = %d, want 4", len(rep.Outcomes))
	}
	for _, o := range rep.Outcomes {
		if o.Wave != 0 {
			t.Errorf("outcome %s wave = %d, want 0 for a non-graph-order run", o.RepoID, o.Wave)
		}
	}
}

func TestRunGraphOrderPartitionsIntoWaves(t *testing.T) {
	ws := diamondWorkspace()
	g, _ := graph.Build(ws, nil)
	selection := []string{"core", "a", "b", "app"}

	task := func(ctx context.Context, id string) report.Outcome {
		return report.Outcome{RepoID: id, State: report.StateSucceeded}
	}

	rep, err := Run(context.Background(), g, selection, Options{Operation: "bump", GraphOrder: true}, task)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	waveOf := make(map[string]int, len(rep.Outcomes))
	for _, o := range rep.Outcomes {
		waveOf[o.RepoID] = o.Wave
	}
	if waveOf["core"] != 0 {
		t.Errorf("core wave = %d, want 0", waveOf["core"])
	}
	if waveOf["app"] <= waveOf["a"] || waveOf["app"] <= waveOf["b"] {
		t.Errorf("app wave (%d) must come after a (%d) and b (%d)", waveOf["app"], waveOf["a"], waveOf["b"])
	}
}

func TestRunFailFastCancelsLaterWaves(t *testing.T) {
	ws := diamondWorkspace()
	g, _ := graph.Build(ws, nil)
	selection := []string{"core", "a", "b", "app"}

	var started int32
	task := func(ctx context.Context, id string) report.Outcome {
		if id == "core" {
			return report.Outcome{RepoID: id, State: report.StateFailed}
		}
		atomic.AddInt32(&started, 1)
		return report.Outcome{RepoID: id, State: report.StateSucceeded}
	}

	rep, err := Run(context.Background(), g, selection, Options{Operation: "bump", GraphOrder: true, FailFast: true}, task)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if atomic.LoadInt32(&started) != 0 {
		t.Errorf("started = %d, want 0: no repo past the failing wave should run", started)
	}

	cancelledCount := 0
	for _, o := range rep.Outcomes {
		if o.State == report.StateCancelled {
			cancelledCount++
		}
	}
	if cancelledCount != 3 {
		t.Errorf("cancelled outcomes = %d, want 3 (a, b, app)", cancelledCount)
	}
	if rep.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", rep.ExitCode())
	}
}

func TestRunWithoutFailFastContinuesDespiteFailure(t *testing.T) {
	ws := diamondWorkspace()
	g, _ := graph.Build(ws, nil)
	selection := []string{"core", "a", "b", "app"}

	task := func(ctx context.Context, id string) report.Outcome {
		if id == "core" {
			return report.Outcome{RepoID: id, State: report.StateFailed}
		}
		return report.Outcome{RepoID: id, State: report.StateSucceeded}
	}

	rep, err := Run(context.Background(), g, selection, Options{Operation: "bump", GraphOrder: true}, task)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.Outcomes) != 4 {
		t.Fatalf("len(Outcomes) = %d, want 4 (every repo still ran)", len(rep.Outcomes))
	}
	if rep.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", rep.ExitCode())
	}
}

func TestRunReportsSortedByRepoID(t *testing.T) {
	ws := diamondWorkspace()
	g, _ := graph.Build(ws, nil)
	selection := []string{"app", "core", "b", "a"}

	task := func(ctx context.Context, id string) report.Outcome {
		return report.Outcome{RepoID: id, State: report.StateSucceeded}
	}

	rep, err := Run(context.Background(), g, selection, Options{Operation: "sync"}, task)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i := 1; i < len(rep.Outcomes); i++ {
		if rep.Outcomes[i-1].RepoID > rep.Outcomes[i].RepoID {
			t.Fatalf("Outcomes not sorted: %v", rep.Outcomes)
		}
	}
}
