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
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpetrucciani/harmonia/internal/graph"
	"github.com/jpetrucciani/harmonia/internal/report"
)

// Task runs one repo's share of an operation and returns its outcome.
// Implementations cooperate with ctx cancellation: on fail_fast or a
// signal, the scheduler cancels ctx and expects in-flight subprocesses to
// be interrupted promptly.
type Task func(ctx context.Context, repoID string) report.Outcome

// Options configures one Run call.
type Options struct {
	// Operation names the OperationReport (e.g. "sync", "bump").
	Operation string
	// Parallel bounds concurrent tasks within a wave. Zero defaults to
	// runtime.NumCPU(), except GraphOrder operations which default to 1
	// per spec.md §5 unless the caller sets Parallel explicitly.
	Parallel int
	// GraphOrder requires the selection be partitioned into dependency
	// waves rather than run as a single wave.
	GraphOrder bool
	// FailFast cancels pending and running tasks on the first failure and
	// marks every not-yet-started repo Cancelled.
	FailFast bool
}

// Run partitions selection into waves (per Options.GraphOrder), executes
// task for each repo with up to Options.Parallel concurrency inside a
// wave, and waits between waves. It returns a sorted, finished
// OperationReport; only a pre-execution error (e.g. CyclicDependenciesError
// when GraphOrder is required) is returned as an error.
func Run(ctx context.Context, g *graph.Graph, selection []string, opts Options, task Task) (*report.OperationReport, error) {
	started := time.Now()
	rep := report.New(opts.Operation, started)

	waves, err := waveList(g, selection, opts.GraphOrder)
	if err != nil {
		return nil, err
	}

	parallel := opts.Parallel
	if parallel <= 0 {
		if opts.GraphOrder {
			parallel = 1
		} else {
			parallel = runtime.NumCPU()
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	aborted := false
	var mu sync.Mutex

	for waveIdx, wave := range waves {
		if aborted || runCtx.Err() != nil {
			for _, id := range wave {
				rep.Add(report.Outcome{RepoID: id, Wave: waveIdx, State: report.StateCancelled})
			}
			continue
		}

		group, gctx := errgroup.WithContext(runCtx)
		group.SetLimit(parallel)

		for _, id := range wave {
			id := id
			group.Go(func() error {
				if gctx.Err() != nil {
					mu.Lock()
					rep.Add(report.Outcome{RepoID: id, Wave: waveIdx, State: report.StateCancelled})
					mu.Unlock()
					return nil
				}
				start := time.Now()
				outcome := task(gctx, id)
				outcome.Wave = waveIdx
				outcome.Duration = time.Since(start)

				mu.Lock()
				rep.Add(outcome)
				mu.Unlock()

				if outcome.State == report.StateFailed && opts.FailFast {
					return fmt.Errorf("repo %s failed fast: %w", id, outcome.Err)
				}
				return nil
			})
		}

		if waitErr := group.Wait(); waitErr != nil && opts.FailFast {
			aborted = true
			cancel()
		}
	}

	rep.Sort()
	rep.Finish(time.Now())
	return rep, nil
}

func waveList(g *graph.Graph, selection []string, graphOrder bool) ([][]string, error) {
	if !graphOrder {
		return [][]string{selection}, nil
	}
	return g.LayersOver(selection)
}
