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
	"time"

	"github.com/jpetrucciani/harmonia/internal/report"
	"github.com/jpetrucciani/harmonia/internal/vcs"
)

// Branch creates (or checks out, if it already exists locally) name across
// every selected repo's working tree.
func (d *Deps) Branch(ctx context.Context, selection []string, name string, runOpts RunOptions) (*report.OperationReport, error) {
	task := func(taskCtx context.Context, id string) report.Outcome {
		start := now(d)
		r, err := d.repo(id)
		if err != nil {
			return report.Outcome{RepoID: id, State: report.StateFailed, Err: err, Duration: time.Since(start)}
		}

		res, err := d.VCS.CreateBranch(taskCtx, r.Path, name)
		if err != nil {
			if checkoutRes, checkoutErr := d.VCS.Checkout(taskCtx, r.Path, name); checkoutErr == nil {
				return outcome(id, start, checkoutRes, nil)
			}
			return outcome(id, start, res, &vcs.Error{Repo: id, Op: "create-branch", Stderr: res.Stderr})
		}
		return outcome(id, start, res, nil)
	}

	return d.run(ctx, selection, "branch", runOpts, task)
}
