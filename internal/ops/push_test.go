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
	"testing"
)

func TestPushUsesCurrentBranch(t *testing.T) {
	ws, _ := chainWorkspace(t)
	v := newFakeVCS()
	v.branches[ws.Repos["core"].Path] = "feature/x"
	d := buildDeps(t, ws, v, nil)

	rep, err := d.Push(context.Background(), []string{"core"}, PushOptions{Remote: "origin"}, RunOptions{})
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if rep.Outcomes[0].State != "succeeded" {
		t.Errorf("Push() outcome = %+v, want succeeded", rep.Outcomes[0])
	}
	if len(v.pushed) != 1 || v.pushed[0] != ws.Repos["core"].Path {
		t.Errorf("pushed = %v, want exactly core's path", v.pushed)
	}
}
