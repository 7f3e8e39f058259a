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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGitHubForge_CreateMR(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/core/pulls" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		pr := githubPR{Number: 42, Title: "bump core", State: "open", HTMLURL: "https://github.com/acme/core/pull/42"}
		pr.Head.Ref = "bump/core"
		pr.Base.Ref = "main"
		_ = json.NewEncoder(w).Encode(pr)
	}))
	defer server.Close()

	f := &GitHubForge{client: server.Client(), baseURL: server.URL}
	mr, err := f.CreateMR(context.Background(), "acme/core", CreateMROptions{
		SourceBranch: "bump/core",
		TargetBranch: "main",
		Title:        "bump core",
	})
	if err != nil {
		t.Fatalf("CreateMR() error = %v", err)
	}
	if mr.ID != "42" || mr.State != MRStateOpen {
		t.Errorf("CreateMR() = %+v, unexpected fields", mr)
	}
}

func TestGitHubForge_GetMR_NotFoundMapsToForgeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	}))
	defer server.Close()

	f := &GitHubForge{client: server.Client(), baseURL: server.URL}
	_, err := f.GetMR(context.Background(), "acme/core", "99")

	fe, ok := err.(*Error)
	if !ok {
		t.Fatalf("GetMR() error = %v (%T), want *Error", err, err)
	}
	if fe.Kind != ErrorKindNotFound {
		t.Errorf("GetMR() error kind = %v, want NotFound", fe.Kind)
	}
	if fe.Repo != "acme/core" {
		t.Errorf("GetMR() error repo = %q, want acme/core", fe.Repo)
	}
}

func TestGitHubForge_GetCIStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := githubCombinedStatus{State: "pending"}
		status.Statuses = append(status.Statuses, struct {
			Context string `json:"context"`
			State   string `json:"state"`
		}{Context: "ci/build", State: "success"})
		_ = json.NewEncoder(w).Encode(status)
	}))
	defer server.Close()

	f := &GitHubForge{client: server.Client(), baseURL: server.URL}
	status, err := f.GetCIStatus(context.Background(), "acme/core", "deadbeef")
	if err != nil {
		t.Fatalf("GetCIStatus() error = %v", err)
	}
	if status.State != CIPending {
		t.Errorf("GetCIStatus() state = %v, want Pending", status.State)
	}
	if status.Checks["ci/build"] != CISuccess {
		t.Errorf("GetCIStatus() checks[ci/build] = %v, want Success", status.Checks["ci/build"])
	}
}

func TestGitHubForge_RateLimitedMapsToForgeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := &GitHubForge{client: server.Client(), baseURL: server.URL}
	_, err := f.GetUser(context.Background())

	fe, ok := err.(*Error)
	if !ok {
		t.Fatalf("GetUser() error = %v (%T), want *Error", err, err)
	}
	if fe.Kind != ErrorKindRateLimited {
		t.Errorf("GetUser() error kind = %v, want RateLimited", fe.Kind)
	}
}

func TestSplitOwnerRepoRejectsMissingSlash(t *testing.T) {
	if _, _, err := splitOwnerRepo("core"); err == nil {
		t.Error("splitOwnerRepo(\"core\") expected error, got nil")
	}
}
