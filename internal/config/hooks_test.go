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

package config

import "testing"

func TestMergeHookNamesRespectsDisabled(t *testing.T) {
	workspace := map[string]customHook{
		"format": {Command: "gofmt"},
		"lint":   {Command: "golangci-lint"},
	}
	repo := map[string]customHook{
		"lint":     {Command: "ruff"},
		"generate": {Command: "make gen"},
	}

	got := mergeHookNames(workspace, repo, []string{"format"})

	want := map[string]bool{"lint": true, "generate": true}
	if len(got) != len(want) {
		t.Fatalf("mergeHookNames() = %v, want keys %v", got, want)
	}
	for _, name := range got {
		if !want[name] {
			t.Errorf("unexpected hook name %q in result", name)
		}
	}
	for name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("expected hook name %q missing from result", name)
		}
	}
}

func TestMergeHookNamesNoDisabled(t *testing.T) {
	workspace := map[string]customHook{"a": {}}
	repo := map[string]customHook{"b": {}}

	got := mergeHookNames(workspace, repo, nil)
	if len(got) != 2 {
		t.Fatalf("mergeHookNames() = %v, want 2 entries", got)
	}
}

func TestResolveCustomHookLiteralArgs(t *testing.T) {
	h := customHook{Command: "echo", Args: []string{"hello"}}
	got, err := resolveCustomHook(h, hookVars{RepoID: "core"})
	if err != nil {
		t.Fatalf("resolveCustomHook() error = %v", err)
	}
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("resolveCustomHook() = %v, want [hello]", got)
	}
}

func TestResolveCustomHookArgsExpr(t *testing.T) {
	h := customHook{Command: "lint", ArgsExpr: `concat(["--scope"], [repo_package])`}
	got, err := resolveCustomHook(h, hookVars{RepoID: "core", PackageName: "acme-core"})
	if err != nil {
		t.Fatalf("resolveCustomHook() error = %v", err)
	}
	want := []string{"--scope", "acme-core"}
	if len(got) != len(want) {
		t.Fatalf("resolveCustomHook() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resolveCustomHook()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEvalArgsExprRejectsNonStringElements(t *testing.T) {
	_, err := evalArgsExpr(`[1, 2]`, hookVars{})
	if err == nil {
		t.Fatal("evalArgsExpr() error = nil, want error for non-string elements")
	}
}

func TestEvalArgsExprRejectsBadSyntax(t *testing.T) {
	_, err := evalArgsExpr(`concat(`, hookVars{})
	if err == nil {
		t.Fatal("evalArgsExpr() error = nil, want parse error")
	}
}

func TestRepoEffectiveCustomHooks(t *testing.T) {
	workspace := map[string]CustomHookSpec{
		"format": {Command: "gofmt", Args: []string{"-l"}},
		"lint":   {Command: "lint-base"},
	}
	r := &Repo{
		ID:          "core",
		PackageName: "acme-core",
		Hooks: HookSet{
			Custom:                map[string]CustomHookSpec{"lint": {Command: "ruff", ArgsExpr: `[repo_package]`}},
			DisableWorkspaceHooks: []string{"format"},
		},
	}

	hooks, err := r.EffectiveCustomHooks(workspace)
	if err != nil {
		t.Fatalf("EffectiveCustomHooks() error = %v", err)
	}
	if len(hooks) != 1 {
		t.Fatalf("EffectiveCustomHooks() = %v, want 1 hook (format disabled)", hooks)
	}
	if hooks[0].Name != "lint" || hooks[0].Command != "ruff" {
		t.Errorf("hooks[0] = %+v, want lint/ruff", hooks[0])
	}
	if len(hooks[0].Args) != 1 || hooks[0].Args[0] != "acme-core" {
		t.Errorf("hooks[0].Args = %v, want [acme-core]", hooks[0].Args)
	}
}

func TestEvalArgsExprUsesBranchVariable(t *testing.T) {
	got, err := evalArgsExpr(`[branch]`, hookVars{Branch: "release/1.0"})
	if err != nil {
		t.Fatalf("evalArgsExpr() error = %v", err)
	}
	if len(got) != 1 || got[0] != "release/1.0" {
		t.Errorf("evalArgsExpr() = %v, want [release/1.0]", got)
	}
}
