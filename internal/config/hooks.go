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

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ComposedHook is one resolved hook invocation: the command and its final
// argument list, with the workspace/repo origin recorded for diagnostics.
type ComposedHook struct {
	Name    string
	Command string
	Args    []string
	Scope   string // "workspace" | "repo"
}

// mergeHookNames returns the sorted custom hook names for a repo: every
// workspace name the repo does not list in disable_workspace_hooks, plus
// every name in the repo's own table. A name present in both tables is
// listed once, and EffectiveCustomHooks then runs only the repo's entry for
// it; the workspace entry of that name does not run.
func mergeHookNames(workspace, repo map[string]customHook, disabled []string) []string {
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(workspace)+len(repo))
	for name := range workspace {
		if skip[name] {
			continue
		}
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	for name := range repo {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	sortStrings(names)
	return names
}

// hookVars are the variables available to an args_expr HCL expression.
type hookVars struct {
	RepoID      string
	PackageName string
	Branch      string
}

// evalArgsExpr evaluates a hook's args_expr (an HCL expression, e.g.
// `concat(["--scope"], [repo_package])`) against the current hook
// invocation context. Plain []string Args bypass this entirely; args_expr
// exists for hooks whose argument list must vary per repo in a way a
// literal TOML list can't express.
func evalArgsExpr(expr string, vars hookVars) ([]string, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(expr), "args_expr", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse args_expr: %w", diags)
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"repo_id":      cty.StringVal(vars.RepoID),
			"repo_package": cty.StringVal(vars.PackageName),
			"branch":       cty.StringVal(vars.Branch),
		},
		Functions: map[string]function.Function{
			"concat": stdlib.ConcatFunc,
		},
	}

	val, diags := parsed.Value(ctx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("eval args_expr: %w", diags)
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("args_expr must evaluate to a list of strings")
	}

	var out []string
	it := val.ElementIterator()
	for it.Next() {
		_, elem := it.Element()
		if elem.Type() != cty.String {
			return nil, fmt.Errorf("args_expr element is not a string")
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}

// resolveCustomHook turns a customHook config entry into its final
// argument list, using ArgsExpr when set and falling back to the literal
// Args otherwise.
func resolveCustomHook(h customHook, vars hookVars) ([]string, error) {
	if h.ArgsExpr != "" {
		return evalArgsExpr(h.ArgsExpr, vars)
	}
	return h.Args, nil
}

// EffectiveCustomHooks composes a repo's final custom hook invocations: the
// workspace's [hooks.custom] table overlaid with the repo's own, minus any
// name the repo disables, with each entry's arguments resolved against the
// repo's identity.
func (r *Repo) EffectiveCustomHooks(workspace map[string]CustomHookSpec) ([]ComposedHook, error) {
	workspaceRaw := toCustomHookMap(workspace)
	repoRaw := toCustomHookMap(r.Hooks.Custom)
	names := mergeHookNames(workspaceRaw, repoRaw, r.Hooks.DisableWorkspaceHooks)

	vars := hookVars{RepoID: r.ID, PackageName: r.EffectivePackageName()}

	hooks := make([]ComposedHook, 0, len(names))
	for _, name := range names {
		spec, scope := repoRaw[name], "repo"
		if _, ok := repoRaw[name]; !ok {
			spec, scope = workspaceRaw[name], "workspace"
		}
		args, err := resolveCustomHook(spec, vars)
		if err != nil {
			return nil, fmt.Errorf("hook %q: %w", name, err)
		}
		hooks = append(hooks, ComposedHook{Name: name, Command: spec.Command, Args: args, Scope: scope})
	}
	return hooks, nil
}

func toCustomHookMap(specs map[string]CustomHookSpec) map[string]customHook {
	out := make(map[string]customHook, len(specs))
	for name, s := range specs {
		out[name] = customHook{Command: s.Command, Args: s.Args, ArgsExpr: s.ArgsExpr}
	}
	return out
}
