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

func TestRepoEffectivePackageName(t *testing.T) {
	tests := []struct {
		name string
		repo Repo
		want string
	}{
		{name: "explicit package name", repo: Repo{ID: "core", PackageName: "acme-core"}, want: "acme-core"},
		{name: "falls back to id", repo: Repo{ID: "core"}, want: "core"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.repo.EffectivePackageName(); got != tt.want {
				t.Errorf("EffectivePackageName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkspaceSortedRepoIDs(t *testing.T) {
	ws := &Workspace{Repos: map[string]*Repo{
		"cli":  {ID: "cli"},
		"core": {ID: "core"},
		"api":  {ID: "api"},
	}}
	got := ws.SortedRepoIDs()
	want := []string{"api", "cli", "core"}
	if len(got) != len(want) {
		t.Fatalf("len(SortedRepoIDs()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortedRepoIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConfigErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "ConfigError",
			err:  &ConfigError{Field: "defaults.clone_protocol", Location: "workspace config", Reason: "must be ssh or https"},
			want: `config error at workspace config (defaults.clone_protocol): must be ssh or https`,
		},
		{
			name: "UnknownRepoError",
			err:  &UnknownRepoError{Name: "ghost", From: "groups.all"},
			want: `unknown repo "ghost" referenced from groups.all`,
		},
		{
			name: "UnknownGroupError",
			err:  &UnknownGroupError{Name: "bogus"},
			want: `unknown group "bogus"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
