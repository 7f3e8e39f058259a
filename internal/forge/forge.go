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

// Package forge defines the Forge Capability Contract (spec.md §4.G): a
// narrow interface the core depends on for merge requests, CI status, and
// issues, with pluggable implementations per forge kind. A forge that
// cannot perform a capability returns CapabilityUnsupportedError rather
// than approximating it silently.
package forge

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MRState is a merge request's position in spec.md §4.F's state machine:
// Draft -> Open -> (Merged | Closed), with Open <-> Draft allowed.
type MRState string

const (
	MRStateDraft  MRState = "draft"
	MRStateOpen   MRState = "open"
	MRStateMerged MRState = "merged"
	MRStateClosed MRState = "closed"
)

// CIState is one MR's check-suite state: Pending -> Running -> a terminal
// state. Only Success is a green light for merge orchestration.
type CIState string

const (
	CIPending  CIState = "pending"
	CIRunning  CIState = "running"
	CISuccess  CIState = "success"
	CIFailed   CIState = "failed"
	CICanceled CIState = "canceled"
	CISkipped  CIState = "skipped"
)

// Terminal reports whether s is one of CI's terminal states.
func (s CIState) Terminal() bool {
	switch s {
	case CISuccess, CIFailed, CICanceled, CISkipped:
		return true
	default:
		return false
	}
}

// MR is one merge (pull) request as the core understands it, independent
// of which forge hosts it.
type MR struct {
	ID           string
	Repo         string
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
	State        MRState
	URL          string
}

// CreateMROptions carries createMR's inputs.
type CreateMROptions struct {
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
	Draft        bool
}

// UpdateMROptions carries updateMR's inputs; nil fields are left
// unchanged.
type UpdateMROptions struct {
	Title       *string
	Description *string
	Draft       *bool
}

// CIStatus is the aggregate and per-check CI state for one ref.
type CIStatus struct {
	Ref     string
	State   CIState
	Checks  map[string]CIState
}

// Issue is a created tracking issue.
type Issue struct {
	ID  string
	URL string
}

// CreateIssueOptions carries createIssue's inputs.
type CreateIssueOptions struct {
	Title string
	Body  string
}

// User is the identity the configured token authenticates as.
type User struct {
	ID    string
	Login string
}

// LinkRequest is one (repo, MR) pair to be cross-linked. The core calls
// LinkMRs once with every pair from a changeset and lets the adapter
// choose the best available mechanism.
type LinkRequest struct {
	Repo string
	MRID string
}

// Forge is the Forge Capability Contract (spec.md §4.G).
type Forge interface {
	CreateMR(ctx context.Context, repo string, opts CreateMROptions) (MR, error)
	GetMR(ctx context.Context, repo, id string) (MR, error)
	UpdateMR(ctx context.Context, repo, id string, opts UpdateMROptions) (MR, error)
	// LinkMRs cross-references every pair in links using whatever
	// mechanism the forge supports best: related MRs, description
	// backlinks, or an issue body. Forges lacking native related-MR
	// linking must degrade to description backlinks rather than doing
	// nothing (spec.md §9).
	LinkMRs(ctx context.Context, links []LinkRequest) error
	MergeMR(ctx context.Context, repo, id string) error
	CloseMR(ctx context.Context, repo, id string) error
	GetCIStatus(ctx context.Context, repo, ref string) (CIStatus, error)
	CreateIssue(ctx context.Context, repo string, opts CreateIssueOptions) (Issue, error)
	GetUser(ctx context.Context) (User, error)
}

// ErrorKind classifies a forge failure for the core's retry policy
// (spec.md §7: Transient may be retried with backoff up to 3 attempts,
// others fail immediately).
type ErrorKind string

const (
	ErrorKindAuth         ErrorKind = "auth"
	ErrorKindRateLimited  ErrorKind = "rate_limited"
	ErrorKindNotFound     ErrorKind = "not_found"
	ErrorKindTransient    ErrorKind = "transient"
	ErrorKindUnsupported  ErrorKind = "unsupported"
)

// Error is the spec.md §7 ForgeError variant.
type Error struct {
	Kind  ErrorKind
	Repo  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return "forge error (" + string(e.Kind) + ") for " + e.Repo + ": " + e.Cause.Error()
	}
	return "forge error (" + string(e.Kind) + ") for " + e.Repo
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether Run's caller should retry the call that
// produced e, per spec.md §7.
func (e *Error) Retryable() bool {
	return e.Kind == ErrorKindTransient
}

// CapabilityUnsupportedError is returned by a Forge implementation for an
// operation it does not support (spec.md §4.G).
type CapabilityUnsupportedError struct {
	Forge      string
	Capability string
}

func (e *CapabilityUnsupportedError) Error() string {
	return fmt.Sprintf("forge %q does not support capability %q", e.Forge, e.Capability)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]func(token, host string) Forge)
)

// Register adds a forge constructor to the compiled-in registry, keyed by
// config.ForgeConfig.Kind ("github", "gitlab", ...). Mirrors the manifest
// package's ecosystem registry.
func Register(kind string, constructor func(token, host string) Forge) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[kind]; exists {
		panic("forge already registered: " + kind)
	}
	registry[kind] = constructor
}

// Get constructs the Forge registered under kind.
func Get(kind, token, host string) (Forge, error) {
	mu.RLock()
	defer mu.RUnlock()

	constructor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("forge %q not registered", kind)
	}
	return constructor(token, host), nil
}

// List returns the sorted set of registered forge kinds.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
