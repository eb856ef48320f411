// Package branch lists and manipulates branches through the git executable.
package branch

import (
	"context"
	"errors"
	"strings"

	"github.com/utkarsh5026/gitgo/pkg/gitexec"
)

// Manager runs branch operations in one working directory.
//
// Every method spawns git; nothing is cached. Failures git reports on
// stderr are mapped to the typed errors of this package where one exists,
// and returned as *gitexec.ExitError otherwise.
type Manager struct {
	runner gitexec.Runner
	dir    string
}

// NewManager creates a Manager for the repository at dir.
func NewManager(runner gitexec.Runner, dir string) *Manager {
	return &Manager{runner: runner, dir: dir}
}

// Local returns the local branches.
func (m *Manager) Local(ctx context.Context) ([]Info, error) {
	lines, e := gitexec.Lines(ctx, m.runner, m.dir, "branch", "--list", "-v")
	if e != nil {
		return nil, e
	}
	return ParseBranchOutput(lines, false), nil
}

// Remote returns the remote-tracking branches.
func (m *Manager) Remote(ctx context.Context) ([]Info, error) {
	lines, e := gitexec.Lines(ctx, m.runner, m.dir, "branch", "--list", "-v", "-r")
	if e != nil {
		return nil, e
	}
	return ParseBranchOutput(lines, true), nil
}

// Current returns the checked out branch name.
// A detached HEAD yields a *DetachedHeadError.
func (m *Manager) Current(ctx context.Context) (string, error) {
	lines, e := gitexec.Lines(ctx, m.runner, m.dir, "symbolic-ref", "--short", "-q", "HEAD")
	if e != nil {
		var exitErr *gitexec.ExitError
		if errors.As(e, &exitErr) && exitErr.ExitCode == 1 {
			sha, _ := m.head(ctx)
			return "", NewDetachedHeadError(sha)
		}
		return "", e
	}
	if len(lines) == 0 {
		return "", NewDetachedHeadError("")
	}
	return strings.TrimSpace(lines[0]), nil
}

func (m *Manager) head(ctx context.Context) (string, error) {
	lines, e := gitexec.Lines(ctx, m.runner, m.dir, "rev-parse", "--short", "HEAD")
	if e != nil || len(lines) == 0 {
		return "", e
	}
	return lines[0], nil
}

// Create creates a branch, optionally at a start point and checked out.
func (m *Manager) Create(ctx context.Context, name string, opts ...CreateOption) error {
	if e := ValidateName(name); e != nil {
		return e
	}

	var cfg CreateConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	args := []string{"branch"}
	if cfg.Force {
		args = append(args, "--force")
	}
	args = append(args, name)
	if cfg.StartPoint != "" {
		args = append(args, cfg.StartPoint)
	}

	if e := m.run(ctx, args...); e != nil {
		return mapCreateError(name, e)
	}

	if cfg.Checkout {
		return m.Checkout(ctx, name)
	}
	return nil
}

// Checkout switches to the branch or commit named by target.
func (m *Manager) Checkout(ctx context.Context, target string) error {
	if strings.TrimSpace(target) == "" {
		return NewInvalidNameError(target, "checkout target cannot be empty")
	}
	if e := m.run(ctx, "checkout", target); e != nil {
		if stderrContains(e, "did not match any") {
			return NewNotFoundError(target)
		}
		return e
	}
	return nil
}

// Merge merges target into the current branch, fast-forwarding when
// possible and otherwise creating a merge commit.
func (m *Manager) Merge(ctx context.Context, target string) error {
	return m.run(ctx, "merge", "--commit", "--ff", target)
}

// Delete removes a local branch.
func (m *Manager) Delete(ctx context.Context, name string, opts ...DeleteOption) error {
	if e := ValidateName(name); e != nil {
		return e
	}

	var cfg DeleteConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	flag := "-d"
	if cfg.Force {
		flag = "-D"
	}

	e := m.run(ctx, "branch", flag, name)
	switch {
	case e == nil:
		return nil
	case stderrContains(e, "not fully merged"):
		return NewNotMergedError(name)
	case stderrContains(e, "checked out"), stderrContains(e, "used by worktree"),
		stderrContains(e, "Cannot delete"), stderrContains(e, "cannot delete"):
		return NewIsCurrentError(name)
	case stderrContains(e, "not found"):
		return NewNotFoundError(name)
	}
	return e
}

// Rename renames a local branch.
func (m *Manager) Rename(ctx context.Context, oldName, newName string) error {
	if e := ValidateName(newName); e != nil {
		return e
	}
	if e := m.run(ctx, "branch", "-m", oldName, newName); e != nil {
		return mapCreateError(newName, e)
	}
	return nil
}

func (m *Manager) run(ctx context.Context, args ...string) error {
	_, e := m.runner.Output(ctx, m.dir, args...)
	return e
}

func mapCreateError(name string, e error) error {
	switch {
	case stderrContains(e, "already exists"):
		return NewAlreadyExistsError(name)
	case stderrContains(e, "not a valid branch name"):
		return NewInvalidNameError(name, "rejected by git")
	}
	return e
}

func stderrContains(e error, s string) bool {
	var exitErr *gitexec.ExitError
	return errors.As(e, &exitErr) && strings.Contains(exitErr.Stderr, s)
}
