package gitexec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/utkarsh5026/gitgo/pkg/common/err"
)

const (
	pkgName = "gitexec"
)

// Error codes for subprocess failures
const (
	CodeGitNotFound  = "GIT_NOT_FOUND"
	CodeSpawnFailed  = "SPAWN_FAILED"
	CodeStreamFailed = "STREAM_FAILED"
	CodeGitFailed    = "GIT_FAILED"
)

// GitNotFoundError indicates the git executable could not be located.
type GitNotFoundError struct {
	base   *err.Error
	Binary string
}

// NewGitNotFoundError creates a new GitNotFoundError
func NewGitNotFoundError(binary string, cause error) error {
	return &GitNotFoundError{
		base: err.New(pkgName, CodeGitNotFound, "spawn",
			fmt.Sprintf("%s not found: ensure git is installed and in PATH", binary), cause),
		Binary: binary,
	}
}

// Error implements the error interface
func (e *GitNotFoundError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *GitNotFoundError) Unwrap() error {
	return e.base
}

// SpawnError indicates the subprocess could not be started for a reason other
// than a missing binary, e.g. the working directory does not exist.
type SpawnError struct {
	base *err.Error
	Args []string
	Dir  string
}

// NewSpawnError creates a new SpawnError
func NewSpawnError(args []string, dir string, cause error) error {
	return &SpawnError{
		base: err.New(pkgName, CodeSpawnFailed, "spawn",
			fmt.Sprintf("cannot start git %s in %s", strings.Join(args, " "), dir), cause),
		Args: args,
		Dir:  dir,
	}
}

// Error implements the error interface
func (e *SpawnError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *SpawnError) Unwrap() error {
	return e.base
}

// StreamError indicates reading the subprocess output failed part way.
// Lines delivered before the failure are not returned to the caller.
type StreamError struct {
	base  *err.Error
	Args  []string
	Lines int
}

// NewStreamError creates a new StreamError
func NewStreamError(args []string, lines int, cause error) error {
	return &StreamError{
		base: err.New(pkgName, CodeStreamFailed, "read",
			fmt.Sprintf("output of git %s broke after %d lines", strings.Join(args, " "), lines), cause),
		Args:  args,
		Lines: lines,
	}
}

// Error implements the error interface
func (e *StreamError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *StreamError) Unwrap() error {
	return e.base
}

// ExitError indicates git ran but exited with a non-zero status.
type ExitError struct {
	base     *err.Error
	Args     []string
	ExitCode int
	Stderr   string
}

// NewExitError creates a new ExitError
func NewExitError(args []string, exitCode int, stderr string, cause error) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", exitCode)
	}
	return &ExitError{
		base: err.New(pkgName, CodeGitFailed, "git "+firstArg(args), msg, cause).
			WithContext("exit_code", exitCode),
		Args:     args,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// Error implements the error interface
func (e *ExitError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *ExitError) Unwrap() error {
	return e.base
}

// IsFatal reports whether err prevents any git invocation from succeeding,
// so that a batch of invocations should stop instead of skipping one object.
func IsFatal(e error) bool {
	var notFound *GitNotFoundError
	var spawn *SpawnError
	return errors.As(e, &notFound) || errors.As(e, &spawn)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
