// Package gitexec runs the git executable as a subprocess and hands its
// standard output back line by line.
//
// Every call spawns a new process. A read failure on stdout is always
// reported as a *StreamError; no call resolves with partial output.
package gitexec

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/utkarsh5026/gitgo/pkg/common/err"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

// DefaultBinary is the executable used when none is configured.
const DefaultBinary = "git"

// waitDelay bounds how long Wait blocks on output pipes after the process
// has been killed.
const waitDelay = 2 * time.Second

// LineFunc receives one line of output with the line terminator removed.
// Returning an error stops the stream and kills the subprocess.
type LineFunc func(line string) error

// Runner runs git subcommands in a working directory.
type Runner interface {
	// Stream calls fn for each stdout line as it arrives.
	Stream(ctx context.Context, dir string, args []string, fn LineFunc) error

	// Output returns the complete stdout bytes.
	Output(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner is the Runner backed by os/exec.
type ExecRunner struct {
	binary  string
	timeout time.Duration
	env     []string
	log     *slog.Logger
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithBinary sets the git executable path.
func WithBinary(path string) Option {
	return func(r *ExecRunner) {
		if path != "" {
			r.binary = path
		}
	}
}

// WithTimeout kills any subprocess that runs longer than d. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *ExecRunner) {
		r.timeout = d
	}
}

// WithEnv appends KEY=VALUE pairs to the subprocess environment.
func WithEnv(kv ...string) Option {
	return func(r *ExecRunner) {
		r.env = append(r.env, kv...)
	}
}

// WithLogger sets the logger used for per-invocation debug records.
func WithLogger(l *slog.Logger) Option {
	return func(r *ExecRunner) {
		r.log = l
	}
}

// New creates an ExecRunner.
func New(opts ...Option) *ExecRunner {
	r := &ExecRunner{binary: DefaultBinary}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.OrDefault(r.log)
	return r
}

// Binary returns the configured git executable.
func (r *ExecRunner) Binary() string {
	return r.binary
}

// Stream implements Runner.
func (r *ExecRunner) Stream(ctx context.Context, dir string, args []string, fn LineFunc) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	cmd := r.command(ctx, dir, args)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, pipeErr := cmd.StdoutPipe()
	if pipeErr != nil {
		return NewSpawnError(args, dir, pipeErr)
	}

	if startErr := cmd.Start(); startErr != nil {
		return r.startError(args, dir, startErr)
	}

	lines, readErr, fnErr := readLines(stdout, fn)
	if readErr != nil || fnErr != nil {
		cancel()
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	r.log.Debug("git",
		"args", args,
		"dir", dir,
		"lines", lines,
		"duration", time.Since(start),
	)

	switch {
	case fnErr != nil:
		return fnErr
	case readErr != nil:
		return NewStreamError(args, lines, readErr)
	case waitErr != nil && ctx.Err() != nil:
		return r.contextError(ctx, args)
	}
	return r.waitError(args, waitErr, stderr.String())
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, dir string, args ...string) ([]byte, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	cmd := r.command(ctx, dir, args)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if startErr := cmd.Start(); startErr != nil {
		return nil, r.startError(args, dir, startErr)
	}
	waitErr := cmd.Wait()

	r.log.Debug("git",
		"args", args,
		"dir", dir,
		"bytes", stdout.Len(),
		"duration", time.Since(start),
	)

	if waitErr != nil && ctx.Err() != nil {
		return nil, r.contextError(ctx, args)
	}
	if e := r.waitError(args, waitErr, stderr.String()); e != nil {
		return nil, e
	}
	return stdout.Bytes(), nil
}

func (r *ExecRunner) command(ctx context.Context, dir string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	return cmd
}

func (r *ExecRunner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

func (r *ExecRunner) startError(args []string, dir string, cause error) error {
	var execErr *exec.Error
	if errors.Is(cause, exec.ErrNotFound) || errors.As(cause, &execErr) {
		return NewGitNotFoundError(r.binary, cause)
	}
	return NewSpawnError(args, dir, cause)
}

func (r *ExecRunner) contextError(ctx context.Context, args []string) error {
	code := err.CodeCanceled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code = err.CodeTimeout
	}
	return err.WrapWithCode(ctx.Err(), pkgName, code, "git "+firstArg(args))
}

func (r *ExecRunner) waitError(args []string, waitErr error, stderr string) error {
	if waitErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return NewExitError(args, exitErr.ExitCode(), stderr, waitErr)
	}
	return NewStreamError(args, 0, waitErr)
}

// readLines reads src until EOF, handing each line to fn. A final line
// without a terminator is still delivered. Lines have no length limit.
func readLines(src io.Reader, fn LineFunc) (n int, readErr, fnErr error) {
	br := bufio.NewReaderSize(src, 64*1024)
	for {
		line, e := br.ReadString('\n')
		if len(line) > 0 {
			n++
			if fnErr = fn(trimEOL(line)); fnErr != nil {
				return n, nil, fnErr
			}
		}
		if e != nil {
			if e == io.EOF {
				return n, nil, nil
			}
			return n, e, nil
		}
	}
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Lines runs a git subcommand and collects every output line.
func Lines(ctx context.Context, r Runner, dir string, args ...string) ([]string, error) {
	var lines []string
	e := r.Stream(ctx, dir, args, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	if e != nil {
		return nil, e
	}
	return lines, nil
}

// NormalizeTabs replaces tab characters with spaces.
func NormalizeTabs(line string) string {
	return strings.ReplaceAll(line, "\t", " ")
}
