// Package gitexectest provides a scripted gitexec.Runner for tests.
package gitexectest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/gitgo/pkg/gitexec"
)

// Response is what the fake returns for one argument vector.
type Response struct {
	Lines  []string
	Output []byte
	Err    error

	// Delay is slept before answering, honouring ctx.
	Delay time.Duration

	// Gate, when set, blocks the call until it is closed.
	Gate <-chan struct{}
}

// Runner answers git invocations from a table keyed by the space-joined
// argument vector. Unknown invocations fail with exit status 128.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     [][]string

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

// New creates an empty fake runner.
func New() *Runner {
	return &Runner{responses: make(map[string]Response)}
}

// On registers the response for args.
func (f *Runner) On(resp Response, args ...string) *Runner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[strings.Join(args, " ")] = resp
	return f
}

// Calls returns a copy of every argument vector received so far.
func (f *Runner) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many invocations matched the given args.
func (f *Runner) CallCount(args ...string) int {
	key := strings.Join(args, " ")
	n := 0
	for _, c := range f.Calls() {
		if strings.Join(c, " ") == key {
			n++
		}
	}
	return n
}

// MaxInFlight returns the highest number of concurrent invocations seen.
func (f *Runner) MaxInFlight() int {
	return int(f.maxInFlight.Load())
}

// Stream implements gitexec.Runner.
func (f *Runner) Stream(ctx context.Context, _ string, args []string, fn gitexec.LineFunc) error {
	resp, err := f.answer(ctx, args)
	if err != nil {
		return err
	}
	for _, line := range resp.Lines {
		if err := fn(line); err != nil {
			return err
		}
	}
	return nil
}

// Output implements gitexec.Runner.
func (f *Runner) Output(ctx context.Context, _ string, args ...string) ([]byte, error) {
	resp, err := f.answer(ctx, args)
	if err != nil {
		return nil, err
	}
	if resp.Output != nil {
		return resp.Output, nil
	}
	if len(resp.Lines) == 0 {
		return []byte{}, nil
	}
	return []byte(strings.Join(resp.Lines, "\n") + "\n"), nil
}

func (f *Runner) answer(ctx context.Context, args []string) (Response, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		max := f.maxInFlight.Load()
		if n <= max || f.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	resp, ok := f.responses[strings.Join(args, " ")]
	f.mu.Unlock()

	if !ok {
		return Response{}, gitexec.NewExitError(args, 128, "fatal: unexpected invocation", nil)
	}

	if resp.Gate != nil {
		select {
		case <-resp.Gate:
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}

	if resp.Delay > 0 {
		t := time.NewTimer(resp.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}

	return resp, resp.Err
}
