package actions

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/utkarsh5026/gitgo/pkg/artifacts"
	"github.com/utkarsh5026/gitgo/pkg/common/err"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/gitexec"
	"github.com/utkarsh5026/gitgo/pkg/refs/branch"
)

// DefaultMaxCount is the number of commits getCommits returns when the
// message does not say.
const DefaultMaxCount = 50

type handlerFunc func(ctx context.Context, msg Message) (Response, error)

// Dispatcher runs host messages against one repository.
type Dispatcher struct {
	runner    gitexec.Runner
	dir       string
	branches  *branch.Manager
	artifacts *artifacts.Writer
	log       *slog.Logger
	handlers  map[string]handlerFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithArtifacts writes branch and commit listings through w.
func WithArtifacts(w *artifacts.Writer) Option {
	return func(d *Dispatcher) {
		d.artifacts = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// NewDispatcher creates a dispatcher for the repository at dir.
func NewDispatcher(runner gitexec.Runner, dir string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner:   runner,
		dir:      dir,
		branches: branch.NewManager(runner, dir),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = logger.OrDefault(d.log)

	d.handlers = map[string]handlerFunc{
		OpGetGitUserAndEmail: d.getGitUserAndEmail,
		OpSetGitUserAndEmail: d.setGitUserAndEmail,
		OpInitRepo:           d.initRepo,
		OpCloneRepo:          d.cloneRepo,
		OpStage:              d.stage,
		OpUnstage:            d.unstage,
		OpDiscard:            d.discard,
		OpCommit:             d.commit,
		OpBranch:             d.branch,
		OpCheckout:           d.checkout,
		OpMerge:              d.merge,
		OpGetLocalBranches:   d.getLocalBranches,
		OpGetRemoteBranches:  d.getRemoteBranches,
		OpGetRemote:          d.getRemote,
		OpSetRemote:          d.setRemote,
		OpFetch:              d.fetch,
		OpPush:               d.push,
		OpPull:               d.pull,
		OpRebase:             d.rebase,
		OpReset:              d.reset,
		OpStash:              d.simple("stash"),
		OpListStash:          d.listStash,
		OpPopStash:           d.simple("stash", "pop"),
		OpDropStash:          d.simple("stash", "drop"),
		OpGetCommits:         d.getCommits,
		OpGetStagedFiles:     d.getStagedFiles,
		OpGetChangedFiles:    d.getChangedFiles,
	}
	return d
}

// Operations returns every accepted message type, sorted.
func (d *Dispatcher) Operations() []string {
	ops := make([]string, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Dispatch runs msg. Messages missing a required field are ignored and
// answer with an empty Response.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (Response, error) {
	h, ok := d.handlers[msg.Type]
	if !ok {
		return Response{}, NewUnknownActionError(msg.Type)
	}
	d.log.Debug("dispatch", "type", msg.Type)
	return h(ctx, msg)
}

// Handle decodes a JSON message, runs it and turns any failure into an
// error response.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) Response {
	msg, e := DecodeMessage(data)
	if e != nil {
		return ErrorResponse(e)
	}
	resp, e := d.Dispatch(ctx, msg)
	if e != nil {
		d.log.Warn("action failed", append([]any{"type", msg.Type}, failureAttrs(e)...)...)
		return ErrorResponse(e)
	}
	return resp
}

// failureAttrs lists where e came from as log attributes.
func failureAttrs(e error) []any {
	attrs := []any{"error", e}
	if pkg := err.GetPackage(e); pkg != "" {
		attrs = append(attrs, "package", pkg, "op", err.GetOp(e), "code", err.GetCode(e))
	}
	for cur := e; cur != nil; cur = errors.Unwrap(cur) {
		if base, ok := cur.(*err.Error); ok {
			if code := base.GetContext("exit_code"); code != nil {
				attrs = append(attrs, "exit_code", code)
				break
			}
		}
	}
	return attrs
}

func (d *Dispatcher) git(ctx context.Context, args ...string) error {
	_, e := d.runner.Output(ctx, d.dir, args...)
	return e
}

func (d *Dispatcher) lines(ctx context.Context, args ...string) ([]string, error) {
	lines, e := gitexec.Lines(ctx, d.runner, d.dir, args...)
	if e != nil {
		return nil, e
	}
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

// configValue reads one git config key. git exits with status 1 when the
// key is unset.
func (d *Dispatcher) configValue(ctx context.Context, args ...string) (string, bool, error) {
	lines, e := d.lines(ctx, append([]string{"config"}, args...)...)
	if e != nil {
		var exitErr *gitexec.ExitError
		if errors.As(e, &exitErr) && exitErr.ExitCode == 1 {
			return "", false, nil
		}
		return "", false, e
	}
	if len(lines) == 0 {
		return "", false, nil
	}
	return lines[0], true, nil
}

func (d *Dispatcher) simple(args ...string) handlerFunc {
	return func(ctx context.Context, _ Message) (Response, error) {
		return Response{}, d.git(ctx, args...)
	}
}

func (d *Dispatcher) getGitUserAndEmail(ctx context.Context, _ Message) (Response, error) {
	user, okUser, e := d.configValue(ctx, "--global", "user.name")
	if e != nil {
		return Response{}, e
	}
	email, okEmail, e := d.configValue(ctx, "--global", "user.email")
	if e != nil {
		return Response{}, e
	}
	if !okUser || !okEmail {
		return Response{Type: TypeUserNotConfigured}, nil
	}
	return Response{Type: TypeUserAndEmail, User: user, Email: email}, nil
}

func (d *Dispatcher) setGitUserAndEmail(ctx context.Context, msg Message) (Response, error) {
	if msg.User == "" || msg.Email == "" {
		return Response{}, nil
	}
	if e := d.git(ctx, "config", "--global", "user.name", msg.User); e != nil {
		return Response{}, err.Wrap(e, pkgName, "set user name")
	}
	if e := d.git(ctx, "config", "--global", "user.email", msg.Email); e != nil {
		return Response{}, err.Wrap(e, pkgName, "set user email")
	}
	return Response{}, nil
}

// plainArg rejects a message value git would parse as an option.
func plainArg(field, value string) error {
	if strings.HasPrefix(value, "-") {
		return NewInvalidArgumentError(field, value)
	}
	return nil
}

func (d *Dispatcher) initRepo(ctx context.Context, _ Message) (Response, error) {
	return Response{}, d.git(ctx, "init")
}

func (d *Dispatcher) cloneRepo(ctx context.Context, msg Message) (Response, error) {
	if msg.URL == "" {
		return Response{}, nil
	}
	if e := plainArg("url", msg.URL); e != nil {
		return Response{}, e
	}
	return Response{}, d.git(ctx, "clone", msg.URL)
}

// pathspec runs all when msg.All is set, or base followed by the files.
func (d *Dispatcher) pathspec(ctx context.Context, msg Message, all []string, base ...string) (Response, error) {
	if !msg.All && len(msg.Files) == 0 {
		return Response{}, nil
	}
	if msg.All {
		return Response{}, d.git(ctx, all...)
	}
	args := append(append(base, "--"), msg.Files...)
	return Response{}, d.git(ctx, args...)
}

func (d *Dispatcher) stage(ctx context.Context, msg Message) (Response, error) {
	return d.pathspec(ctx, msg, []string{"add", "-A"}, "add")
}

func (d *Dispatcher) unstage(ctx context.Context, msg Message) (Response, error) {
	return d.pathspec(ctx, msg, []string{"reset"}, "reset")
}

func (d *Dispatcher) discard(ctx context.Context, msg Message) (Response, error) {
	return d.pathspec(ctx, msg, []string{"checkout", "."}, "checkout")
}

func (d *Dispatcher) commit(ctx context.Context, msg Message) (Response, error) {
	if msg.Message == "" {
		return Response{}, nil
	}
	return Response{}, d.git(ctx, "commit", "-m", msg.Message)
}

func (d *Dispatcher) branch(ctx context.Context, msg Message) (Response, error) {
	if msg.BranchName == "" || msg.CommitHash == "" {
		return Response{}, nil
	}
	if e := plainArg("branchName", msg.BranchName); e != nil {
		return Response{}, e
	}
	if e := plainArg("commitHash", msg.CommitHash); e != nil {
		return Response{}, e
	}
	return Response{}, d.branches.Create(ctx, msg.BranchName, branch.WithStartPoint(msg.CommitHash))
}

func (d *Dispatcher) checkout(ctx context.Context, msg Message) (Response, error) {
	if msg.BranchName == "" {
		return Response{}, nil
	}
	if e := plainArg("branchName", msg.BranchName); e != nil {
		return Response{}, e
	}
	return Response{}, d.branches.Checkout(ctx, msg.BranchName)
}

func (d *Dispatcher) merge(ctx context.Context, msg Message) (Response, error) {
	if msg.CommitHash == "" {
		return Response{}, nil
	}
	if e := plainArg("commitHash", msg.CommitHash); e != nil {
		return Response{}, e
	}
	return Response{}, d.branches.Merge(ctx, msg.CommitHash)
}

func (d *Dispatcher) getLocalBranches(ctx context.Context, _ Message) (Response, error) {
	infos, e := d.branches.Local(ctx)
	if e != nil {
		return Response{}, e
	}
	d.writeArtifact(artifacts.LocalBranchesFile, infos)
	return Response{Type: TypeLocalBranches, Branches: infos}, nil
}

func (d *Dispatcher) getRemoteBranches(ctx context.Context, _ Message) (Response, error) {
	infos, e := d.branches.Remote(ctx)
	if e != nil {
		return Response{}, e
	}
	d.writeArtifact(artifacts.RemoteBranchesFile, infos)
	return Response{Type: TypeRemoteBranches, Branches: infos}, nil
}

func (d *Dispatcher) originURL(ctx context.Context) (string, bool, error) {
	return d.configValue(ctx, "--get", "remote.origin.url")
}

func (d *Dispatcher) getRemote(ctx context.Context, _ Message) (Response, error) {
	url, ok, e := d.originURL(ctx)
	if e != nil {
		return Response{}, e
	}
	if !ok {
		return Response{Type: TypeRemoteNotConfigured}, nil
	}
	return Response{Type: TypeRemote, Remote: url}, nil
}

func (d *Dispatcher) setRemote(ctx context.Context, msg Message) (Response, error) {
	if msg.URL == "" {
		return Response{}, nil
	}
	if e := plainArg("url", msg.URL); e != nil {
		return Response{}, e
	}
	return Response{}, d.git(ctx, "remote", "add", "origin", msg.URL)
}

// withRemote runs fn with the origin URL, or answers remoteNotConfigured.
func (d *Dispatcher) withRemote(ctx context.Context, fn func(url string) error) (Response, error) {
	url, ok, e := d.originURL(ctx)
	if e != nil {
		return Response{}, e
	}
	if !ok {
		return Response{Type: TypeRemoteNotConfigured}, nil
	}
	return Response{}, fn(url)
}

func (d *Dispatcher) fetch(ctx context.Context, _ Message) (Response, error) {
	return d.withRemote(ctx, func(url string) error {
		return d.git(ctx, "fetch", url)
	})
}

func (d *Dispatcher) push(ctx context.Context, msg Message) (Response, error) {
	if msg.BranchName == "" {
		return Response{}, nil
	}
	if e := plainArg("branchName", msg.BranchName); e != nil {
		return Response{}, e
	}
	return d.withRemote(ctx, func(url string) error {
		return d.git(ctx, "push", url, msg.BranchName)
	})
}

func (d *Dispatcher) pull(ctx context.Context, _ Message) (Response, error) {
	return d.withRemote(ctx, func(string) error {
		return d.git(ctx, "pull")
	})
}

func (d *Dispatcher) rebase(ctx context.Context, msg Message) (Response, error) {
	if msg.BranchName == "" {
		return Response{}, nil
	}
	if e := plainArg("branchName", msg.BranchName); e != nil {
		return Response{}, e
	}
	return Response{}, d.git(ctx, "rebase", msg.BranchName)
}

func (d *Dispatcher) reset(ctx context.Context, msg Message) (Response, error) {
	if msg.Hash == "" {
		return Response{}, nil
	}
	if e := plainArg("hash", msg.Hash); e != nil {
		return Response{}, e
	}
	return Response{}, d.git(ctx, "reset", "--hard", msg.Hash)
}

func (d *Dispatcher) listStash(ctx context.Context, _ Message) (Response, error) {
	stashes, e := d.lines(ctx, "stash", "list")
	if e != nil {
		return Response{}, e
	}
	return Response{Type: TypeStashList, Stashes: stashes}, nil
}

// getCommits lists commits across all refs. With lastFetchTime only
// commits since then are returned; otherwise up to maxCount, optionally
// starting at hash.
func (d *Dispatcher) getCommits(ctx context.Context, msg Message) (Response, error) {
	if e := plainArg("hash", msg.Hash); e != nil {
		return Response{}, e
	}

	maxCount := msg.MaxCount
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}

	args := []string{"log", "--all", logFormat}
	switch {
	case msg.LastFetchTime != "":
		args = append(args, "--since="+msg.LastFetchTime)
	default:
		args = append(args, "--max-count="+strconv.Itoa(maxCount))
		if msg.Hash != "" {
			args = append(args, msg.Hash)
		}
	}

	out, e := d.runner.Output(ctx, d.dir, args...)
	if e != nil {
		return Response{}, e
	}
	entries := ParseLog(string(out))

	if msg.LastFetchTime == "" && msg.Hash == "" {
		d.writeArtifact(artifacts.CommitsFile, entries)
	}
	return Response{Type: TypeCommits, Commits: entries}, nil
}

func (d *Dispatcher) getStagedFiles(ctx context.Context, _ Message) (Response, error) {
	files, e := d.lines(ctx, "diff", "--name-only", "--staged")
	if e != nil || len(files) == 0 {
		return Response{}, e
	}
	return Response{Type: TypeStagedFiles, StagedFiles: files}, nil
}

func (d *Dispatcher) getChangedFiles(ctx context.Context, _ Message) (Response, error) {
	files, e := d.lines(ctx, "diff", "--name-only")
	if e != nil || len(files) == 0 {
		return Response{}, e
	}
	return Response{Type: TypeChangedFiles, ChangedFiles: files}, nil
}

func (d *Dispatcher) writeArtifact(name string, v any) {
	if e := d.artifacts.WriteJSON(name, v); e != nil {
		d.log.Warn("artifact not written", "name", name, "error", e)
	}
}
