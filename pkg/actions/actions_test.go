package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/gitgo/pkg/artifacts"
	"github.com/utkarsh5026/gitgo/pkg/common/err"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/gitexec"
	"github.com/utkarsh5026/gitgo/pkg/gitexec/gitexectest"
)

func newDispatcher(runner gitexec.Runner, opts ...Option) *Dispatcher {
	return NewDispatcher(runner, "/repo", append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func TestDispatch_UnknownType(t *testing.T) {
	d := newDispatcher(gitexectest.New())

	_, e := d.Dispatch(context.Background(), Message{Type: "rebsae"})
	var unknown *UnknownActionError
	require.ErrorAs(t, e, &unknown)
	assert.Equal(t, "rebsae", unknown.Type)
	assert.True(t, err.IsCode(e, CodeUnknownAction))
}

func TestDispatch_CoversEveryOperation(t *testing.T) {
	d := newDispatcher(gitexectest.New())
	assert.Len(t, d.Operations(), 27)
	assert.Contains(t, d.Operations(), OpGetChangedFiles)
}

func TestDispatch_MissingFieldsAreNoops(t *testing.T) {
	runner := gitexectest.New()
	d := newDispatcher(runner)

	for _, msg := range []Message{
		{Type: OpSetGitUserAndEmail, User: "only-user"},
		{Type: OpCloneRepo},
		{Type: OpStage},
		{Type: OpUnstage},
		{Type: OpDiscard},
		{Type: OpCommit},
		{Type: OpBranch, BranchName: "feature"},
		{Type: OpCheckout},
		{Type: OpMerge},
		{Type: OpSetRemote},
		{Type: OpPush},
		{Type: OpRebase},
		{Type: OpReset},
	} {
		resp, e := d.Dispatch(context.Background(), msg)
		require.NoError(t, e, msg.Type)
		assert.True(t, resp.Empty(), msg.Type)
	}
	assert.Empty(t, runner.Calls())
}

func TestDispatch_GitArguments(t *testing.T) {
	tests := []struct {
		msg  Message
		args []string
	}{
		{Message{Type: OpInitRepo}, []string{"init"}},
		{Message{Type: OpCloneRepo, URL: "https://example.com/r.git"}, []string{"clone", "https://example.com/r.git"}},
		{Message{Type: OpStage, All: true}, []string{"add", "-A"}},
		{Message{Type: OpStage, Files: []string{"a.go", "b c.go"}}, []string{"add", "--", "a.go", "b c.go"}},
		{Message{Type: OpUnstage, All: true}, []string{"reset"}},
		{Message{Type: OpUnstage, Files: []string{"a.go"}}, []string{"reset", "--", "a.go"}},
		{Message{Type: OpDiscard, All: true}, []string{"checkout", "."}},
		{Message{Type: OpDiscard, Files: []string{"a.go"}}, []string{"checkout", "--", "a.go"}},
		{Message{Type: OpCommit, Message: "fix: thing"}, []string{"commit", "-m", "fix: thing"}},
		{Message{Type: OpBranch, BranchName: "feature", CommitHash: "abc"}, []string{"branch", "feature", "abc"}},
		{Message{Type: OpCheckout, BranchName: "feature"}, []string{"checkout", "feature"}},
		{Message{Type: OpMerge, CommitHash: "abc"}, []string{"merge", "--commit", "--ff", "abc"}},
		{Message{Type: OpSetRemote, URL: "git@x:y.git"}, []string{"remote", "add", "origin", "git@x:y.git"}},
		{Message{Type: OpRebase, BranchName: "main"}, []string{"rebase", "main"}},
		{Message{Type: OpReset, Hash: "abc"}, []string{"reset", "--hard", "abc"}},
		{Message{Type: OpStash}, []string{"stash"}},
		{Message{Type: OpPopStash}, []string{"stash", "pop"}},
		{Message{Type: OpDropStash}, []string{"stash", "drop"}},
	}

	for _, tt := range tests {
		t.Run(tt.msg.Type+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			runner := gitexectest.New().On(gitexectest.Response{}, tt.args...)
			resp, e := newDispatcher(runner).Dispatch(context.Background(), tt.msg)
			require.NoError(t, e)
			assert.True(t, resp.Empty())
			assert.Equal(t, 1, runner.CallCount(tt.args...))
		})
	}
}

func TestDispatch_RejectsOptionLikeValues(t *testing.T) {
	tests := []struct {
		msg   Message
		field string
	}{
		{Message{Type: OpCloneRepo, URL: "--upload-pack=touch pwned"}, "url"},
		{Message{Type: OpBranch, BranchName: "-f", CommitHash: "abc"}, "branchName"},
		{Message{Type: OpBranch, BranchName: "feature", CommitHash: "--orphan"}, "commitHash"},
		{Message{Type: OpCheckout, BranchName: "-f"}, "branchName"},
		{Message{Type: OpMerge, CommitHash: "--no-verify"}, "commitHash"},
		{Message{Type: OpSetRemote, URL: "-m"}, "url"},
		{Message{Type: OpPush, BranchName: "--force"}, "branchName"},
		{Message{Type: OpRebase, BranchName: "--exec=rm"}, "branchName"},
		{Message{Type: OpReset, Hash: "--merge"}, "hash"},
		{Message{Type: OpGetCommits, Hash: "--output=/tmp/x"}, "hash"},
	}

	for _, tt := range tests {
		t.Run(tt.msg.Type+" "+tt.field, func(t *testing.T) {
			runner := gitexectest.New()
			_, e := newDispatcher(runner).Dispatch(context.Background(), tt.msg)

			var invalid *InvalidArgumentError
			require.ErrorAs(t, e, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
			assert.True(t, err.IsCode(e, err.CodeInvalidInput))
			assert.Empty(t, runner.Calls())
		})
	}
}

func TestGetGitUserAndEmail(t *testing.T) {
	runner := gitexectest.New().
		On(gitexectest.Response{Lines: []string{"Ada"}}, "config", "--global", "user.name").
		On(gitexectest.Response{Lines: []string{"ada@example.com"}}, "config", "--global", "user.email")

	resp, e := newDispatcher(runner).Dispatch(context.Background(), Message{Type: OpGetGitUserAndEmail})
	require.NoError(t, e)
	assert.Equal(t, Response{Type: TypeUserAndEmail, User: "Ada", Email: "ada@example.com"}, resp)
}

func TestGetGitUserAndEmail_NotConfigured(t *testing.T) {
	runner := gitexectest.New().
		On(gitexectest.Response{Lines: []string{"Ada"}}, "config", "--global", "user.name").
		On(gitexectest.Response{Err: gitexec.NewExitError([]string{"config"}, 1, "", nil)}, "config", "--global", "user.email")

	resp, e := newDispatcher(runner).Dispatch(context.Background(), Message{Type: OpGetGitUserAndEmail})
	require.NoError(t, e)
	assert.Equal(t, TypeUserNotConfigured, resp.Type)
}

func TestSetGitUserAndEmail(t *testing.T) {
	runner := gitexectest.New().
		On(gitexectest.Response{}, "config", "--global", "user.name", "Ada").
		On(gitexectest.Response{}, "config", "--global", "user.email", "ada@example.com")

	_, e := newDispatcher(runner).Dispatch(context.Background(), Message{Type: OpSetGitUserAndEmail, User: "Ada", Email: "ada@example.com"})
	require.NoError(t, e)
	assert.Len(t, runner.Calls(), 2)
}

func TestSetGitUserAndEmail_FailureNamesStep(t *testing.T) {
	runner := gitexectest.New().
		On(gitexectest.Response{}, "config", "--global", "user.name", "Ada").
		On(gitexectest.Response{Err: gitexec.NewExitError([]string{"config"}, 255, "error: could not lock config file", nil)},
			"config", "--global", "user.email", "ada@example.com")

	_, e := newDispatcher(runner).Dispatch(context.Background(), Message{Type: OpSetGitUserAndEmail, User: "Ada", Email: "ada@example.com"})
	require.Error(t, e)
	assert.Equal(t, pkgName, err.GetPackage(e))
	assert.Equal(t, "set user email", err.GetOp(e))
	var exitErr *gitexec.ExitError
	require.ErrorAs(t, e, &exitErr)
	assert.Equal(t, 255, exitErr.ExitCode)
}

func TestFailureAttrs(t *testing.T) {
	exit := gitexec.NewExitError([]string{"push", "origin"}, 128, "fatal: no remote\n", nil)
	assert.Equal(t,
		[]any{"error", exit, "package", "gitexec", "op", "git push", "code", gitexec.CodeGitFailed, "exit_code", 128},
		failureAttrs(exit))

	wrapped := err.Wrap(exit, pkgName, "set user name")
	assert.Equal(t,
		[]any{"error", wrapped, "package", pkgName, "op", "set user name", "code", "", "exit_code", 128},
		failureAttrs(wrapped))

	plain := errors.New("boom")
	assert.Equal(t, []any{"error", plain}, failureAttrs(plain))
}

func TestRemoteOperations(t *testing.T) {
	notConfigured := gitexec.NewExitError([]string{"config"}, 1, "", nil)

	t.Run("not configured", func(t *testing.T) {
		runner := gitexectest.New().On(gitexectest.Response{Err: notConfigured}, "config", "--get", "remote.origin.url")
		d := newDispatcher(runner)

		for _, msg := range []Message{{Type: OpGetRemote}, {Type: OpFetch}, {Type: OpPull}, {Type: OpPush, BranchName: "main"}} {
			resp, e := d.Dispatch(context.Background(), msg)
			require.NoError(t, e, msg.Type)
			assert.Equal(t, TypeRemoteNotConfigured, resp.Type, msg.Type)
		}
	})

	t.Run("configured", func(t *testing.T) {
		url := "https://example.com/r.git"
		runner := gitexectest.New().
			On(gitexectest.Response{Lines: []string{url}}, "config", "--get", "remote.origin.url").
			On(gitexectest.Response{}, "fetch", url).
			On(gitexectest.Response{}, "push", url, "main").
			On(gitexectest.Response{}, "pull")
		d := newDispatcher(runner)

		resp, e := d.Dispatch(context.Background(), Message{Type: OpGetRemote})
		require.NoError(t, e)
		assert.Equal(t, Response{Type: TypeRemote, Remote: url}, resp)

		for _, msg := range []Message{{Type: OpFetch}, {Type: OpPull}, {Type: OpPush, BranchName: "main"}} {
			resp, e := d.Dispatch(context.Background(), msg)
			require.NoError(t, e, msg.Type)
			assert.True(t, resp.Empty(), msg.Type)
		}
		assert.Equal(t, 1, runner.CallCount("push", url, "main"))
	})
}

func TestBranchListingsWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	runner := gitexectest.New().
		On(gitexectest.Response{Lines: []string{"* main abc1234 initial"}}, "branch", "--list", "-v").
		On(gitexectest.Response{Lines: []string{"  origin/HEAD -> origin/main", "  origin/main abc1234 initial"}}, "branch", "--list", "-v", "-r")
	d := newDispatcher(runner, WithArtifacts(artifacts.NewWriter(dir, true, logger.Discard())))

	resp, e := d.Dispatch(context.Background(), Message{Type: OpGetLocalBranches})
	require.NoError(t, e)
	assert.Equal(t, TypeLocalBranches, resp.Type)
	require.Len(t, resp.Branches, 1)
	assert.True(t, resp.Branches[0].Current)

	resp, e = d.Dispatch(context.Background(), Message{Type: OpGetRemoteBranches})
	require.NoError(t, e)
	require.Len(t, resp.Branches, 1)
	assert.Equal(t, "origin", resp.Branches[0].Remote)

	assert.FileExists(t, filepath.Join(dir, artifacts.LocalBranchesFile))
	assert.FileExists(t, filepath.Join(dir, artifacts.RemoteBranchesFile))
}

func logRecord(hash, parents, subject, body string) string {
	return strings.Join([]string{
		hash, hash[:7], "tree0000000000", "tree000", parents,
		"Ada", "ada@example.com", "2024-01-02T03:04:05+00:00",
		"Bob", "bob@example.com", "2024-01-02T03:04:05+00:00",
		subject, body,
	}, fieldSep) + recordSep
}

func TestGetCommits(t *testing.T) {
	out := logRecord("aaaaaaaaaaaa", "bbbbbbbbbbbb", "second", "body line\n") + "\n" +
		logRecord("bbbbbbbbbbbb", "", "first", "")
	dir := t.TempDir()

	t.Run("default count writes artifact", func(t *testing.T) {
		runner := gitexectest.New().On(gitexectest.Response{Output: []byte(out)}, "log", "--all", logFormat, "--max-count=50")
		d := newDispatcher(runner, WithArtifacts(artifacts.NewWriter(dir, true, logger.Discard())))

		resp, e := d.Dispatch(context.Background(), Message{Type: OpGetCommits})
		require.NoError(t, e)
		assert.Equal(t, TypeCommits, resp.Type)
		require.Len(t, resp.Commits, 2)

		c := resp.Commits[0]
		assert.Equal(t, "aaaaaaaaaaaa", c.Commit.Long)
		assert.Equal(t, "aaaaaaa", c.Commit.Short)
		assert.Equal(t, []string{"bbbbbbbbbbbb"}, c.Parents)
		assert.Equal(t, "Ada", c.Author.Name)
		assert.Equal(t, "bob@example.com", c.Committer.Email)
		assert.Equal(t, 2024, c.Author.Date.Year())
		assert.Equal(t, "second", c.Subject)
		assert.Equal(t, "body line", c.Body)
		assert.Empty(t, resp.Commits[1].Parents)

		_, statErr := os.Stat(filepath.Join(dir, artifacts.CommitsFile))
		assert.NoError(t, statErr)
	})

	t.Run("after hash", func(t *testing.T) {
		runner := gitexectest.New().On(gitexectest.Response{Output: []byte(out)}, "log", "--all", logFormat, "--max-count=10", "abc")
		resp, e := newDispatcher(runner).Dispatch(context.Background(), Message{Type: OpGetCommits, MaxCount: 10, Hash: "abc"})
		require.NoError(t, e)
		assert.Len(t, resp.Commits, 2)
	})

	t.Run("since", func(t *testing.T) {
		runner := gitexectest.New().On(gitexectest.Response{Output: []byte{}}, "log", "--all", logFormat, "--since=2024-01-01")
		resp, e := newDispatcher(runner).Dispatch(context.Background(), Message{Type: OpGetCommits, LastFetchTime: "2024-01-01"})
		require.NoError(t, e)
		assert.Equal(t, TypeCommits, resp.Type)
		assert.Empty(t, resp.Commits)
	})
}

func TestParseLog_SkipsMalformed(t *testing.T) {
	entries := ParseLog("not a record" + recordSep + logRecord("cccccccccccc", "", "ok", ""))
	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].Subject)
}

func TestFileListings(t *testing.T) {
	runner := gitexectest.New().
		On(gitexectest.Response{Lines: []string{"a.go", "b.go"}}, "diff", "--name-only", "--staged").
		On(gitexectest.Response{}, "diff", "--name-only").
		On(gitexectest.Response{Lines: []string{"stash@{0}: WIP on main: abc initial"}}, "stash", "list")
	d := newDispatcher(runner)

	resp, e := d.Dispatch(context.Background(), Message{Type: OpGetStagedFiles})
	require.NoError(t, e)
	assert.Equal(t, Response{Type: TypeStagedFiles, StagedFiles: []string{"a.go", "b.go"}}, resp)

	resp, e = d.Dispatch(context.Background(), Message{Type: OpGetChangedFiles})
	require.NoError(t, e)
	assert.True(t, resp.Empty())

	resp, e = d.Dispatch(context.Background(), Message{Type: OpListStash})
	require.NoError(t, e)
	assert.Equal(t, TypeStashList, resp.Type)
	assert.Len(t, resp.Stashes, 1)
}

func TestHandle(t *testing.T) {
	runner := gitexectest.New().On(gitexectest.Response{}, "commit", "-m", "hello")
	d := newDispatcher(runner)

	resp := d.Handle(context.Background(), []byte(`{"type":"commit","message":"hello"}`))
	assert.True(t, resp.Empty())
	assert.Equal(t, 1, runner.CallCount("commit", "-m", "hello"))

	resp = d.Handle(context.Background(), []byte(`{"type":`))
	assert.Equal(t, TypeError, resp.Type)

	resp = d.Handle(context.Background(), []byte(`{"type":"nope"}`))
	assert.Equal(t, TypeError, resp.Type)
	assert.Contains(t, resp.Message, "nope")

	resp = d.Handle(context.Background(), []byte(`{"type":"reset","hash":"abc"}`))
	assert.Equal(t, TypeError, resp.Type)

	data, e := Response{Type: TypeRemote, Remote: "x"}.Encode()
	require.NoError(t, e)
	assert.JSONEq(t, `{"type":"remote","remote":"x"}`, string(data))
}
