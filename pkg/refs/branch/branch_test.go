package branch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/gitgo/pkg/common/err"
	"github.com/utkarsh5026/gitgo/pkg/gitexec"
	"github.com/utkarsh5026/gitgo/pkg/gitexec/gitexectest"
)

func TestParseBranchOutput_Local(t *testing.T) {
	lines := []string{
		"  feature/graph 1a2b3c4 Add graph view",
		"* main          9f8e7d6 Merge branch 'feature/graph'",
		"* (HEAD detached at 1a2b3c4) 1a2b3c4 Add graph view",
		"+ hotfix        5d6e7f8 wip",
		"",
	}

	got := ParseBranchOutput(lines, false)
	require.Len(t, got, 3)

	assert.Equal(t, Info{Name: "feature/graph", Commit: "1a2b3c4", Subject: "Add graph view"}, got[0])
	assert.Equal(t, "main", got[1].Name)
	assert.Equal(t, "9f8e7d6", got[1].Commit)
	assert.True(t, got[1].Current)
	assert.Equal(t, "Merge branch 'feature/graph'", got[1].Subject)

	assert.Equal(t, Info{Name: "hotfix", Commit: "5d6e7f8", Subject: "wip", Worktree: true}, got[2])
}

func TestParseBranchOutput_Remote(t *testing.T) {
	lines := []string{
		"  origin/HEAD -> origin/main",
		"  origin/main    9f8e7d6 Merge",
		"  upstream/feature/x\t1a2b3c4 wip",
	}

	got := ParseBranchOutput(lines, true)
	require.Len(t, got, 2)

	assert.Equal(t, "origin", got[0].Remote)
	assert.Equal(t, "main", got[0].Name)
	assert.Equal(t, "origin/main", got[0].FullName())
	assert.True(t, got[0].IsRemote())

	assert.Equal(t, "upstream", got[1].Remote)
	assert.Equal(t, "feature/x", got[1].Name)
	assert.Equal(t, "1a2b3c4", got[1].Commit)
}

func TestValidateName(t *testing.T) {
	valid := []string{"main", "feature/graph", "release-1.0", "fix_123"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), name)
	}

	invalid := []string{"", "has space", "a..b", "-flag", ".hidden", "x.lock", "a//b", "/lead", "trail/", "what?"}
	for _, name := range invalid {
		e := ValidateName(name)
		var invalidErr *InvalidNameError
		assert.True(t, errors.As(e, &invalidErr), name)
		assert.True(t, err.IsCode(e, CodeInvalidName), name)
	}
}

func TestManager_Lists(t *testing.T) {
	fake := gitexectest.New().
		On(gitexectest.Response{Lines: []string{"* main abc1234 init"}}, "branch", "--list", "-v").
		On(gitexectest.Response{Lines: []string{"  origin/main abc1234 init"}}, "branch", "--list", "-v", "-r")
	m := NewManager(fake, "/repo")

	local, e := m.Local(context.Background())
	require.NoError(t, e)
	require.Len(t, local, 1)
	assert.True(t, local[0].Current)

	remote, e := m.Remote(context.Background())
	require.NoError(t, e)
	require.Len(t, remote, 1)
	assert.Equal(t, "origin", remote[0].Remote)
}

func TestManager_Create(t *testing.T) {
	fake := gitexectest.New().
		On(gitexectest.Response{}, "branch", "topic", "abc1234").
		On(gitexectest.Response{}, "checkout", "topic").
		On(gitexectest.Response{Err: gitexec.NewExitError([]string{"branch", "main"}, 128,
			"fatal: a branch named 'main' already exists", nil)}, "branch", "main")
	m := NewManager(fake, "/repo")
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, "topic", WithStartPoint("abc1234"), WithCheckout()))
	assert.Equal(t, 1, fake.CallCount("checkout", "topic"))

	e := m.Create(ctx, "main")
	assert.True(t, err.IsCode(e, CodeAlreadyExists))

	e = m.Create(ctx, "bad name")
	assert.True(t, err.IsCode(e, CodeInvalidName))
	assert.Zero(t, fake.CallCount("branch", "bad name"))
}

func TestManager_Delete(t *testing.T) {
	fake := gitexectest.New().
		On(gitexectest.Response{Err: gitexec.NewExitError(nil, 1,
			"error: The branch 'wip' is not fully merged.", nil)}, "branch", "-d", "wip").
		On(gitexectest.Response{}, "branch", "-D", "wip")
	m := NewManager(fake, "/repo")
	ctx := context.Background()

	assert.True(t, err.IsCode(m.Delete(ctx, "wip"), CodeNotMerged))
	assert.NoError(t, m.Delete(ctx, "wip", WithForceDelete()))

	for _, stderr := range []string{
		"error: Cannot delete branch 'main' checked out at '/repo'",
		"error: cannot delete branch 'main' used by worktree at '/repo'",
	} {
		busy := gitexectest.New().On(gitexectest.Response{Err: gitexec.NewExitError(nil, 1, stderr, nil)}, "branch", "-d", "main")
		assert.True(t, err.IsCode(NewManager(busy, "/repo").Delete(ctx, "main"), CodeIsCurrent), stderr)
	}
}

func TestManager_Current(t *testing.T) {
	fake := gitexectest.New().On(gitexectest.Response{Lines: []string{"main"}}, "symbolic-ref", "--short", "-q", "HEAD")
	name, e := NewManager(fake, "/repo").Current(context.Background())
	require.NoError(t, e)
	assert.Equal(t, "main", name)

	detached := gitexectest.New().
		On(gitexectest.Response{Err: gitexec.NewExitError(nil, 1, "", nil)}, "symbolic-ref", "--short", "-q", "HEAD").
		On(gitexectest.Response{Lines: []string{"abc1234"}}, "rev-parse", "--short", "HEAD")
	_, e = NewManager(detached, "/repo").Current(context.Background())

	var headErr *DetachedHeadError
	require.True(t, errors.As(e, &headErr))
	assert.Equal(t, "abc1234", headErr.CommitSHA)
}
