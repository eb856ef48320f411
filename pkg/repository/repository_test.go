package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/gitgo/pkg/common/err"
)

// fakeRepo lays out the minimum of a .git directory.
func fakeRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "refs", "heads"), 0o755))
	return root
}

func TestOpen_Root(t *testing.T) {
	root := fakeRepo(t)

	repo, e := Open(root)
	require.NoError(t, e)
	assert.Equal(t, root, repo.WorkDir)
	assert.Equal(t, filepath.Join(root, ".git"), repo.GitDir)
	assert.Equal(t, filepath.Join(root, ".git", "objects"), repo.ObjectsDir)
	assert.Equal(t, filepath.Join(root, ".git", "refs"), repo.RefsDir)
}

func TestOpen_Subdirectory(t *testing.T) {
	root := fakeRepo(t)
	sub := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo, e := Open(sub)
	require.NoError(t, e)
	assert.Equal(t, root, repo.WorkDir)
}

func TestOpen_PathNotFound(t *testing.T) {
	_, e := Open(filepath.Join(t.TempDir(), "missing"))

	var ve *ValidationError
	require.True(t, errors.As(e, &ve))
	assert.Equal(t, CodePathNotFound, ve.Code())
	assert.Equal(t, ValidationID, ve.ID)
	assert.Contains(t, ve.Message(), "was not found")
	assert.True(t, err.IsCode(e, CodePathNotFound))
}

func TestOpen_NotRepository(t *testing.T) {
	_, e := Open(t.TempDir())

	var ve *ValidationError
	require.True(t, errors.As(e, &ve))
	assert.Equal(t, CodeNotRepository, ve.Code())
	assert.Contains(t, ve.Message(), "does not appear to be inside a git repository")
}

func TestOpen_WorktreeGitFile(t *testing.T) {
	main := fakeRepo(t)
	wtGitDir := filepath.Join(main, ".git", "worktrees", "wt")
	require.NoError(t, os.MkdirAll(wtGitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(wtGitDir, "commondir"), []byte("../..\n"), 0o644))

	wt := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(wt, ".git"), []byte("gitdir: "+wtGitDir+"\n"), 0o644))

	repo, e := Open(wt)
	require.NoError(t, e)
	assert.Equal(t, wt, repo.WorkDir)
	assert.Equal(t, wtGitDir, repo.GitDir)
	assert.Equal(t, filepath.Join(main, ".git", "objects"), repo.ObjectsDir)
	assert.Equal(t, filepath.Join(main, ".git", "refs"), repo.RefsDir)
}

func TestOpen_BrokenGitFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("garbage"), 0o644))

	_, e := Open(dir)
	assert.True(t, err.IsCode(e, CodeInvalidLayout))
}
