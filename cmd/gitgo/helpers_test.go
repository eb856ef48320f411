package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelper builds throwaway git repositories for command tests.
type TestHelper struct {
	t        *testing.T
	RepoPath string
}

// NewTestHelper creates an empty git repository in a temp directory. The
// test is skipped when git is not installed. User and system config
// lookups are pointed at the temp directory too.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)

	th := &TestHelper{t: t, RepoPath: t.TempDir()}
	th.Git("init", "-q")
	return th
}

// Git runs git in the repository with a fixed identity.
func (th *TestHelper) Git(args ...string) string {
	th.t.Helper()

	cmd := exec.Command("git", append([]string{"-c", "commit.gpgsign=false"}, args...)...)
	cmd.Dir = th.RepoPath
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test User", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(th.t, err, string(out))
	return string(out)
}

// WriteFile creates a file in the working tree.
func (th *TestHelper) WriteFile(name, content string) string {
	th.t.Helper()

	path := filepath.Join(th.RepoPath, name)
	require.NoError(th.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(th.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Commit writes files and commits them.
func (th *TestHelper) Commit(message string, files map[string]string) {
	th.t.Helper()
	for name, content := range files {
		th.WriteFile(name, content)
	}
	th.Git("add", "-A")
	th.Git("commit", "-q", "-m", message)
}

// Run executes the root command against the repository and returns what
// was written through the command's output writer.
func (th *TestHelper) Run(args ...string) (string, error) {
	th.t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--repo", th.RepoPath, "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
