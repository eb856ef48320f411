// Package repository locates a git repository on disk and validates it
// before any git subprocess is spawned.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Repository describes the on-disk layout of an opened git repository.
//
// Layout:
// ┌─ <working-directory>/
// │ ├─ .git/              ← GitDir (or a file "gitdir: <path>" for worktrees)
// │ │ ├─ objects/         ← ObjectsDir, watched for object changes
// │ │ ├─ refs/            ← RefsDir, watched for branch changes
// │ │ └─ HEAD
// │ └─ ...
//
// For linked worktrees objects and refs live in the common directory named
// by the "commondir" file.
type Repository struct {
	WorkDir    string
	GitDir     string
	CommonDir  string
	ObjectsDir string
	RefsDir    string
}

const gitDirName = ".git"

// Open validates path and returns the repository containing it. The path
// itself or any of its parents may hold the .git entry.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, NewPathNotFoundError(path, nil)
	}

	abs, e := filepath.Abs(path)
	if e != nil {
		return nil, NewPathNotFoundError(path, e)
	}

	info, e := os.Stat(abs)
	if e != nil {
		return nil, NewPathNotFoundError(abs, e)
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for dir := abs; ; {
		if repo, ok, e := openAt(dir); e != nil {
			return nil, e
		} else if ok {
			return repo, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, NewNotRepositoryError(abs)
		}
		dir = parent
	}
}

// openAt checks whether dir holds a .git directory or .git file.
func openAt(dir string) (*Repository, bool, error) {
	dotGit := filepath.Join(dir, gitDirName)
	info, e := os.Stat(dotGit)
	if e != nil {
		return nil, false, nil
	}

	gitDir := dotGit
	if !info.IsDir() {
		gitDir, e = readGitFile(dotGit)
		if e != nil {
			return nil, false, NewInvalidLayoutError(dotGit, e)
		}
	}

	common := gitDir
	if data, e := os.ReadFile(filepath.Join(gitDir, "commondir")); e == nil {
		c := strings.TrimSpace(string(data))
		if !filepath.IsAbs(c) {
			c = filepath.Join(gitDir, c)
		}
		common = filepath.Clean(c)
	}

	objectsDir := filepath.Join(common, "objects")
	if st, e := os.Stat(objectsDir); e != nil || !st.IsDir() {
		return nil, false, NewInvalidLayoutError(gitDir, fmt.Errorf("missing objects directory"))
	}

	return &Repository{
		WorkDir:    dir,
		GitDir:     gitDir,
		CommonDir:  common,
		ObjectsDir: objectsDir,
		RefsDir:    filepath.Join(common, "refs"),
	}, true, nil
}

// readGitFile resolves a ".git" file of the form "gitdir: <path>".
func readGitFile(path string) (string, error) {
	data, e := os.ReadFile(path)
	if e != nil {
		return "", e
	}

	line := strings.TrimSpace(string(data))
	target, ok := strings.CutPrefix(line, "gitdir:")
	if !ok {
		return "", fmt.Errorf("unexpected .git file contents")
	}

	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

// String returns the working directory.
func (r *Repository) String() string {
	return r.WorkDir
}
